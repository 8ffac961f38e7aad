package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/pkg/ctxutil"
)

// Error codes returned in the envelope. Clients switch on these, never on the
// message.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeGeneration   = "qr_generation_failed"
	CodeUnavailable  = "service_unavailable"
	CodeBadRequest   = "bad_request"
	CodeInternal     = "internal_error"
)

var messages = map[string]string{
	CodeValidation:   "Some fields are invalid.",
	CodeUnauthorized: "Sign in to continue.",
	CodeForbidden:    "You are not allowed to do this.",
	CodeNotFound:     "The item was not found.",
	CodeConflict:     "This donation was changed by someone else. Reload and try again.",
	CodeGeneration:   "The QR code could not be generated. The donation was not changed.",
	CodeUnavailable:  "The service is temporarily unavailable. Try again shortly.",
	CodeBadRequest:   "The request could not be read.",
	CodeInternal:     "Something went wrong.",
}

func init() {
	pt := map[string]string{
		CodeValidation:   "Alguns campos são inválidos.",
		CodeUnauthorized: "Entre para continuar.",
		CodeForbidden:    "Você não tem permissão para fazer isso.",
		CodeNotFound:     "O item não foi encontrado.",
		CodeConflict:     "Esta doação foi alterada por outra pessoa. Recarregue e tente novamente.",
		CodeGeneration:   "Não foi possível gerar o código QR. A doação não foi alterada.",
		CodeUnavailable:  "O serviço está temporariamente indisponível. Tente novamente em instantes.",
		CodeBadRequest:   "Não foi possível ler a requisição.",
		CodeInternal:     "Algo deu errado.",
	}
	for code, msg := range messages {
		message.SetString(language.English, msg, msg)
		message.SetString(language.Portuguese, msg, pt[code])
	}
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// localize renders the message for code in the request's locale.
func localize(ctx context.Context, code string) string {
	msg, ok := messages[code]
	if !ok {
		msg = messages[CodeInternal]
	}
	return message.NewPrinter(ctxutil.LocaleFromCtx(ctx)).Sprintf(msg)
}

// classify maps an error kind to its HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway, CodeGeneration
	case errors.Is(err, domain.ErrTransient):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError translates err into the error envelope. Server-side failures
// are logged; client errors are not.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}

	body := errorBody{Code: code, Message: localize(r.Context(), code)}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Errors {
			body.Fields = append(body.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

// writeBadRequest reports an undecodable request body or parameter.
func writeBadRequest(w http.ResponseWriter, r *http.Request, field, msg string) {
	body := errorBody{Code: CodeBadRequest, Message: localize(r.Context(), CodeBadRequest)}
	if field != "" {
		body.Fields = []fieldError{{Field: field, Message: msg}}
	}
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: body})
}
