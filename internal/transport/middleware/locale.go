package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/heartmarshall/bazaar-backend/pkg/ctxutil"
)

// SupportedLocales lists the languages error messages are rendered in. The
// first entry is the fallback.
var SupportedLocales = []language.Tag{language.English, language.Portuguese}

var localeMatcher = language.NewMatcher(SupportedLocales)

// Locale stores the best match for the request's Accept-Language header in
// the context.
func Locale() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
			_, idx, _ := localeMatcher.Match(tags...)
			ctx := ctxutil.WithLocale(r.Context(), SupportedLocales[idx])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
