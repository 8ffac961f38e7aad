package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/service/donation"
	"github.com/heartmarshall/bazaar-backend/pkg/ctxutil"
)

const (
	maxUploadBytes = 32 << 20
	maxPhotoBytes  = 10 << 20
)

type donationService interface {
	Create(ctx context.Context, actor domain.Actor, input donation.CreateInput) (domain.Donation, error)
	UploadPhotos(ctx context.Context, actor domain.Actor, photos []donation.PhotoUpload) (donation.PhotoSet, error)
	ListPhotos(ctx context.Context, actor domain.Actor, folder string) ([]string, error)
	Get(ctx context.Context, actor domain.Actor, id string) (domain.Donation, error)
	QRCode(ctx context.Context, actor domain.Actor, id string) ([]byte, error)
	Approve(ctx context.Context, actor domain.Actor, input donation.ApproveInput) (domain.Donation, error)
	Reject(ctx context.Context, actor domain.Actor, input donation.RejectInput) (domain.Donation, error)
	AssignBazaar(ctx context.Context, actor domain.Actor, input donation.AssignBazaarInput) (domain.Donation, error)
	Deliver(ctx context.Context, actor domain.Actor, donationID string) (domain.Donation, error)
	PendingQueue(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error)
	BazaarQueue(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error)
	DonorHistory(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error)
}

// DonationHandler serves the donation lifecycle endpoints.
type DonationHandler struct {
	svc donationService
	log *slog.Logger
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(svc donationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{svc: svc, log: logger.With("handler", "donation")}
}

type createDonationRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	PhotoURLs         []string `json:"photoUrls"`
	Categories        []string `json:"categories"`
	PreferredBazaarID *string  `json:"preferredBazaarId"`
	NeedsTransport    *bool    `json:"needsTransport"`
}

type approveRequest struct {
	BazaarID *string `json:"bazaarId"`
	Comment  *string `json:"comment"`
}

type rejectRequest struct {
	Comment *string `json:"comment"`
}

type assignBazaarRequest struct {
	BazaarID string `json:"bazaarId"`
}

type photoSetResponse struct {
	Folder string   `json:"folder"`
	URLs   []string `json:"urls"`
}

// Create handles POST /donations.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := h.svc.Create(r.Context(), actorFrom(r), donation.CreateInput{
		Title:             req.Title,
		Description:       req.Description,
		PhotoURLs:         req.PhotoURLs,
		Categories:        req.Categories,
		PreferredBazaarID: req.PreferredBazaarID,
		NeedsTransport:    req.NeedsTransport,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDonationResponse(d))
}

// UploadPhotos handles POST /donations/photos (multipart, field "photos").
func (h *DonationHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, r, "photos", "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["photos"]
	uploads := make([]donation.PhotoUpload, 0, len(files))
	for _, fh := range files {
		up, err := readPart(fh)
		if err != nil {
			writeBadRequest(w, r, "photos", "unreadable file "+fh.Filename)
			return
		}
		uploads = append(uploads, up)
	}

	set, err := h.svc.UploadPhotos(r.Context(), actorFrom(r), uploads)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, photoSetResponse{Folder: set.Folder, URLs: set.URLs})
}

// ListPhotos handles GET /donations/photos?folder=.
func (h *DonationHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	urls, err := h.svc.ListPhotos(r.Context(), actorFrom(r), r.URL.Query().Get("folder"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"urls": urls})
}

// Get handles GET /donations/{id}.
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(d))
}

// QRCode handles GET /donations/{id}/qr and returns the PNG payload.
func (h *DonationHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.svc.QRCode(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png) //nolint:errcheck
}

// History handles GET /donations/mine.
func (h *DonationHandler) History(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.DonorHistory(r.Context(), actorFrom(r), pageRequest(r))
	h.writePage(w, r, page, err)
}

// PendingQueue handles GET /admin/donations/pending.
func (h *DonationHandler) PendingQueue(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.PendingQueue(r.Context(), actorFrom(r), pageRequest(r))
	h.writePage(w, r, page, err)
}

// BazaarQueue handles GET /bazaar/donations.
func (h *DonationHandler) BazaarQueue(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.BazaarQueue(r.Context(), actorFrom(r), pageRequest(r))
	h.writePage(w, r, page, err)
}

// Approve handles POST /admin/donations/{id}/approve.
func (h *DonationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	d, err := h.svc.Approve(r.Context(), actorFrom(r), donation.ApproveInput{
		DonationID: chi.URLParam(r, "id"),
		BazaarID:   req.BazaarID,
		Comment:    req.Comment,
	})
	h.writeDonation(w, r, d, err)
}

// Reject handles POST /admin/donations/{id}/reject.
func (h *DonationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	d, err := h.svc.Reject(r.Context(), actorFrom(r), donation.RejectInput{
		DonationID: chi.URLParam(r, "id"),
		Comment:    req.Comment,
	})
	h.writeDonation(w, r, d, err)
}

// AssignBazaar handles POST /admin/donations/{id}/bazaar.
func (h *DonationHandler) AssignBazaar(w http.ResponseWriter, r *http.Request) {
	var req assignBazaarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.AssignBazaar(r.Context(), actorFrom(r), donation.AssignBazaarInput{
		DonationID: chi.URLParam(r, "id"),
		BazaarID:   req.BazaarID,
	})
	h.writeDonation(w, r, d, err)
}

// Deliver handles POST /bazaar/donations/{id}/deliver.
func (h *DonationHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Deliver(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	h.writeDonation(w, r, d, err)
}

func (h *DonationHandler) writeDonation(w http.ResponseWriter, r *http.Request, d domain.Donation, err error) {
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationResponse(d))
}

func (h *DonationHandler) writePage(w http.ResponseWriter, r *http.Request, page domain.Page[domain.Donation], err error) {
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDonationPage(page))
}

func readPart(fh *multipart.FileHeader) (donation.PhotoUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return donation.PhotoUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		return donation.PhotoUpload{}, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return donation.PhotoUpload{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

func actorFrom(r *http.Request) domain.Actor {
	actor, _ := ctxutil.ActorFromCtx(r.Context())
	return actor
}

func pageRequest(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	return domain.PageRequest{Token: q.Get("pageToken"), Query: q.Get("q")}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, r, "", "")
		return false
	}
	return true
}

// decodeOptionalBody accepts an empty body as the zero request.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && err != io.EOF {
		writeBadRequest(w, r, "", "")
		return false
	}
	return true
}
