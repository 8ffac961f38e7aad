package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/cache"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore/memory"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/filestore"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/qr"
	"github.com/heartmarshall/bazaar-backend/internal/auth"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/metrics"
	"github.com/heartmarshall/bazaar-backend/internal/service/bazaar"
	"github.com/heartmarshall/bazaar-backend/internal/service/donation"
	"github.com/heartmarshall/bazaar-backend/internal/service/profile"
	"github.com/heartmarshall/bazaar-backend/internal/transport/middleware"
)

const testSecret = "router-test-secret-that-is-long-enough-32"

type apiFixture struct {
	handler http.Handler
	tokens  map[string]string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store := memory.New()
	mediaDir := t.TempDir()
	blobs, err := filestore.New(mediaDir, "/media")
	require.NoError(t, err)

	bazaars := bazaar.NewService(logger, store, cache.NewMemory(time.Minute), docstore.NoTx{}, m)
	_, err = bazaars.Import(ctx, bazaar.ImportInput{Bazaars: []domain.Bazaar{
		{ID: "bz-1", Name: "Centro", Address: "Rua A, 1", AcceptingDonations: true},
		{ID: "bz-2", Name: "Vila Nova", Address: "Rua B, 2", AcceptingDonations: false},
	}})
	require.NoError(t, err)

	profiles := profile.NewService(logger, store, bazaars)
	bz1 := "bz-1"
	_, err = profiles.Assign(ctx, profile.AssignInput{UserID: "admin-1", Role: "admin"})
	require.NoError(t, err)
	_, err = profiles.Assign(ctx, profile.AssignInput{UserID: "ba-1", Role: "bazaar-admin", BazaarID: &bz1})
	require.NoError(t, err)

	donations := donation.NewService(logger, store, blobs, qr.NewGenerator(128), bazaars, m,
		donation.Config{PageSize: 10, MinPhotos: 2, UploadWorker: 2})

	jwtm := auth.NewJWTManager(testSecret, "bazaar-test", time.Hour)
	tokens := map[string]string{}
	for _, id := range []string{"donor-1", "donor-2", "admin-1", "ba-1"} {
		tok, err := jwtm.GenerateAccessToken(domain.Identity{UserID: id, Email: id + "@example.com"})
		require.NoError(t, err)
		tokens[id] = tok
	}

	h := NewRouter(RouterDeps{
		Donations: NewDonationHandler(donations, logger),
		Bazaars:   NewBazaarHandler(bazaars, logger),
		Health: NewHealthHandler(map[string]Pinger{
			"store": PingFunc(store.Ping),
		}, "test"),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Media:   http.FileServer(http.Dir(mediaDir)),
		Global:  middleware.Chain(middleware.Recovery(logger), middleware.Locale()),
		Auth:    middleware.Auth(jwtm, profiles, logger),
	})
	return &apiFixture{handler: h, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, method, path, user string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[user])
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func coatsRequest() map[string]any {
	return map[string]any{
		"title":             "Winter coats",
		"description":       "Three adult coats",
		"photoUrls":         []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		"categories":        []string{"Clothing"},
		"preferredBazaarId": "bz-1",
	}
}

func TestRouter_DonationLifecycle(t *testing.T) {
	api := newAPI(t)

	rec := api.do(t, http.MethodPost, "/donations", "donor-1", coatsRequest())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[donationResponse](t, rec)
	assert.Equal(t, "pending", created.DisplayStatus)
	assert.False(t, created.HasQR)
	assert.Equal(t, "donor-1", created.DonorID)

	rec = api.do(t, http.MethodGet, "/admin/donations/pending", "admin-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[donationPageResponse](t, rec)
	require.Len(t, pending.Items, 1)
	assert.False(t, pending.HasMore)

	rec = api.do(t, http.MethodPost, "/admin/donations/"+created.ID+"/approve", "admin-1",
		map[string]any{"bazaarId": "bz-1", "comment": "thanks"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[donationResponse](t, rec)
	assert.Equal(t, "approved", approved.DisplayStatus)
	assert.True(t, approved.HasQR)
	require.NotNil(t, approved.AdminComment)
	assert.Equal(t, "thanks", *approved.AdminComment)

	rec = api.do(t, http.MethodGet, "/donations/"+created.ID+"/qr", "donor-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = api.do(t, http.MethodPost, "/admin/donations/"+created.ID+"/reject", "admin-1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeConflict, decode[errorEnvelope](t, rec).Error.Code)

	rec = api.do(t, http.MethodGet, "/bazaar/donations", "ba-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[donationPageResponse](t, rec).Items, 1)

	for range 2 {
		rec = api.do(t, http.MethodPost, "/bazaar/donations/"+created.ID+"/deliver", "ba-1", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		delivered := decode[donationResponse](t, rec)
		assert.Equal(t, "delivered", delivered.DisplayStatus)
		assert.Equal(t, "approved", delivered.Status)
	}

	rec = api.do(t, http.MethodGet, "/donations/mine", "donor-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[donationPageResponse](t, rec)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "delivered", history.Items[0].DisplayStatus)
}

func TestRouter_Errors(t *testing.T) {
	api := newAPI(t)

	t.Run("anonymous write", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/donations", "", coatsRequest())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("validation fields", func(t *testing.T) {
		req := coatsRequest()
		req["photoUrls"] = []string{"https://cdn/a.jpg"}
		req["title"] = ""
		rec := api.do(t, http.MethodPost, "/donations", "donor-1", req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		env := decode[errorEnvelope](t, rec)
		assert.Equal(t, CodeValidation, env.Error.Code)
		assert.Equal(t, messages[CodeValidation], env.Error.Message)
		fields := make([]string, 0, len(env.Error.Fields))
		for _, f := range env.Error.Fields {
			fields = append(fields, f.Field)
		}
		assert.ElementsMatch(t, []string{"title", "photo_urls"}, fields)
	})

	t.Run("localized message", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/admin/donations/pending", "donor-1", nil,
			"Accept-Language", "pt-BR,pt;q=0.9")
		require.Equal(t, http.StatusForbidden, rec.Code)
		env := decode[errorEnvelope](t, rec)
		assert.Equal(t, CodeForbidden, env.Error.Code)
		assert.Equal(t, "Você não tem permissão para fazer isso.", env.Error.Message)
	})

	t.Run("closed bazaar", func(t *testing.T) {
		req := coatsRequest()
		req["preferredBazaarId"] = "bz-2"
		rec := api.do(t, http.MethodPost, "/donations", "donor-1", req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bazaar_id", decode[errorEnvelope](t, rec).Error.Fields[0].Field)
	})

	t.Run("not found", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/donations/missing", "admin-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/donations", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+api.tokens["donor-1"])
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeBadRequest, decode[errorEnvelope](t, rec).Error.Code)
	})

	t.Run("malformed page token", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/donations/mine?pageToken=%25%25", "donor-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deliver pending", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/donations", "donor-2", coatsRequest())
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decode[donationResponse](t, rec).ID

		rec = api.do(t, http.MethodPost, "/bazaar/donations/"+id+"/deliver", "ba-1", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouter_Bazaars(t *testing.T) {
	api := newAPI(t)

	rec := api.do(t, http.MethodGet, "/bazaars", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[map[string][]bazaarResponse](t, rec)["items"]
	assert.Len(t, all, 2)

	rec = api.do(t, http.MethodGet, "/bazaars?accepting=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accepting := decode[map[string][]bazaarResponse](t, rec)["items"]
	require.Len(t, accepting, 1)
	assert.Equal(t, "bz-1", accepting[0].ID)

	rec = api.do(t, http.MethodGet, "/bazaars?q=VILA", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]bazaarResponse](t, rec)["items"], 1)

	rec = api.do(t, http.MethodGet, "/bazaars?accepting=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/bazaars/bz-1/accepting", "ba-1", map[string]any{"accepting": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[bazaarResponse](t, rec).AcceptingDonations)

	rec = api.do(t, http.MethodPut, "/bazaars/bz-2/accepting", "ba-1", map[string]any{"accepting": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, "/bazaars/bz-2/accepting", "admin-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/bazaars/bz-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[bazaarResponse](t, rec).AcceptingDonations)
}

func TestRouter_PhotoUpload(t *testing.T) {
	api := newAPI(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range []string{"front.png", "back.png"} {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="photos"; filename="`+name+`"`)
		hdr.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/donations/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.tokens["donor-1"])
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	set := decode[photoSetResponse](t, rec)
	require.Len(t, set.URLs, 2)
	assert.True(t, strings.HasPrefix(set.Folder, "donations/donor-1/"))
	assert.Contains(t, set.URLs[0], "front.png")
	assert.Contains(t, set.URLs[1], "back.png")

	rec = api.do(t, http.MethodGet, set.URLs[0], "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG fake front.png", rec.Body.String())

	rec = api.do(t, http.MethodGet, "/donations/photos?folder="+set.Folder, "donor-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, set.URLs, decode[map[string][]string](t, rec)["urls"])

	rec = api.do(t, http.MethodGet, "/donations/photos?folder="+set.Folder, "donor-2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/live", "/ready", "/health"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	api.do(t, http.MethodGet, "/bazaars", "", nil)
	rec := api.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bazaar_list_cache_lookups_total")
}
