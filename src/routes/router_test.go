package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/ARQAP/archive-backend/src/config"
	"github.com/ARQAP/archive-backend/src/db/dbtest"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/middleware"
	"github.com/ARQAP/archive-backend/src/routes"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/ARQAP/archive-backend/src/svg"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plan = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50"><path d="M 0 0 L 10 10"/></svg>`

type harness struct {
	t      *testing.T
	router *gin.Engine
	admin  string
	user   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetSecretKey("test-secret")

	gw := dbtest.Gateway(t)
	store := storage.NewMemory()
	images := services.NewImageService(store, svg.NewOptimizer())
	buildings := services.NewBuildingService(gw, images, services.NewAggregateService(gw))
	users := services.NewUserService(gw, config.AuthConfig{TokenLifetime: time.Hour, BcryptRounds: 4})

	router := routes.NewRouter(routes.RouterConfig{TempDir: t.TempDir(), CORSOrigins: []string{"*"}}, gw, routes.Services{
		Years:      services.NewYearService(gw, images),
		Buildings:  buildings,
		Features:   services.NewFeatureService(gw, buildings),
		Finds:      services.NewFindService(gw, buildings),
		Files:      services.NewFileService(gw, store),
		References: services.NewReferenceService(gw),
		Users:      users,
	})

	ctx := context.Background()
	_, _, err := users.EnsureAdmin(ctx, dtos.RegisterCommand{Username: "admin", Email: "admin@example.org", Password: "0123456789"})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, dtos.RegisterCommand{Username: "guest", Email: "guest@example.org", Password: "0123456789"})
	require.NoError(t, err)

	h := &harness{t: t, router: router}
	h.admin = h.login("admin")
	h.user = h.login("guest")
	return h
}

func (h *harness) login(username string) string {
	h.t.Helper()
	rec := h.json(http.MethodPost, "/users/login", "", map[string]string{"username": username, "password": "0123456789"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(h.t, resp.Token)
	return resp.Token
}

func (h *harness) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.do(req, token)
}

// multipart sends fields plus one file part with the given content type.
func (h *harness) multipart(method, path, token string, fields map[string]string, fileField, fileName, contentType, content string) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, w.WriteField(k, v))
	}
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(h.t, err)
		_, err = part.Write([]byte(content))
		require.NoError(h.t, err)
	}
	require.NoError(h.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return h.do(req, token)
}

func TestYearRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodGet, "/years", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = h.json(http.MethodPost, "/years", "", map[string]any{"year": 1690})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.json(http.MethodPost, "/years", h.user, map[string]any{"year": 1690})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient authorization")

	rec = h.json(http.MethodPost, "/years", h.admin, map[string]any{"year": 1500})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var invalid struct {
		Errors []struct {
			Field string `json:"field"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invalid))
	require.Len(t, invalid.Errors, 1)
	assert.Equal(t, "year", invalid.Errors[0].Field)

	rec = h.multipart(http.MethodPost, "/years", h.admin, map[string]string{"year": "1690"}, "image", "plan.svg", "image/svg+xml", plan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"/years/1690.svg"`)

	rec = h.multipart(http.MethodPost, "/years", h.admin, map[string]string{"year": "1690"}, "image", "other.svg", "image/svg+xml",
		`<svg xmlns="http://www.w3.org/2000/svg"><circle r="4"/></svg>`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.json(http.MethodPost, "/years", h.admin, map[string]any{"year": 1700})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.json(http.MethodGet, "/years/1690", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = h.json(http.MethodGet, "/years/1690.svg", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.NotContains(t, rec.Body.String(), "circle")

	rec = h.json(http.MethodPatch, "/years/abc", h.admin, map[string]any{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPatch, "/years/1690", h.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to update")

	rec = h.json(http.MethodDelete, "/years/1690", h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = h.json(http.MethodDelete, "/years/1690", h.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildingRoutes(t *testing.T) {
	h := newHarness(t)
	for _, y := range []int{1690, 1700} {
		require.Equal(t, http.StatusCreated, h.json(http.MethodPost, "/years", h.admin, map[string]any{"year": y}).Code)
	}

	rec := h.multipart(http.MethodPost, "/years/1690/buildings", h.admin,
		map[string]string{"phase": "B12", "start": "1695", "end": "1696"}, "image", "plan.svg", "image/svg+xml", plan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var building struct {
		ID    int    `json:"id"`
		Start int    `json:"start"`
		End   int    `json:"end"`
		Image string `json:"image"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &building))
	assert.Equal(t, 1690, building.Start)
	assert.Equal(t, 1700, building.End)
	assert.Equal(t, "/years/1690/buildings/1.svg", building.Image)

	rec = h.json(http.MethodPost, "/years/1690/buildings/1/features", h.admin, map[string]any{"type": "wall"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.json(http.MethodGet, "/years/1695/buildings/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		ID       int `json:"id"`
		Features []struct {
			Type  string `json:"type"`
			Count int    `json:"count"`
		} `json:"features"`
		Finds []any `json:"finds"`
		Files struct {
			Features []any `json:"features"`
			Finds    []any `json:"finds"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 1, detail.ID)
	require.Len(t, detail.Features, 1)
	assert.Equal(t, 1, detail.Features[0].Count)
	assert.NotNil(t, detail.Finds)
	assert.NotNil(t, detail.Files.Finds)

	rec = h.json(http.MethodGet, "/years/1700/buildings/1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.json(http.MethodGet, "/years/1690/buildings/1.svg", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	rec = h.json(http.MethodGet, "/years/1700/buildings", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.json(http.MethodPatch, "/years/1690/buildings/1", h.admin, map[string]any{"phase": "B12a"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodDelete, "/years/1690/buildings/1", h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.json(http.MethodDelete, "/years/1690/buildings/1", h.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.multipart(http.MethodPost, "/csv", h.admin, nil, "file", "pottery.csv", "text/csv", "a,b\n1,2\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"/csv/1"`)

	rec = h.multipart(http.MethodPost, "/csv", h.admin, nil, "file", "pottery.csv", "text/csv", "a,b\n")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.multipart(http.MethodPost, "/pdf", h.admin, nil, "file", "notes.csv", "text/csv", "a")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodGet, "/csv/1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n1,2\n", rec.Body.String())

	rec = h.json(http.MethodGet, "/csv", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pottery.csv")

	rec = h.json(http.MethodDelete, "/csv/1", h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.json(http.MethodGet, "/csv/1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/users/register", "", map[string]string{"username": "new", "email": "bad", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodGet, "/users/me", h.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"guest"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = h.json(http.MethodGet, "/users", h.user, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.json(http.MethodGet, "/users", h.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodPatch, "/users/1", h.admin, map[string]any{"admin": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin cannot change self")

	rec = h.json(http.MethodPatch, "/users/2", h.admin, map[string]any{"admin": true})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodGet, "/users", h.user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodGet, "/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReferenceRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/references", h.admin, map[string]any{"reference": "Smith 2003", "description": "Survey report"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.json(http.MethodPost, "/references", h.admin, map[string]any{"reference": "Jones 1999"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPatch, "/references/1", h.admin, map[string]any{"doi": "10.1000/182"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodGet, "/references", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.1000/182")
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "archive_http_requests_total")
}
