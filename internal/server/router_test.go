package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/database"
	"github.com/jimdaga/first-sip/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResponder struct{}

func (stubResponder) Respond(context.Context, []briefing.Turn, string) (briefing.Exchange, error) {
	return briefing.Exchange{Reply: "hello"}, nil
}

func (stubResponder) Generate(context.Context) (briefing.Exchange, error) {
	return briefing.Exchange{Reply: "hello"}, nil
}

type emptyStore struct{}

func (emptyStore) Create(context.Context, string) (*models.Briefing, error) {
	return &models.Briefing{Status: models.BriefingStatusPending}, nil
}
func (emptyStore) Get(context.Context, uint) (*models.Briefing, error) { return nil, database.ErrNotFound }
func (emptyStore) FindActive(context.Context) (*models.Briefing, error) {
	return nil, database.ErrNotFound
}
func (emptyStore) Latest(context.Context) (*models.Briefing, error) { return nil, database.ErrNotFound }
func (emptyStore) Fail(context.Context, uint, string) error         { return nil }
func (emptyStore) MarkRead(context.Context, uint, time.Time) (*models.Briefing, error) {
	return nil, database.ErrNotFound
}

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueGenerateBriefing(context.Context, uint) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterHealth(t *testing.T) {
	r := NewRouter(stubResponder{}, nil, discardLogger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouterChatRoutes(t *testing.T) {
	r := NewRouter(stubResponder{}, nil, discardLogger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/briefing", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/briefing", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"briefing":"hello"`)
}

func TestRouterArchiveRoutesOptional(t *testing.T) {
	without := NewRouter(stubResponder{}, nil, discardLogger())
	w := serve(without, httptest.NewRequest(http.MethodGet, "/api/briefings/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	with := NewRouter(stubResponder{}, &Archive{Store: emptyStore{}, Enqueuer: noopEnqueuer{}}, discardLogger())
	w = serve(with, httptest.NewRequest(http.MethodPost, "/api/briefings", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRequestID(t *testing.T) {
	r := NewRouter(stubResponder{}, nil, discardLogger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	r := NewRouter(stubResponder{}, nil, logger)

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String(), "health checks log at debug")

	serve(r, httptest.NewRequest(http.MethodGet, "/api/briefing", nil))
	assert.Contains(t, buf.String(), "path=/api/briefing")
	assert.Contains(t, buf.String(), "status=200")
}
