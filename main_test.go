package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"folio/api/analytics"
	"folio/api/config"
	"folio/api/handlers"
	"folio/api/logging"
	"folio/api/metrics"
	"folio/api/models"
	"folio/api/notify"
	"folio/api/ratelimit"
	"folio/api/store"
	"folio/api/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logging.Discard()
	m := metrics.NewUnregistered()
	events := store.NewMemoryEventStore()
	recorder := analytics.NewRecorder(events, m, log)
	engine := analytics.NewEngine(events)
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	blogStore := store.NewBlogStore(db)
	messageStore := store.NewMessageStore(db)

	return &app{
		log:       log,
		metrics:   m,
		limiter:   ratelimit.New(ratelimit.DefaultConfig()),
		tokens:    tokens,
		apiKey:    "key",
		corsOrig:  "http://localhost:3000",
		analytics: handlers.NewAnalyticsHandlers(recorder, engine, log),
		blog:      handlers.NewBlogHandlers(blogStore, recorder, log),
		contact:   handlers.NewContactHandlers(messageStore, notify.NopNotifier{Log: log}, recorder, m, log),
		dashboard: handlers.NewDashboardHandlers(engine, messageStore, blogStore, log),
		auth:      handlers.NewAuthHandlers(store.NewUserStore(db), tokens, false, log),
		health:    handlers.NewHealthHandlers(map[string]handlers.Pinger{"events": nopPinger{}}, log),
	}
}

func newTestRouter(t *testing.T, proxies []string) *gin.Engine {
	t.Helper()
	a := newTestApp(t)
	a.proxies = proxies
	r, err := a.router()
	require.NoError(t, err)
	return r
}

type nopPinger struct{}

func (nopPinger) PingContext(context.Context) error { return nil }

func TestRouterPublicRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(`{"path":"/"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `folio_tracked_events_total{kind="pageview"} 1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterAdminRoutesAreProtected(t *testing.T) {
	r := newTestRouter(t, nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/analytics"},
		{http.MethodPost, "/api/blog"},
		{http.MethodPut, "/api/blog/x"},
		{http.MethodDelete, "/api/blog/x"},
		{http.MethodGet, "/api/contact"},
		{http.MethodPatch, "/api/contact/1"},
		{http.MethodGet, "/api/admin/dashboard"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouterRateLimitsContactBeforeParsing(t *testing.T) {
	r := newTestRouter(t, nil)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{400, 400, 400, 429}, codes)
}

// postContact sends n empty contact submissions from peer, each claiming a
// different forwarded client address, and returns the status codes.
func postContact(r http.Handler, peer string, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.RemoteAddr = peer + ":40000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRouterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newTestRouter(t, nil)
	assert.Equal(t, []int{400, 400, 400, 429, 429, 429}, postContact(r, "203.0.113.7", 6))
}

func TestRouterHonoursForwardedForFromTrustedProxy(t *testing.T) {
	r := newTestRouter(t, []string{"203.0.113.7"})
	assert.Equal(t, []int{400, 400, 400, 400, 400, 400}, postContact(r, "203.0.113.7", 6))
}

func TestRouterRejectsBadProxyList(t *testing.T) {
	a := newTestApp(t)
	a.proxies = []string{"not-an-ip"}
	_, err := a.router()
	assert.Error(t, err)
}

type fakeUpserter struct {
	email string
	hash  []byte
	err   error
}

func (f *fakeUpserter) UpsertAdmin(_ context.Context, email, name string, hash []byte) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.email, f.hash = email, hash
	return &models.User{ID: 1, Email: email, Name: name, Role: models.RoleAdmin}, nil
}

func TestBootstrapAdmin(t *testing.T) {
	cfg := config.New()
	users := &fakeUpserter{}

	require.NoError(t, bootstrapAdmin(context.Background(), cfg, users, logging.Discard()))
	assert.Empty(t, users.email, "skipped without credentials")

	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "hunter22"
	require.NoError(t, bootstrapAdmin(context.Background(), cfg, users, logging.Discard()))
	assert.Equal(t, "admin@example.com", users.email)
	assert.NoError(t, bcrypt.CompareHashAndPassword(users.hash, []byte("hunter22")))

	users.err = errors.New("db down")
	assert.Error(t, bootstrapAdmin(context.Background(), cfg, users, logging.Discard()))
}
