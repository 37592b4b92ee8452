package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"Bearer  spaced ", "spaced"},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, BearerToken(r), "header %q", tc.header)
	}
}

func newGateRouter(t *testing.T, svc *Service) chi.Router {
	t.Helper()
	gate := Middleware{Service: svc}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth)
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			require.NotNil(t, user)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(user.Email))
		})
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireRole("administrator"))
		r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(testUser(t, 1, "alice@example.com", "hunter2hunter2", true))
	svc := newTestService(t, repo, staticRoles{1: {"user"}})
	router := newGateRouter(t, svc)

	token, err := svc.IssueToken(context.Background(), "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	// No token.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	// Valid token.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(testUser(t, 1, "alice@example.com", "hunter2hunter2", true))
	repo.add(testUser(t, 2, "root@example.com", "hunter2hunter2", true))
	svc := newTestService(t, repo, staticRoles{1: {"user"}, 2: {"administrator"}})
	router := newGateRouter(t, svc)
	ctx := context.Background()

	userToken, err := svc.IssueToken(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	adminToken, err := svc.IssueToken(ctx, "root@example.com", "hunter2hunter2")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIssueTokenEndpoint(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(testUser(t, 1, "alice@example.com", "hunter2hunter2", true))
	svc := newTestService(t, repo, staticRoles{1: {"user"}})
	handler := NewHandler(nil, svc)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	form := url.Values{"username": {"alice@example.com"}, "password": {"hunter2hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token"`)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)

	// Wrong password gets the same response as an unknown account.
	form.Set("password", "wrong")
	req = httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	form.Set("username", "nobody@example.com")
	req = httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
