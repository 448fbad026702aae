package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/hockey-predictor/internal/domain/user"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serveWithOrigin(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/v1/matches", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	const site = "https://rinkside.example.com"

	t.Run("configured origin is echoed", func(t *testing.T) {
		rec := serveWithOrigin(CORS([]string{" " + site + " "}, okHandler), http.MethodGet, site)
		assert.Equal(t, site, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wildcard preflight", func(t *testing.T) {
		rec := serveWithOrigin(CORS([]string{"*"}, okHandler), http.MethodOptions, site)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Last-Event-ID")
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		rec := serveWithOrigin(CORS([]string{site}, okHandler), http.MethodGet, "https://elsewhere.example.com")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("same origin request passes through", func(t *testing.T) {
		rec := serveWithOrigin(CORS(nil, okHandler), http.MethodGet, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("bearer  tok-123 ")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	for _, header := range []string{"", "tok-123", "Basic abc", "Bearer   "} {
		_, err := bearerToken(header)
		assert.ErrorIs(t, err, usecase.ErrUnauthorized, "header %q", header)
	}
}

type staticVerifier map[string]string

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if id, ok := v[token]; ok {
		return user.Principal{UserID: id}, nil
	}
	return user.Principal{}, usecase.ErrUnauthorized
}

func TestRequireAuth_StoresPrincipal(t *testing.T) {
	var seen string
	h := RequireAuth(staticVerifier{"tok-ana": "user-ana"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFromContext(r.Context())
		require.True(t, ok)
		seen = p.UserID
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/groups/g/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer tok-ana")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "user-ana", seen)

	req.Header.Set("Authorization", "Bearer tok-nobody")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireInternalJobToken(t *testing.T) {
	serve := func(configured, provided string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle-finished", nil)
		if provided != "" {
			req.Header.Set(internalJobTokenHeader, provided)
		}
		rec := httptest.NewRecorder()
		RequireInternalJobToken(configured, okHandler).ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("s3cret", "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, serve("s3cret", "guess"))
	assert.Equal(t, http.StatusUnauthorized, serve("s3cret", ""))
	assert.Equal(t, http.StatusServiceUnavailable, serve(" ", "anything"))
}

func TestShouldTraceRequest(t *testing.T) {
	for _, path := range []string{"/healthz", "/livez", " /READYZ "} {
		assert.False(t, shouldTraceRequest(path), path)
	}
	for _, path := range []string{"/v1/matches", "/v1/matches/live", "/docs"} {
		assert.True(t, shouldTraceRequest(path), path)
	}
}

func TestStartSpan_NoParentIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.ListMatches")
	defer span.End()

	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
}
