package anubis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker CircuitBreakerConfig) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "v1/auth/introspect", "admin-secret", breaker, logging.NewNop())
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func TestVerifyAccessToken_ResolvesPrincipal(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/auth/introspect", r.URL.Path)
		assert.Equal(t, "admin-secret", r.Header.Get("x-admin-key"))

		var req introspectRequest
		assert.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-goalie", req.Token)

		writeJSON(w, map[string]any{"active": true, "user_id": "user-ana", "email": "ana@rink.test", "jti": "ignored"})
	}, CircuitBreakerConfig{})

	principal, err := client.VerifyAccessToken(context.Background(), "  tok-goalie ")
	require.NoError(t, err)
	assert.Equal(t, "user-ana", principal.UserID)
	assert.Equal(t, "ana@rink.test", principal.Email)
}

func TestVerifyAccessToken_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "inactive token",
			handler: func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, map[string]any{"active": false}) },
			want:    usecase.ErrUnauthorized,
		},
		{
			name:    "unauthorized status",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			want:    usecase.ErrUnauthorized,
		},
		{
			name:    "admin key rejected",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
			want:    usecase.ErrDependencyUnavailable,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, tc.handler, CircuitBreakerConfig{})
			_, err := client.VerifyAccessToken(context.Background(), "tok")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerifyAccessToken_EmptyTokenSkipsUpstream(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) }, CircuitBreakerConfig{})

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	require.ErrorIs(t, err, usecase.ErrUnauthorized)
	assert.Zero(t, calls.Load())
}

func TestVerifyAccessToken_CachesActivePrincipal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"active": true, "user_id": "user-ben"})
	}, CircuitBreakerConfig{})

	for i := 0; i < 3; i++ {
		principal, err := client.VerifyAccessToken(context.Background(), "tok-cached")
		require.NoError(t, err)
		assert.Equal(t, "user-ben", principal.UserID)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestVerifyAccessToken_OpenCircuitShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	_, err := client.VerifyAccessToken(context.Background(), "tok-1")
	require.Error(t, err)

	_, err = client.VerifyAccessToken(context.Background(), "tok-2")
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestIntrospectEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://auth.test/v1/introspect", introspectEndpoint("https://auth.test/", "/v1/introspect"))
	assert.Equal(t, "https://auth.test/v1/introspect", introspectEndpoint("https://auth.test", "v1/introspect"))
	assert.Equal(t, "https://other.test/x", introspectEndpoint("https://auth.test", "https://other.test/x"))
	assert.Equal(t, "https://auth.test", introspectEndpoint("https://auth.test/", ""))
}
