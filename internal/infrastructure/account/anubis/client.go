package anubis

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/hockey-predictor/internal/domain/user"
	basecache "github.com/riskibarqy/hockey-predictor/internal/platform/cache"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/platform/resilience"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

const defaultPrincipalTTL = 30 * time.Second

var errAnubisTransient = crerr.New("anubis transient failure")

type CircuitBreakerConfig = resilience.CircuitBreakerConfig

// Client verifies bearer tokens against the anubis introspection endpoint.
// Active principals are cached per token hash for a short TTL.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
	principals    *basecache.Store[user.Principal]
}

func NewClient(
	httpClient *http.Client,
	baseURL, introspectPath, adminKey string,
	breakerCfg CircuitBreakerConfig,
	logger *logging.Logger,
) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: introspectEndpoint(baseURL, introspectPath),
		adminKey:      strings.TrimSpace(adminKey),
		logger:        logger.Named("anubis"),
		breaker:       breakerCfg.Build(),
		principals:    basecache.NewStore[user.Principal](defaultPrincipalTTL),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	return c.principals.GetOrLoad(ctx, principalKey(token), func(ctx context.Context) (user.Principal, error) {
		return c.introspect(ctx, token)
	})
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	var principal user.Principal
	err := c.breaker.Execute(func() error {
		var callErr error
		principal, callErr = c.doIntrospect(ctx, token)
		return callErr
	}, func(err error) bool { return crerr.Is(err, errAnubisTransient) })
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: identity provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return principal, err
}

func (c *Client) doIntrospect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errAnubisTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: identity provider rejected service credentials", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return user.Principal{}, fmt.Errorf("%w: anubis status=%d", errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("anubis introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// principalKey keeps raw tokens out of the cache keyspace.
func principalKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}

// introspectEndpoint resolves path against baseURL. An absolute path wins.
func introspectEndpoint(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
