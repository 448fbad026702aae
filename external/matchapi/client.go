package matchapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/platform/resilience"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout     = 4 * time.Second
	maxResponseBytes   = 4 << 20
	retryBackoffStep   = 250 * time.Millisecond
	upstreamClientName = "hockey-predictor"
)

var errUpstreamTransient = crerr.New("match api transient failure")

var playedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	HTTPClient     *fasthttp.Client
}

// Client reads matches from the upstream match API.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                upstreamClientName,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
			MaxResponseBodySize: maxResponseBytes,
		}
	}
	return &Client{
		http:       httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.Named("matchapi"),
		breaker:    cfg.CircuitBreaker.Build(),
	}
}

func (c *Client) ListMatches(ctx context.Context) ([]match.Match, error) {
	var payload []matchPayload
	found, err := c.doJSON(ctx, "/matches", &payload)
	if err != nil {
		return nil, fmt.Errorf("fetch matches: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("fetch matches: upstream returned not found")
	}

	out := make([]match.Match, 0, len(payload))
	for _, item := range payload {
		m, err := item.toDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed upstream match", "match_id", item.ID, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID int64) (match.Match, bool, error) {
	if matchID <= 0 {
		return match.Match{}, false, fmt.Errorf("match id must be greater than zero")
	}

	var payload matchPayload
	found, err := c.doJSON(ctx, "/matches/"+strconv.FormatInt(matchID, 10), &payload)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("fetch match id=%d: %w", matchID, err)
	}
	if !found {
		return match.Match{}, false, nil
	}

	m, err := payload.toDomain()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("decode match id=%d: %w", matchID, err)
	}
	return m, true, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) (bool, error) {
	if c.baseURL == "" {
		return false, fmt.Errorf("%w: match api base url is not configured", usecase.ErrDependencyUnavailable)
	}

	// Callers sharing a flight share one breaker slot.
	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var res upstreamResponse
		err := c.breaker.Execute(func() error {
			var reqErr error
			res, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isCircuitFailure)
		return res, err
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "match api circuit breaker rejected request", "state", c.breaker.State())
		return false, fmt.Errorf("%w: match provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return false, err
	}

	res, ok := out.(upstreamResponse)
	if !ok {
		return false, fmt.Errorf("unexpected response payload type %T", out)
	}
	if res.status == http.StatusNotFound {
		return false, nil
	}
	if err := sonic.Unmarshal(res.body, target); err != nil {
		return false, fmt.Errorf("decode provider payload: %w", err)
	}
	return true, nil
}

type upstreamResponse struct {
	status int
	body   []byte
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) (upstreamResponse, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return upstreamResponse{}, err
		}

		req.Reset()
		resp.Reset()
		req.SetRequestURI(fullURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")

		err := c.http.DoDeadline(req, resp, c.deadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errUpstreamTransient, err)
		} else {
			status := resp.StatusCode()
			body := append([]byte(nil), resp.Body()...)
			switch {
			case status >= 200 && status < 300:
				return upstreamResponse{status: status, body: body}, nil
			case status == http.StatusNotFound:
				return upstreamResponse{status: status}, nil
			case isRetryableStatus(status):
				lastErr = fmt.Errorf("%w: API error: %d body=%s", errUpstreamTransient, status, abbreviateBody(body))
			default:
				return upstreamResponse{}, fmt.Errorf("API error: %d body=%s", status, abbreviateBody(body))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * retryBackoffStep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return upstreamResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "match api request failed", "url", fullURL, "error", lastErr)
	return upstreamResponse{}, lastErr
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

type matchPayload struct {
	ID           int64  `json:"id"`
	HomeTeamID   int64  `json:"home_team_id"`
	AwayTeamID   int64  `json:"away_team_id"`
	HomeScore    *int   `json:"home_score"`
	AwayScore    *int   `json:"away_score"`
	PlayedAt     string `json:"played_at"`
	TournamentID int64  `json:"tournament_id"`
	Status       string `json:"status,omitempty"`
}

func (p matchPayload) toDomain() (match.Match, error) {
	if p.ID <= 0 {
		return match.Match{}, fmt.Errorf("missing match id")
	}
	playedAt, err := parsePlayedAt(p.PlayedAt)
	if err != nil {
		return match.Match{}, err
	}

	return match.Match{
		ID:             p.ID,
		HomeTeamID:     p.HomeTeamID,
		AwayTeamID:     p.AwayTeamID,
		HomeScore:      derefScore(p.HomeScore),
		AwayScore:      derefScore(p.AwayScore),
		PlayedAt:       playedAt,
		TournamentID:   p.TournamentID,
		UpstreamStatus: strings.TrimSpace(p.Status),
	}, nil
}

func parsePlayedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("missing played_at")
	}
	for _, layout := range playedAtLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid played_at %q", value)
}

func derefScore(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errUpstreamTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 200 {
		return text
	}
	return text[:200] + "..."
}
