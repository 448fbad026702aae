package livefeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/platform/resilience"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

var (
	ErrIdleTimeout    = errors.New("live feed idle timeout")
	ErrConnectTimeout = errors.New("live feed connect timeout")
	ErrStreamClosed   = errors.New("live feed stream closed")
)

// Stream is one open push channel.
type Stream interface {
	Next() (Event, error)
	Close() error
}

// Dialer opens a push channel. A returned Stream counts as an open confirmation.
// Dial must return once ctx is done; ctx stays live for as long as the Stream is used.
type Dialer interface {
	Dial(ctx context.Context) (Stream, error)
}

// Handlers are called from the client's reader goroutine. They must not block
// for long and must not call Connect or Disconnect synchronously.
type Handlers struct {
	OnMatches     func(kind string, items []match.Snapshot)
	OnRelayError  func(message string)
	OnStateChange func(status Status)
}

type Config struct {
	Backoff resilience.Backoff
	// IdleTimeout drops a channel that delivered nothing, heartbeats included, for this long.
	IdleTimeout time.Duration
	// ConnectTimeout bounds a dial, response headers included.
	ConnectTimeout time.Duration
	// DegradedAfter marks the feed degraded after this many consecutive failed attempts.
	DegradedAfter int
}

func DefaultConfig() Config {
	return Config{
		Backoff:        resilience.DefaultBackoff(),
		IdleTimeout:    45 * time.Second,
		ConnectTimeout: 10 * time.Second,
		DegradedAfter:  5,
	}
}

type Status struct {
	State    State
	Attempt  int
	Delay    time.Duration
	Degraded bool
}

// Client keeps one push channel open and reconnects with capped exponential
// backoff until Disconnect or Close. At most one channel is live at a time.
type Client struct {
	dialer   Dialer
	cfg      Config
	handlers Handlers
	logger   *logging.Logger

	mu         sync.Mutex
	state      State
	attempt    int
	delay      time.Duration
	generation uint64
	closed     bool
	cancel     context.CancelFunc
	stream     Stream
	retry      *time.Timer
}

func NewClient(dialer Dialer, cfg Config, handlers Handlers, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultConfig()
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.DegradedAfter < 1 {
		cfg.DegradedAfter = defaults.DegradedAfter
	}

	return &Client{
		dialer:   dialer,
		cfg:      cfg,
		handlers: handlers,
		logger:   logger.Named("livefeed"),
		state:    StateDisconnected,
		delay:    cfg.Backoff.Delay(1),
	}
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Connect drops any open channel or pending retry and dials a new channel.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.teardownLocked()
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	status := c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	c.notify(status)
	go c.run(ctx, gen)
}

// Disconnect closes the channel and cancels a pending retry. The attempt
// counter and delay are kept. Safe to call from any state, any number of times.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.teardownLocked()
	c.generation++
	changed := c.state != StateDisconnected
	status := c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if changed {
		c.notify(status)
	}
}

// Reconnect resets the backoff and connects again.
func (c *Client) Reconnect() {
	c.mu.Lock()
	c.attempt = 0
	c.delay = c.cfg.Backoff.Delay(1)
	c.mu.Unlock()

	c.Connect()
}

// Close disconnects and disables the client permanently.
func (c *Client) Close() {
	c.Disconnect()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Client) run(ctx context.Context, gen uint64) {
	stream, err := c.dial(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.fail(gen, fmt.Errorf("dial live feed: %w", err))
		}
		return
	}
	if !c.opened(gen, stream) {
		_ = stream.Close()
		return
	}

	watchdog := time.AfterFunc(c.cfg.IdleTimeout, func() {
		c.logger.Warn("live feed idle, dropping channel", "idle_timeout", c.cfg.IdleTimeout.String())
		_ = stream.Close()
	})
	defer watchdog.Stop()

	for {
		event, err := stream.Next()
		if err != nil {
			if !watchdog.Stop() {
				err = ErrIdleTimeout
			}
			_ = stream.Close()
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = ErrStreamClosed
			}
			c.fail(gen, err)
			return
		}
		watchdog.Reset(c.cfg.IdleTimeout)

		if !c.current(gen) {
			return
		}
		c.dispatch(event)
	}
}

// dial cancels an attempt that has not produced a stream within ConnectTimeout.
// On success dialCtx stays live; the stream reads from it.
func (c *Client) dial(ctx context.Context) (Stream, error) {
	dialCtx, cancel := context.WithCancel(ctx)
	deadline := time.AfterFunc(c.cfg.ConnectTimeout, cancel)

	stream, err := c.dialer.Dial(dialCtx)
	if deadline.Stop() {
		if err != nil {
			cancel()
		}
		return stream, err
	}

	if stream != nil {
		_ = stream.Close()
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w after %s", ErrConnectTimeout, c.cfg.ConnectTimeout)
}

func (c *Client) opened(gen uint64, stream Stream) bool {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return false
	}
	c.stream = stream
	c.attempt = 0
	c.delay = c.cfg.Backoff.Delay(1)
	status := c.setStateLocked(StateConnected)
	c.mu.Unlock()

	c.logger.Info("live feed connected")
	c.notify(status)
	return true
}

func (c *Client) fail(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}
	c.stream = nil
	c.attempt++
	c.delay = c.cfg.Backoff.Delay(c.attempt)
	delay := c.delay
	attempt := c.attempt
	c.retry = time.AfterFunc(delay, func() { c.retryTick(gen) })
	status := c.setStateLocked(StateReconnecting)
	c.mu.Unlock()

	c.logger.Warn("live feed channel lost, scheduling reconnect",
		"attempt", attempt,
		"delay", delay.String(),
		"degraded", status.Degraded,
		"error", cause,
	)
	c.notify(status)
}

func (c *Client) retryTick(gen uint64) {
	c.mu.Lock()
	stale := gen != c.generation || c.state != StateReconnecting
	c.mu.Unlock()
	if stale {
		return
	}
	c.Connect()
}

func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Client) dispatch(event Event) {
	switch event.Name {
	case "ping":
	case "matches":
		var payload matchesPayload
		if err := sonic.Unmarshal(event.Data, &payload); err != nil {
			c.logger.Warn("drop malformed matches event", "error", err)
			return
		}
		items, err := payload.snapshots()
		if err != nil {
			c.logger.Warn("drop malformed matches event", "error", err)
			return
		}
		if c.handlers.OnMatches != nil {
			c.handlers.OnMatches(payload.Type, items)
		}
	case "error":
		var payload errorPayload
		if err := sonic.Unmarshal(event.Data, &payload); err != nil {
			c.logger.Warn("drop malformed error event", "error", err)
			return
		}
		c.logger.Warn("relay reported upstream error", "message", payload.Message)
		if c.handlers.OnRelayError != nil {
			c.handlers.OnRelayError(payload.Message)
		}
	default:
		c.logger.Debug("ignore unknown live feed event", "event", event.Name)
	}
}

func (c *Client) teardownLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.stream != nil {
		_ = c.stream.Close()
		c.stream = nil
	}
}

func (c *Client) setStateLocked(state State) Status {
	c.state = state
	return c.statusLocked()
}

func (c *Client) statusLocked() Status {
	return Status{
		State:    c.state,
		Attempt:  c.attempt,
		Delay:    c.delay,
		Degraded: c.attempt >= c.cfg.DegradedAfter,
	}
}

func (c *Client) notify(status Status) {
	if c.handlers.OnStateChange != nil {
		c.handlers.OnStateChange(status)
	}
}

type matchesPayload struct {
	Type    string         `json:"type"`
	Matches []matchPayload `json:"matches"`
}

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type matchPayload struct {
	ID           int64     `json:"id"`
	HomeTeamID   int64     `json:"home_team_id"`
	AwayTeamID   int64     `json:"away_team_id"`
	HomeScore    int       `json:"home_score"`
	AwayScore    int       `json:"away_score"`
	PlayedAt     time.Time `json:"played_at"`
	TournamentID int64     `json:"tournament_id"`
	Status       string    `json:"status"`
}

func (p matchesPayload) snapshots() ([]match.Snapshot, error) {
	out := make([]match.Snapshot, 0, len(p.Matches))
	for _, item := range p.Matches {
		status, ok := match.ParseStatus(item.Status)
		if !ok {
			return nil, fmt.Errorf("match %d has unknown status %q", item.ID, item.Status)
		}
		out = append(out, match.Snapshot{
			Match: match.Match{
				ID:           item.ID,
				HomeTeamID:   item.HomeTeamID,
				AwayTeamID:   item.AwayTeamID,
				HomeScore:    item.HomeScore,
				AwayScore:    item.AwayScore,
				PlayedAt:     item.PlayedAt,
				TournamentID: item.TournamentID,
			},
			Status: status,
		})
	}
	return out, nil
}
