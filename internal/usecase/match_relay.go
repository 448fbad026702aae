package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

type RelayEventKind string

const (
	RelayEventMatches RelayEventKind = "matches"
	RelayEventError   RelayEventKind = "error"
	RelayEventPing    RelayEventKind = "ping"
)

type RelayUpdateType string

const (
	RelayUpdateInitial RelayUpdateType = "initial"
	RelayUpdateDelta   RelayUpdateType = "update"
)

// RelayEvent is one message pushed to a connected client. Type and Matches are
// set for matches events, Message for error events.
type RelayEvent struct {
	Kind    RelayEventKind
	Type    RelayUpdateType
	Matches []match.Snapshot
	Message string
}

// EventSink receives the events of one relay session. A Send error ends the session.
type EventSink interface {
	Send(ctx context.Context, event RelayEvent) error
}

type MatchRelayConfig struct {
	PollInterval      time.Duration
	KeepAliveInterval time.Duration
	FetchTimeout      time.Duration
}

func DefaultMatchRelayConfig() MatchRelayConfig {
	return MatchRelayConfig{
		PollInterval:      5 * time.Second,
		KeepAliveInterval: 15 * time.Second,
		FetchTimeout:      4 * time.Second,
	}
}

// MatchRelay polls the upstream source for each connected client and pushes
// only what changed since that client's previous fetch.
type MatchRelay struct {
	source match.Source
	cfg    MatchRelayConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewMatchRelay(source match.Source, cfg MatchRelayConfig, logger *logging.Logger) *MatchRelay {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultMatchRelayConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.KeepAliveInterval <= 0 {
		cfg.KeepAliveInterval = defaults.KeepAliveInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}

	return &MatchRelay{
		source: source,
		cfg:    cfg,
		logger: logger.Named("relay"),
		now:    time.Now,
	}
}

// Serve runs one relay session until ctx is cancelled or the sink fails.
// Cancellation is a normal end and returns nil.
func (r *MatchRelay) Serve(ctx context.Context, sink EventSink) error {
	if sink == nil {
		return fmt.Errorf("%w: event sink is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := &relaySession{
		relay:  r,
		sink:   sink,
		cancel: cancel,
	}

	r.logger.InfoContext(ctx, "relay session opened")
	var wg conc.WaitGroup
	wg.Go(func() { session.pollLoop(ctx) })
	wg.Go(func() { session.keepAliveLoop(ctx) })
	wg.Wait()

	err := session.failure()
	r.logger.InfoContext(ctx, "relay session closed", "error", err)
	return err
}

type relaySession struct {
	relay  *MatchRelay
	sink   EventSink
	cancel context.CancelFunc

	// sendMu serializes sink writes from both loops.
	sendMu  sync.Mutex
	sendErr error

	// Owned by pollLoop.
	previous []match.Snapshot
	primed   bool
}

func (s *relaySession) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.relay.cfg.PollInterval)
	defer ticker.Stop()

	s.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *relaySession) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(s.relay.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.send(ctx, RelayEvent{Kind: RelayEventPing})
		}
	}
}

func (s *relaySession) poll(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.relay.cfg.FetchTimeout)
	matches, err := s.relay.source.ListMatches(fetchCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.relay.logger.WarnContext(ctx, "relay upstream fetch failed", "error", err)
		s.send(ctx, RelayEvent{Kind: RelayEventError, Message: relayErrorMessage(err)})
		return
	}

	next := match.Annotate(matches, s.relay.now())
	if !s.primed {
		s.previous = next
		s.primed = true
		s.send(ctx, RelayEvent{Kind: RelayEventMatches, Type: RelayUpdateInitial, Matches: next})
		return
	}

	changed := match.Changed(s.previous, next)
	s.previous = next
	if len(changed) == 0 {
		return
	}

	for _, item := range changed {
		s.relay.logger.DebugContext(ctx, "relay match changed",
			"match_id", item.ID,
			"home_score", item.HomeScore,
			"away_score", item.AwayScore,
			"status", item.Status,
		)
	}
	s.send(ctx, RelayEvent{Kind: RelayEventMatches, Type: RelayUpdateDelta, Matches: changed})
}

func (s *relaySession) send(ctx context.Context, event RelayEvent) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.sendErr != nil || ctx.Err() != nil {
		return
	}
	if err := s.sink.Send(ctx, event); err != nil {
		s.sendErr = err
		s.cancel()
	}
}

func (s *relaySession) failure() error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.sendErr
}

// relayErrorMessage is what stream subscribers see; upstream detail stays in the log.
func relayErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream fetch timed out"
	case errors.Is(err, ErrDependencyUnavailable):
		return "match source unavailable"
	default:
		return "failed to fetch matches"
	}
}
