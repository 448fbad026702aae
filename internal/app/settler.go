package app

import (
	"context"
	"sync/atomic"

	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/livefeed"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/platform/resilience"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

const settleQueueSize = 64

type matchSettler interface {
	SettleMatch(ctx context.Context, input usecase.SettleMatchInput) (usecase.MatchSettlementResult, error)
	SettleFinished(ctx context.Context) (usecase.SweepResult, error)
}

type feed interface {
	Connect()
	Close()
}

// Settler follows the live relay and settles every match the moment it is
// seen turning finished. A sweep runs at start and after each reconnect.
type Settler struct {
	settlement matchSettler
	tracker    *livefeed.Tracker
	feed       feed
	logger     *logging.Logger
	closeDeps  func() error

	finished chan match.Snapshot
	sweep    chan struct{}
	wasDown  atomic.Bool
}

func NewSettler(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Settler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	settlement := usecase.NewSettlementService(deps.Groups, deps.Predictions, deps.Matches, cfg.SettlementMaxWorkers, logger)
	s := newSettler(settlement, logger)
	s.closeDeps = deps.Close
	s.feed = livefeed.NewClient(
		livefeed.NewHTTPDialer(cfg.LiveFeedURL, nil),
		livefeed.Config{
			Backoff:        resilience.Backoff{Initial: cfg.LiveFeedInitialDelay, Max: cfg.LiveFeedMaxDelay},
			IdleTimeout:    cfg.LiveFeedIdleTimeout,
			ConnectTimeout: cfg.LiveFeedConnectTimeout,
			DegradedAfter:  cfg.LiveFeedDegradedAfter,
		},
		s.Handlers(),
		logger,
	)

	return s, nil
}

func newSettler(settlement matchSettler, logger *logging.Logger) *Settler {
	return &Settler{
		settlement: settlement,
		tracker:    livefeed.NewTracker(),
		logger:     logger.Named("settler"),
		closeDeps:  func() error { return nil },
		finished:   make(chan match.Snapshot, settleQueueSize),
		sweep:      make(chan struct{}, 1),
	}
}

// Handlers feed relay events into the settler. They never block.
func (s *Settler) Handlers() livefeed.Handlers {
	return livefeed.Handlers{
		OnMatches: func(_ string, items []match.Snapshot) {
			for _, item := range s.tracker.Ingest(items) {
				select {
				case s.finished <- item:
				default:
					s.logger.Warn("settle queue full, deferring match to next sweep", "match_id", item.ID)
					s.requestSweep()
				}
			}
		},
		OnRelayError: func(message string) {
			s.logger.Warn("relay reported upstream failure", "message", message)
		},
		OnStateChange: func(status livefeed.Status) {
			switch status.State {
			case livefeed.StateReconnecting:
				s.wasDown.Store(true)
			case livefeed.StateConnected:
				if s.wasDown.CompareAndSwap(true, false) {
					s.requestSweep()
				}
			}
		},
	}
}

func (s *Settler) requestSweep() {
	select {
	case s.sweep <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (s *Settler) Run(ctx context.Context) error {
	s.runSweep(ctx)

	if s.feed != nil {
		s.feed.Connect()
		defer s.feed.Close()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.sweep:
			s.runSweep(ctx)
		case item := <-s.finished:
			s.settle(ctx, item)
		}
	}
}

func (s *Settler) settle(ctx context.Context, item match.Snapshot) {
	res, err := s.settlement.SettleMatch(ctx, usecase.SettleMatchInput{
		MatchID:         item.ID,
		ActualHomeScore: item.HomeScore,
		ActualAwayScore: item.AwayScore,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "settle finished match failed", "match_id", item.ID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "finished match settled",
		"match_id", item.ID,
		"groups", res.Groups,
		"failed_groups", len(res.FailedGroups),
		"predictions_scored", res.PredictionsScored,
	)
	if len(res.FailedGroups) > 0 {
		s.requestSweep()
	}
}

func (s *Settler) runSweep(ctx context.Context) {
	if _, err := s.settlement.SettleFinished(ctx); err != nil && ctx.Err() == nil {
		s.logger.WarnContext(ctx, "finished match sweep failed", "error", err)
	}
}

func (s *Settler) Close() error {
	return s.closeDeps()
}
