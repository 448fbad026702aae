package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"go.opentelemetry.io/otel/attribute"
)

// MatchService serves upstream matches with their derived status.
type MatchService struct {
	source match.Source
	now    func() time.Time
}

func NewMatchService(source match.Source) *MatchService {
	return &MatchService{source: source, now: time.Now}
}

func (s *MatchService) List(ctx context.Context) ([]match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	items, err := s.source.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return match.Annotate(items, s.now()), nil
}

func (s *MatchService) Get(ctx context.Context, matchID int64) (match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get", attribute.Int64("match_id", matchID))
	defer span.End()

	if matchID <= 0 {
		return match.Snapshot{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.source.GetMatch(ctx, matchID)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Snapshot{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return match.Snapshot{Match: item, Status: match.DeriveStatus(item.PlayedAt, s.now(), item.UpstreamStatus)}, nil
}
