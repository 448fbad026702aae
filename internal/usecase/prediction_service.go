package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	idgen "github.com/riskibarqy/hockey-predictor/internal/platform/id"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type UpsertPredictionInput struct {
	UserID    string
	GroupID   string
	MatchID   int64
	HomeScore int
	AwayScore int
}

// LivePoints is the provisional score of one prediction against the current
// upstream result. It is never persisted.
type LivePoints struct {
	Prediction prediction.Prediction
	Points     int
}

type LivePointsPreview struct {
	Match  match.Snapshot
	Points []LivePoints
}

type PredictionService struct {
	groupRepo      group.Repository
	predictionRepo prediction.Repository
	matchSource    match.Source
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	groupRepo group.Repository,
	predictionRepo prediction.Repository,
	matchSource match.Source,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		matchSource:    matchSource,
		idGen:          idGen,
		logger:         logger.Named("prediction"),
		now:            time.Now,
	}
}

// Upsert stores the user's guess for a match that has not started yet.
func (s *PredictionService) Upsert(ctx context.Context, input UpsertPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Upsert",
		attribute.String("group_id", input.GroupID),
		attribute.Int64("match_id", input.MatchID),
	)
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.GroupID = strings.TrimSpace(input.GroupID)
	if input.UserID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.GroupID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.MatchID <= 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	item := prediction.Prediction{
		UserID:        input.UserID,
		GroupID:       input.GroupID,
		MatchID:       input.MatchID,
		PredictedHome: input.HomeScore,
		PredictedAway: input.AwayScore,
	}
	if err := item.Validate(); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.requireMember(ctx, input.GroupID, input.UserID); err != nil {
		return prediction.Prediction{}, err
	}

	now := s.now().UTC()
	snapshot, err := s.lookupMatch(ctx, input.MatchID, now)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if snapshot.Status != match.StatusScheduled {
		return prediction.Prediction{}, fmt.Errorf("%w: predictions are closed for match=%d (%s)", ErrConflict, input.MatchID, snapshot.Status)
	}

	existing, exists, err := s.predictionRepo.GetByKey(ctx, input.UserID, input.GroupID, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get prediction: %w", err)
	}
	if exists {
		if existing.IsScored() {
			return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrConflict, prediction.ErrPredictionLocked)
		}
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		newID, err := s.idGen.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		item.ID = newID
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	saved, err := s.predictionRepo.Upsert(ctx, item)
	if err != nil {
		if errors.Is(err, prediction.ErrPredictionLocked) {
			return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction saved",
		"prediction_id", saved.ID,
		"group_id", saved.GroupID,
		"user_id", saved.UserID,
		"match_id", saved.MatchID,
	)
	return saved, nil
}

// ListByGroup returns the group's predictions, newest first. matchID narrows
// the result to one match when set.
func (s *PredictionService) ListByGroup(ctx context.Context, groupID, requesterID string, matchID *int64) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListByGroup", attribute.String("group_id", groupID))
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	requesterID = strings.TrimSpace(requesterID)
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if requesterID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if matchID != nil && *matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return nil, err
	}

	items, err := s.predictionRepo.ListByGroup(ctx, groupID, matchID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by group: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// PreviewLivePoints scores the group's predictions for a match against the
// score the upstream reports right now.
func (s *PredictionService) PreviewLivePoints(ctx context.Context, groupID, requesterID string, matchID int64) (LivePointsPreview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PreviewLivePoints",
		attribute.String("group_id", groupID),
		attribute.Int64("match_id", matchID),
	)
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	requesterID = strings.TrimSpace(requesterID)
	if groupID == "" || requesterID == "" {
		return LivePointsPreview{}, fmt.Errorf("%w: group id and user id are required", ErrInvalidInput)
	}
	if matchID <= 0 {
		return LivePointsPreview{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	if err := s.requireMember(ctx, groupID, requesterID); err != nil {
		return LivePointsPreview{}, err
	}

	snapshot, err := s.lookupMatch(ctx, matchID, s.now().UTC())
	if err != nil {
		return LivePointsPreview{}, err
	}

	items, err := s.predictionRepo.ListByGroup(ctx, groupID, &matchID)
	if err != nil {
		return LivePointsPreview{}, fmt.Errorf("list predictions by match: %w", err)
	}

	preview := LivePointsPreview{Match: snapshot, Points: make([]LivePoints, 0, len(items))}
	for _, item := range items {
		preview.Points = append(preview.Points, LivePoints{
			Prediction: item,
			Points:     prediction.ScorePrediction(item, snapshot.HomeScore, snapshot.AwayScore),
		})
	}
	sort.SliceStable(preview.Points, func(i, j int) bool {
		if preview.Points[i].Points != preview.Points[j].Points {
			return preview.Points[i].Points > preview.Points[j].Points
		}
		return preview.Points[i].Prediction.UserID < preview.Points[j].Prediction.UserID
	})
	return preview, nil
}

func (s *PredictionService) requireMember(ctx context.Context, groupID, userID string) error {
	return requireGroupMember(ctx, s.groupRepo, groupID, userID)
}

func (s *PredictionService) lookupMatch(ctx context.Context, matchID int64, now time.Time) (match.Snapshot, error) {
	if s.matchSource == nil {
		return match.Snapshot{}, fmt.Errorf("%w: match source is not configured", ErrDependencyUnavailable)
	}
	item, exists, err := s.matchSource.GetMatch(ctx, matchID)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Snapshot{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	return match.Snapshot{Match: item, Status: match.DeriveStatus(item.PlayedAt, now, item.UpstreamStatus)}, nil
}

func requireGroupMember(ctx context.Context, repo group.Repository, groupID, userID string) error {
	if _, exists, err := repo.GetByID(ctx, groupID); err != nil {
		return fmt.Errorf("get group: %w", err)
	} else if !exists {
		return fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
	}

	if _, isMember, err := repo.GetMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("get group member: %w", err)
	} else if !isMember {
		return fmt.Errorf("%w: not a member of group=%s", ErrForbidden, groupID)
	}
	return nil
}
