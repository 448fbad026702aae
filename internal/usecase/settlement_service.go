package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultSettlementWorkers = 4

type SettleGroupMatchInput struct {
	GroupID         string
	MatchID         int64
	ActualHomeScore int
	ActualAwayScore int
}

type SettlementResult struct {
	PredictionsScored int
	MembersUpdated    int
}

type SettleMatchInput struct {
	MatchID         int64
	ActualHomeScore int
	ActualAwayScore int
}

type MatchSettlementResult struct {
	MatchID           int64
	Groups            int
	FailedGroups      []string
	PredictionsScored int
	MembersUpdated    int
}

type SweepResult struct {
	MatchesChecked    int
	MatchesFinished   int
	FailedMatches     int
	PredictionsScored int
	MembersUpdated    int
}

// SettlementService turns finished matches into awarded prediction points and
// member score increments. Every step is safe to repeat.
type SettlementService struct {
	groupRepo      group.Repository
	predictionRepo prediction.Repository
	matchSource    match.Source
	logger         *logging.Logger
	maxWorkers     int
	now            func() time.Time
}

func NewSettlementService(
	groupRepo group.Repository,
	predictionRepo prediction.Repository,
	matchSource match.Source,
	maxWorkers int,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = defaultSettlementWorkers
	}

	return &SettlementService{
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		matchSource:    matchSource,
		logger:         logger.Named("settlement"),
		maxWorkers:     maxWorkers,
		now:            time.Now,
	}
}

// SettleGroupMatch scores every still unscored prediction of the group for the
// match and credits the members. A second call for the same match returns zero counts.
func (s *SettlementService) SettleGroupMatch(ctx context.Context, input SettleGroupMatchInput) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleGroupMatch",
		attribute.String("group_id", input.GroupID),
		attribute.Int64("match_id", input.MatchID),
	)
	defer span.End()

	groupID := strings.TrimSpace(input.GroupID)
	if groupID == "" {
		return SettlementResult{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.MatchID <= 0 {
		return SettlementResult{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if input.ActualHomeScore < 0 || input.ActualAwayScore < 0 {
		return SettlementResult{}, fmt.Errorf("%w: actual scores must be non-negative", ErrInvalidInput)
	}

	if _, exists, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return SettlementResult{}, fmt.Errorf("get group: %w", err)
	} else if !exists {
		return SettlementResult{}, fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
	}

	pending, err := s.predictionRepo.ListUnscoredByGroupMatch(ctx, groupID, input.MatchID)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("list unscored predictions: %w", err)
	}
	if len(pending) == 0 {
		return SettlementResult{}, nil
	}

	userOrder := make([]string, 0, len(pending))
	awardsByUser := make(map[string][]prediction.Award, len(pending))
	for _, item := range pending {
		if _, ok := awardsByUser[item.UserID]; !ok {
			userOrder = append(userOrder, item.UserID)
		}
		awardsByUser[item.UserID] = append(awardsByUser[item.UserID], prediction.Award{
			PredictionID: item.ID,
			Points:       prediction.ScorePrediction(item, input.ActualHomeScore, input.ActualAwayScore),
		})
	}

	var result SettlementResult
	for _, userID := range userOrder {
		applied, err := s.predictionRepo.ApplyAwards(ctx, groupID, userID, awardsByUser[userID])
		if err != nil {
			return result, fmt.Errorf("apply awards user=%s: %w", userID, err)
		}

		result.PredictionsScored += applied.Claimed
		if applied.Points == 0 {
			continue
		}
		if !applied.MemberCredited {
			s.logger.WarnContext(ctx, "scored predictions of a user who is no longer a member",
				"group_id", groupID,
				"user_id", userID,
				"match_id", input.MatchID,
				"points", applied.Points,
			)
			continue
		}
		result.MembersUpdated++
	}

	s.logger.InfoContext(ctx, "group match settled",
		"group_id", groupID,
		"match_id", input.MatchID,
		"actual_home", input.ActualHomeScore,
		"actual_away", input.ActualAwayScore,
		"predictions_scored", result.PredictionsScored,
		"members_updated", result.MembersUpdated,
	)
	return result, nil
}

// SettleMatch settles the match in every group that holds predictions for it.
// A failing group does not stop the others.
func (s *SettlementService) SettleMatch(ctx context.Context, input SettleMatchInput) (MatchSettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleMatch", attribute.Int64("match_id", input.MatchID))
	defer span.End()

	if input.MatchID <= 0 {
		return MatchSettlementResult{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}
	if input.ActualHomeScore < 0 || input.ActualAwayScore < 0 {
		return MatchSettlementResult{}, fmt.Errorf("%w: actual scores must be non-negative", ErrInvalidInput)
	}

	groupIDs, err := s.predictionRepo.ListGroupIDsByMatch(ctx, input.MatchID)
	if err != nil {
		return MatchSettlementResult{}, fmt.Errorf("list groups by match: %w", err)
	}

	result := MatchSettlementResult{MatchID: input.MatchID, Groups: len(groupIDs)}
	if len(groupIDs) == 0 {
		return result, nil
	}

	workerCount := s.maxWorkers
	if workerCount > len(groupIDs) {
		workerCount = len(groupIDs)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return MatchSettlementResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		scored   atomic.Int64
		members  atomic.Int64
		failedMu sync.Mutex
		failed   []string
		workers  sync.WaitGroup
	)
	recordFailure := func(groupID string) {
		failedMu.Lock()
		failed = append(failed, groupID)
		failedMu.Unlock()
	}

	for _, groupID := range groupIDs {
		groupID := groupID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			res, err := s.SettleGroupMatch(ctx, SettleGroupMatchInput{
				GroupID:         groupID,
				MatchID:         input.MatchID,
				ActualHomeScore: input.ActualHomeScore,
				ActualAwayScore: input.ActualAwayScore,
			})
			scored.Add(int64(res.PredictionsScored))
			members.Add(int64(res.MembersUpdated))
			if err != nil {
				s.logger.WarnContext(ctx, "settle group match failed", "group_id", groupID, "match_id", input.MatchID, "error", err)
				recordFailure(groupID)
			}
		}); err != nil {
			workers.Done()
			recordFailure(groupID)
			s.logger.WarnContext(ctx, "submit settlement task failed", "group_id", groupID, "error", err)
		}
	}
	workers.Wait()

	sort.Strings(failed)
	result.FailedGroups = failed
	result.PredictionsScored = int(scored.Load())
	result.MembersUpdated = int(members.Load())
	return result, nil
}

// SettleFinished settles every upstream match that is currently finished.
func (s *SettlementService) SettleFinished(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleFinished")
	defer span.End()

	if s.matchSource == nil {
		return SweepResult{}, fmt.Errorf("%w: match source is not configured", ErrDependencyUnavailable)
	}

	matches, err := s.matchSource.ListMatches(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list matches: %w", err)
	}

	var result SweepResult
	for _, snapshot := range match.Annotate(matches, s.now()) {
		result.MatchesChecked++
		if snapshot.Status != match.StatusFinished {
			continue
		}
		result.MatchesFinished++

		res, err := s.SettleMatch(ctx, SettleMatchInput{
			MatchID:         snapshot.ID,
			ActualHomeScore: snapshot.HomeScore,
			ActualAwayScore: snapshot.AwayScore,
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedMatches++
			s.logger.WarnContext(ctx, "sweep settle match failed", "match_id", snapshot.ID, "error", err)
			continue
		}
		if len(res.FailedGroups) > 0 {
			result.FailedMatches++
		}
		result.PredictionsScored += res.PredictionsScored
		result.MembersUpdated += res.MembersUpdated
	}

	s.logger.InfoContext(ctx, "finished match sweep done",
		"matches_checked", result.MatchesChecked,
		"matches_finished", result.MatchesFinished,
		"failed_matches", result.FailedMatches,
		"predictions_scored", result.PredictionsScored,
	)
	return result, nil
}
