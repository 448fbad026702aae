package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

func (h *Handler) RunSettleMatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleMatchJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req settleMatchJobRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	started := time.Now()
	result, err := h.settlementService.SettleMatch(ctx, usecase.SettleMatchInput{
		MatchID:         req.MatchID,
		ActualHomeScore: *req.ActualHomeScore,
		ActualAwayScore: *req.ActualAwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run settle match job failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "settle match job completed",
		"match_id", result.MatchID,
		"groups", result.Groups,
		"failed_groups", len(result.FailedGroups),
		"predictions_scored", result.PredictionsScored,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	failed := result.FailedGroups
	if failed == nil {
		failed = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, matchSettlementResultDTO{
		MatchID:           result.MatchID,
		Groups:            result.Groups,
		FailedGroups:      failed,
		PredictionsScored: result.PredictionsScored,
		MembersUpdated:    result.MembersUpdated,
	})
}

func (h *Handler) RunSettleFinishedJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleFinishedJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.settlementService.SettleFinished(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run settle finished job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sweepResultDTO{
		MatchesChecked:    result.MatchesChecked,
		MatchesFinished:   result.MatchesFinished,
		FailedMatches:     result.FailedMatches,
		PredictionsScored: result.PredictionsScored,
		MembersUpdated:    result.MembersUpdated,
	})
}
