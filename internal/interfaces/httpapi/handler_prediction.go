package httpapi

import (
	"net/http"

	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

func (h *Handler) UpsertPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertPrediction")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertPredictionRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.Upsert(ctx, usecase.UpsertPredictionInput{
		UserID:    principal.UserID,
		GroupID:   req.GroupID,
		MatchID:   req.MatchID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert prediction failed",
			"user_id", principal.UserID,
			"group_id", req.GroupID,
			"match_id", req.MatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionToDTO(item))
}

// SettleGroupMatch scores one group's pending predictions for a finished match.
func (h *Handler) SettleGroupMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleGroupMatch")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req settleGroupMatchRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.SettleGroupMatch(ctx, usecase.SettleGroupMatchInput{
		GroupID:         req.GroupID,
		MatchID:         req.MatchID,
		ActualHomeScore: *req.ActualHomeScore,
		ActualAwayScore: *req.ActualAwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "settle group match failed",
			"user_id", principal.UserID,
			"group_id", req.GroupID,
			"match_id", req.MatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementResultDTO{
		PredictionsScored: result.PredictionsScored,
		MembersUpdated:    result.MembersUpdated,
	})
}

func (h *Handler) ListGroupPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupPredictions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID, err := parseOptionalMatchID(r.URL.Query().Get("match_id"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	items, err := h.predictionService.ListByGroup(ctx, groupID, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list group predictions failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetLivePoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLivePoints")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	preview, err := h.predictionService.PreviewLivePoints(ctx, groupID, principal.UserID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "preview live points failed", "group_id", groupID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, livePointsToDTO(preview))
}

