package httpapi

import "net/http"

func (h *Handler) GetGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGroupLeaderboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	board, err := h.groupService.Leaderboard(ctx, groupID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}
