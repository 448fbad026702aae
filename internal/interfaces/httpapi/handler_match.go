package httpapi

import (
	"net/http"
	"time"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	items, err := h.matchService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

// StreamLiveMatches holds the connection open and relays match deltas until
// the client goes away.
func (h *Handler) StreamLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamLiveMatches")
	defer span.End()

	// The server write timeout would otherwise cut long-lived streams.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.DebugContext(ctx, "clear write deadline unsupported", "error", err)
	}

	sink, err := newSSESink(w)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer sink.close()

	h.logger.InfoContext(ctx, "live stream opened", "remote_addr", r.RemoteAddr)
	if err := h.relay.Serve(ctx, sink); err != nil {
		h.logger.InfoContext(ctx, "live stream ended", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	h.logger.InfoContext(ctx, "live stream closed", "remote_addr", r.RemoteAddr)
}
