package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/live", handler.StreamLiveMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPredictionRoutes(mux, handler, verifier)
	registerAuthorizedGroupRoutes(mux, handler, verifier)
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/predictions", RequireAuth(verifier, http.HandlerFunc(handler.UpsertPrediction)))
	mux.Handle("POST /v1/predictions/settle", RequireAuth(verifier, http.HandlerFunc(handler.SettleGroupMatch)))
}

func registerAuthorizedGroupRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/groups/{groupID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.ListGroupPredictions)))
	mux.Handle("GET /v1/groups/{groupID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetGroupLeaderboard)))
	mux.Handle("GET /v1/groups/{groupID}/matches/{matchID}/live-points", RequireAuth(verifier, http.HandlerFunc(handler.GetLivePoints)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle-match", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleMatchJob)))
	mux.Handle("POST /v1/internal/jobs/settle-finished", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleFinishedJob)))
}
