package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/hockey-predictor/internal/domain/user"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	matchService      *usecase.MatchService
	predictionService *usecase.PredictionService
	groupService      *usecase.GroupService
	settlementService *usecase.SettlementService
	relay             *usecase.MatchRelay
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	predictionService *usecase.PredictionService,
	groupService *usecase.GroupService,
	settlementService *usecase.SettlementService,
	relay *usecase.MatchRelay,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:      matchService,
		predictionService: predictionService,
		groupService:      groupService,
		settlementService: settlementService,
		relay:             relay,
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody decodes a strict JSON object. An empty body is accepted
// when allowEmpty is set and leaves dst untouched.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: match id must be a positive integer", usecase.ErrInvalidInput)
	}
	return id, nil
}

func parseOptionalMatchID(raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseMatchID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
