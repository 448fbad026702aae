package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Responses follow the Google JSON style guide envelope.
const (
	apiVersion  = "2.0"
	errorDomain = "hockey-predictor"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorKind struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{prediction.ErrNegativeScore, http.StatusBadRequest, "invalidPrediction", "INVALID_ARGUMENT"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrForbidden, http.StatusForbidden, "forbidden", "PERMISSION_DENIED"},
	{usecase.ErrConflict, http.StatusConflict, "conflict", "FAILED_PRECONDITION"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
}

var internalErrorKind = errorKind{httpStatus: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}

func classifyError(err error) errorKind {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind
		}
	}
	return internalErrorKind
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := classifyError(err)
	if kind.httpStatus >= http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.reason)
	}
	writeErrorBody(ctx, w, kind, err.Error())
}

// writeInternalError hides the cause from the client.
func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorBody(ctx, w, internalErrorKind, "internal server error")
}

func writeErrorBody(ctx context.Context, w http.ResponseWriter, kind errorKind, message string) {
	writeJSON(ctx, w, kind.httpStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    kind.httpStatus,
			Message: message,
			Status:  kind.status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: kind.reason, Message: message}},
		},
	})
}
