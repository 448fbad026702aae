package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestIsProbeRequestLog(t *testing.T) {
	assert.True(t, isProbeRequestLog("http request", []any{"method", "GET", "path", "/healthz"}))
	assert.True(t, isProbeRequestLog("http request", []any{"path", "/readyz"}))
	assert.False(t, isProbeRequestLog("http request", []any{"path", "/v1/matches/live"}))
	assert.False(t, isProbeRequestLog("relay session opened", []any{"path", "/healthz"}))
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"group_id", "grp-friday", 7, "orphan-value", "attempt", 2, "dangling"})
	require.Len(t, attrs, 4)

	assert.Equal(t, "group_id", attrs[0].Key)
	assert.Equal(t, "grp-friday", attrs[0].Value.AsString())
	assert.Equal(t, "arg_1", attrs[1].Key)
	assert.Equal(t, "attempt", attrs[2].Key)
	assert.EqualValues(t, 2, attrs[2].Value.AsInt64())
	assert.Equal(t, "dangling", attrs[3].Key)
	assert.Equal(t, otellog.KindEmpty, attrs[3].Value.Kind())
}

func TestLogValue(t *testing.T) {
	assert.Equal(t, "settle failed", logValue(errors.New("settle failed")).AsString())
	assert.Equal(t, "1.5s", logValue(1500*time.Millisecond).AsString())
	assert.EqualValues(t, 42, logValue(int64(42)).AsInt64())
	assert.True(t, logValue(true).AsBool())

	groups := logValue([]string{"grp-a", "grp-b"})
	require.Equal(t, otellog.KindSlice, groups.Kind())
	assert.Len(t, groups.AsSlice(), 2)
}
