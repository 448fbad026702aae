package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector is a fake Better Stack ingest endpoint.
type collector struct {
	mu       sync.Mutex
	requests int
	auth     []string
	records  []map[string]any
}

func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var batch []map[string]any
	_ = sonic.Unmarshal(body, &batch)

	c.mu.Lock()
	c.requests++
	c.auth = append(c.auth, r.Header.Get("Authorization"))
	c.records = append(c.records, batch...)
	c.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func startBetterStack(t *testing.T, token string) (*collector, *logging.Logger, func(context.Context) error) {
	t.Helper()

	c := &collector{}
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)

	logger, shutdown, err := InitBetterStackLogger(config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: srv.URL,
		BetterStackToken:    token,
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelWarn,
		ServiceName:         "hockey-predictor-settler",
		AppEnv:              config.EnvDev,
	}, logging.NewNop())
	require.NoError(t, err)
	return c, logger, shutdown
}

func drain(t *testing.T, shutdown func(context.Context) error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
}

func TestBetterStack_ShipsRecordsOnShutdown(t *testing.T) {
	t.Parallel()

	c, logger, shutdown := startBetterStack(t, "tok-logs")
	logger.ErrorContext(context.Background(), "settle group failed", "group_id", "grp-a")
	logger.WarnContext(context.Background(), "settle group failed", "group_id", "grp-b")
	drain(t, shutdown)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.records, 2)
	assert.Equal(t, "settle group failed", c.records[0]["message"])
	assert.Equal(t, "grp-a", c.records[0]["group_id"])
	assert.Equal(t, "warn", c.records[1]["level"])
	assert.Equal(t, "hockey-predictor-settler", c.records[1]["service"])
	assert.Contains(t, c.records[1], "dt")
	for _, auth := range c.auth {
		assert.Equal(t, "Bearer tok-logs", auth)
	}
}

func TestBetterStack_BatchesLargeBursts(t *testing.T) {
	t.Parallel()

	c, logger, shutdown := startBetterStack(t, "")
	for i := 0; i < betterStackBatchSize*2+5; i++ {
		logger.Error("relay fetch failed", "attempt", strconv.Itoa(i))
	}
	drain(t, shutdown)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.records, betterStackBatchSize*2+5)
	assert.GreaterOrEqual(t, c.requests, 3)
	assert.Empty(t, c.auth[0])
}

func TestBetterStack_SkipsRecordsBelowMinLevel(t *testing.T) {
	t.Parallel()

	c, logger, shutdown := startBetterStack(t, "tok")
	logger.InfoContext(context.Background(), "relay session opened")
	drain(t, shutdown)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Zero(t, c.requests)
}

func TestBetterStack_DisabledReturnsBaseLogger(t *testing.T) {
	base := logging.NewNop()
	logger, shutdown, err := InitBetterStackLogger(config.Config{}, base)
	require.NoError(t, err)
	assert.Same(t, base, logger)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	assert.Equal(t, "https://in.logs.example.com", normalizeBetterStackEndpoint(" in.logs.example.com "))
	assert.Equal(t, "http://127.0.0.1:9000", normalizeBetterStackEndpoint("http://127.0.0.1:9000"))
	assert.Empty(t, normalizeBetterStackEndpoint("  "))
}
