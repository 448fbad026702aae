package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/riskibarqy/hockey-predictor/external/matchapi"
	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/domain/group"
	"github.com/riskibarqy/hockey-predictor/internal/domain/match"
	"github.com/riskibarqy/hockey-predictor/internal/domain/prediction"
	"github.com/riskibarqy/hockey-predictor/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/hockey-predictor/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/hockey-predictor/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/hockey-predictor/internal/platform/cache"
	idgen "github.com/riskibarqy/hockey-predictor/internal/platform/id"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/riskibarqy/hockey-predictor/internal/platform/resilience"
	"github.com/riskibarqy/hockey-predictor/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dependencies are the adapters shared by the api and settler processes.
type Dependencies struct {
	Groups      group.Repository
	Predictions prediction.Repository
	Matches     match.Source

	closers []func() error
}

func NewDependencies(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = logging.Default()
	}

	deps := &Dependencies{}
	if err := deps.openStorage(ctx, cfg, logger); err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Matches = deps.matchSource(ctx, cfg, logger)

	return deps, nil
}

// Close releases storage and cache connections in reverse open order.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *Dependencies) matchSource(ctx context.Context, cfg config.Config, logger *logging.Logger) match.Source {
	var source match.Source = matchapi.NewClient(matchapi.ClientConfig{
		BaseURL:        cfg.MatchAPIBaseURL,
		Timeout:        cfg.MatchAPITimeout,
		MaxRetries:     cfg.MatchAPIMaxRetries,
		Logger:         logger,
		CircuitBreaker: breakerConfig(cfg.MatchAPICircuit),
	})
	if !cfg.CacheEnabled {
		return source
	}

	var store basecache.BytesStore = basecache.NewStore[[]byte](cfg.CacheTTL)
	if cfg.RedisEnabled {
		redisStore := basecache.NewRedisStore(basecache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.ServiceName + ":",
			TTL:       cfg.CacheTTL,
		}, logger)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, falling back to in-process cache", "addr", cfg.RedisAddr, "error", err)
			_ = redisStore.Close()
		} else {
			store = redisStore
			d.closers = append(d.closers, redisStore.Close)
		}
	}

	return cache.NewMatchSource(source, store)
}

func breakerConfig(cfg config.CircuitConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          cfg.Enabled,
		FailureThreshold: cfg.FailureCount,
		OpenTimeout:      cfg.OpenTimeout,
		HalfOpenMaxReq:   cfg.HalfOpenMaxReq,
	}
}

// NewHTTPServer builds the api server. The returned close func releases the
// dependencies and must run after the server has shut down. Shutdown also
// cancels the base context so open live streams end.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	matchSvc := usecase.NewMatchService(deps.Matches)
	predictionSvc := usecase.NewPredictionService(deps.Groups, deps.Predictions, deps.Matches, idgen.NewUUIDGenerator(), logger)
	groupSvc := usecase.NewGroupService(deps.Groups)
	settlementSvc := usecase.NewSettlementService(deps.Groups, deps.Predictions, deps.Matches, cfg.SettlementMaxWorkers, logger)
	relay := usecase.NewMatchRelay(deps.Matches, usecase.MatchRelayConfig{
		PollInterval:      cfg.RelayPollInterval,
		KeepAliveInterval: cfg.RelayKeepAliveInterval,
		FetchTimeout:      cfg.RelayFetchTimeout,
	}, logger)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		breakerConfig(cfg.AnubisCircuit),
		logger,
	)

	handler := httpapi.NewHandler(matchSvc, predictionSvc, groupSvc, settlementSvc, relay, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	baseCtx, cancelStreams := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       90 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelStreams)

	return server, func() error {
		cancelStreams()
		return deps.Close()
	}, nil
}
