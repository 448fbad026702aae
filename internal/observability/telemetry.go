package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/hockey-predictor/internal/config"
	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

type stopper struct {
	name string
	stop func(context.Context) error
}

// Telemetry owns the tracing and profiling backends a process started.
type Telemetry struct {
	logger   *logging.Logger
	stoppers []stopper
}

type Options struct {
	// Pprof exposes the debug listener. Only one process per host can own
	// PPROF_ADDR.
	Pprof bool
}

// Start brings up every backend enabled in cfg. On error the ones already
// running are stopped again.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	steps := []func(config.Config) error{t.startUptrace, t.startPyroscope}
	if opts.Pprof {
		steps = append(steps, t.startPprof)
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return nil, errors.Join(err, t.Shutdown(ctx))
		}
	}
	return t, nil
}

// Shutdown stops backends in reverse start order.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.stoppers) - 1; i >= 0; i-- {
		s := t.stoppers[i]
		if err := s.stop(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		t.logger.Info("telemetry backend stopped", "backend", s.name)
	}
	t.stoppers = nil
	return errors.Join(errs...)
}

func (t *Telemetry) push(name string, stop func(context.Context) error) {
	t.stoppers = append(t.stoppers, stopper{name: name, stop: stop})
}

func (t *Telemetry) startUptrace(cfg config.Config) error {
	logging.SetMirror(nil)
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		t.logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled)
		return nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newUptraceLogMirror(cfg.ServiceVersion))
	}
	t.push("uptrace", func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	})

	t.logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)
	return nil
}

func (t *Telemetry) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPasswd,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return err
	}
	t.push("pyroscope", func(context.Context) error { return profiler.Stop() })

	t.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func (t *Telemetry) startPprof(cfg config.Config) error {
	if !cfg.PprofEnabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	srv := &http.Server{Addr: cfg.PprofAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("pprof server failed", "addr", cfg.PprofAddr, "error", err)
		}
	}()
	t.push("pprof", srv.Shutdown)

	t.logger.Info("pprof listening", "addr", cfg.PprofAddr)
	return nil
}
