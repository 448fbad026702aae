package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.StorageDriver != StorageDriverMemory {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.WriteTimeout != 0 {
		t.Fatalf("expected write timeout disabled by default, got %s", cfg.WriteTimeout)
	}
	if cfg.RelayPollInterval != 5*time.Second || cfg.RelayKeepAliveInterval != 15*time.Second || cfg.RelayFetchTimeout != 4*time.Second {
		t.Fatalf("unexpected relay intervals: %s %s %s", cfg.RelayPollInterval, cfg.RelayKeepAliveInterval, cfg.RelayFetchTimeout)
	}
	if cfg.LiveFeedInitialDelay != time.Second || cfg.LiveFeedMaxDelay != 30*time.Second {
		t.Fatalf("unexpected livefeed backoff: %s..%s", cfg.LiveFeedInitialDelay, cfg.LiveFeedMaxDelay)
	}
	if cfg.LiveFeedDegradedAfter != 5 {
		t.Fatalf("unexpected degraded threshold: %d", cfg.LiveFeedDegradedAfter)
	}
	if cfg.SettlementMaxWorkers != 4 {
		t.Fatalf("unexpected settlement workers: %d", cfg.SettlementMaxWorkers)
	}
	if !cfg.MatchAPICircuit.Enabled || cfg.MatchAPICircuit.FailureCount != 5 {
		t.Fatalf("unexpected match api circuit: %+v", cfg.MatchAPICircuit)
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("postgres accepted", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "Postgres")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageDriverPostgres {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_RelayIntervalsValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero poll interval", key: "RELAY_POLL_INTERVAL", val: "0s"},
		{name: "negative keepalive", key: "RELAY_KEEPALIVE_INTERVAL", val: "-1s"},
		{name: "garbage fetch timeout", key: "RELAY_FETCH_TIMEOUT", val: "soon"},
		{name: "fetch timeout longer than poll", key: "RELAY_FETCH_TIMEOUT", val: "10s"},
		{name: "negative write timeout", key: "APP_WRITE_TIMEOUT", val: "-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_LiveFeedBackoffValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LIVEFEED_INITIAL_DELAY", "10s")
	t.Setenv("LIVEFEED_MAX_DELAY", "5s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when max delay is below initial delay")
	}
}

func TestLoad_SettlementWorkersValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SETTLEMENT_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SETTLEMENT_MAX_WORKERS=0")
	}
}

func TestLoad_CircuitParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ANUBIS_CIRCUIT_ENABLED", "false")
	t.Setenv("ANUBIS_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("ANUBIS_CIRCUIT_OPEN_TIMEOUT", "30s")
	t.Setenv("MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ=0")
	}

	t.Setenv("MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ", "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := CircuitConfig{Enabled: false, FailureCount: 3, OpenTimeout: 30 * time.Second, HalfOpenMaxReq: 2}
	if cfg.AnubisCircuit != want {
		t.Fatalf("unexpected anubis circuit: %+v", cfg.AnubisCircuit)
	}
	if cfg.MatchAPICircuit.HalfOpenMaxReq != 1 {
		t.Fatalf("unexpected match api half-open max: %d", cfg.MatchAPICircuit.HalfOpenMaxReq)
	}
}

func TestLoad_RedisConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RedisEnabled || cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}

	t.Setenv("REDIS_DB", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative REDIS_DB")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}

	t.Setenv("BETTERSTACK_ENDPOINT", "in.logs.example.com")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "hockey-predictor-settler")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "hockey-predictor-settler" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
	}
	if cfg.CORSAllowedOrigins[0] != "https://a.example.com" || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}
