package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "DB_PATH", "DATABASE_URL", "REDIS_ADDR", "AMQP_URL", "AMQP_EXCHANGE", "MAX_DRIVERS", "MAX_ORDERS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Backend != BackendSqlite || cfg.Store.DBPath != "data/app.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Limits.MaxDrivers != 1000 || cfg.Limits.MaxOrders != 10000 {
		t.Fatalf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Events.AMQPURL != "" {
		t.Fatalf("expected no broker by default, got %q", cfg.Events.AMQPURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("MAX_DRIVERS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "cache:6379" || cfg.Limits.MaxDrivers != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "mongo"}},
		{name: "postgres without url", env: map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{name: "non-numeric limit", env: map[string]string{"MAX_ORDERS": "lots"}},
		{name: "zero limit", env: map[string]string{"MAX_DRIVERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("SOME_KEY", "  value  ")
	if got := Get("SOME_KEY", "x"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
	t.Setenv("SOME_KEY", "   ")
	if got := Get("SOME_KEY", "x"); got != "x" {
		t.Fatalf("Get = %q, want fallback", got)
	}
}
