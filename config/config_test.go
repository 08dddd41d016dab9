package config_test

import (
	"slices"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/voltcart/config"
)

// TestLoadWithPrefix_Defaults — значения по умолчанию без единой переменной окружения.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("CART_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":8080" || c.HTTP.GinMode != "debug" {
		t.Fatalf("HTTP defaults wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadTimeout != 10*time.Second || c.HTTP.WriteTimeout != 10*time.Second ||
		c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.IdleTimeout != 60*time.Second ||
		c.HTTP.HandlerTimeout != 3*time.Second || c.HTTP.GracefulTimeout != 10*time.Second {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}
	if c.Metrics.Addr != ":2112" {
		t.Fatalf("Metrics.Addr: want :2112, got %q", c.Metrics.Addr)
	}
	if c.Tracing.Enabled || c.Tracing.ServiceName != "voltcart" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}
	if c.Postgres.DSN == "" || c.Postgres.MaxConns != 10 || !c.Postgres.AutoMigrate {
		t.Fatalf("Postgres defaults wrong: %+v", c.Postgres)
	}

	if !slices.Equal(c.Kafka.Brokers, []string{"kafka:9092"}) {
		t.Fatalf("Kafka.Brokers: want [kafka:9092], got %v", c.Kafka.Brokers)
	}
	if c.Kafka.StatusTopic != "order-status" || c.Kafka.EventsTopic != "order-events" ||
		c.Kafka.GroupID != "voltcart" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.ProcessTimeout != 5*time.Second || c.Kafka.RetryInitial != time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka timeouts wrong: %+v", c.Kafka)
	}

	if c.Cache.Capacity != 1000 || c.Cache.TTL != 10*time.Minute || c.Cache.WarmUpN != 100 {
		t.Fatalf("Cache defaults wrong: %+v", c.Cache)
	}
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
	if c.Auth.Secret == "" || c.Auth.Issuer != "voltcart" || c.Auth.TTL != 24*time.Hour {
		t.Fatalf("Auth defaults wrong: %+v", c.Auth)
	}
	if c.Client.BaseURL != "http://localhost:8080" || c.Client.Token != "" || c.Client.DBPath != "voltcart.db" {
		t.Fatalf("Client defaults wrong: %+v", c.Client)
	}
}

func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "CART_TEST_OVR"

	env := map[string]string{
		"_HTTP_ADDR":                 ":9999",
		"_HTTP_GIN_MODE":             "release",
		"_HTTP_HANDLER_TIMEOUT":      "4500ms",
		"_TRACING_OTEL_ENABLED":      "true",
		"_TRACING_OTEL_SAMPLE_RATIO": "0.25",
		"_POSTGRES_MAX_CONNS":        "42",
		"_POSTGRES_AUTO_MIGRATE":     "false",
		"_KAFKA_BROKERS":             "k1:9092,k2:9093",
		"_KAFKA_STATUS_TOPIC":        "status-test",
		"_KAFKA_START_OFFSET":        "first",
		"_KAFKA_RETRY_MAX":           "2m",
		"_CACHE_WARMUP_N":            "0",
		"_LOGGER_IS_PROD":            "true",
		"_AUTH_SECRET":               "s3cret",
		"_AUTH_TTL":                  "15m",
		"_CLIENT_BASE_URL":           "https://shop.example",
		"_CLIENT_TOKEN":              "tkn",
		"_CLIENT_DB_PATH":            "/tmp/cart.db",
	}
	for k, v := range env {
		t.Setenv(p+k, v)
	}

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":9999" || c.HTTP.GinMode != "release" || c.HTTP.HandlerTimeout != 4500*time.Millisecond {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if !c.Tracing.Enabled || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if c.Postgres.MaxConns != 42 || c.Postgres.AutoMigrate {
		t.Fatalf("Postgres overrides wrong: %+v", c.Postgres)
	}
	if !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) ||
		c.Kafka.StatusTopic != "status-test" || c.Kafka.StartOffset != "first" || c.Kafka.RetryMax != 2*time.Minute {
		t.Fatalf("Kafka overrides wrong: %+v", c.Kafka)
	}
	if c.Cache.WarmUpN != 0 || !c.Logger.IsProd {
		t.Fatalf("Cache/Logger overrides wrong: %+v %+v", c.Cache, c.Logger)
	}
	if c.Auth.Secret != "s3cret" || c.Auth.TTL != 15*time.Minute {
		t.Fatalf("Auth overrides wrong: %+v", c.Auth)
	}
	if c.Client.BaseURL != "https://shop.example" || c.Client.Token != "tkn" || c.Client.DBPath != "/tmp/cart.db" {
		t.Fatalf("Client overrides wrong: %+v", c.Client)
	}
}

func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "CART_TEST_BAD"
	t.Setenv(p+"_HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
