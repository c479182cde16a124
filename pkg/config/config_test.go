package config

import "testing"

func TestLoad_KafkaEnabledDefault(t *testing.T) {
	cfg := Load("config-test")

	if !cfg.KafkaEnabled {
		t.Error("expected Kafka to be enabled by default")
	}
}

func TestLoad_KafkaDisabledViaEnv(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "false")

	cfg := Load("config-test")

	if cfg.KafkaEnabled {
		t.Error("expected KAFKA_ENABLED=false to disable Kafka")
	}
}

func TestGetEnvBool_InvalidValueFallsBack(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "maybe")

	if got := getEnvBool(EnvKafkaEnabled, true); !got {
		t.Error("expected unparseable value to fall back to the default")
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 10},
		{0, 10},
		{25, 25},
		{DefaultPaginationLimit + 1, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
