package config

import (
	"log/slog"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/assessments")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.DBMaxOpenConns != 25 || cfg.DBMaxIdleConns != 5 {
		t.Errorf("pool = %d/%d, want 25/5", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	}
	if !cfg.AutoMigrate {
		t.Error("AutoMigrate should default to true")
	}
	if cfg.KafkaEnabled {
		t.Error("KafkaEnabled should default to false")
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected an error without DATABASE_URL")
	}
}

func TestLoadConfigKafkaBrokers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/assessments")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.KafkaEnabled {
		t.Error("KafkaEnabled should be true")
	}
	want := []string{"broker-1:9092", "broker-2:9092"}
	if len(cfg.KafkaBrokers) != len(want) {
		t.Fatalf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	for i := range want {
		if cfg.KafkaBrokers[i] != want[i] {
			t.Errorf("KafkaBrokers[%d] = %q, want %q", i, cfg.KafkaBrokers[i], want[i])
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
