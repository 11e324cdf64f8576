package logger

import (
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/deppfellow/go-marketplace/internal/config"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	tests := []struct {
		level zerolog.Level
		want  tracelog.LogLevel
	}{
		{level: zerolog.TraceLevel, want: tracelog.LogLevelTrace},
		{level: zerolog.DebugLevel, want: tracelog.LogLevelDebug},
		{level: zerolog.InfoLevel, want: tracelog.LogLevelInfo},
		{level: zerolog.WarnLevel, want: tracelog.LogLevelWarn},
		{level: zerolog.ErrorLevel, want: tracelog.LogLevelError},
		{level: zerolog.Disabled, want: tracelog.LogLevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tracelog.LogLevel(GetPgxTraceLogLevel(tt.level))
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLoggerServiceWithoutLicenseKey(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	service := NewLoggerService(cfg)

	if service.GetApplication() != nil {
		t.Fatal("expected no New Relic application without a license key")
	}

	// Shutdown must be safe when the agent never started.
	service.Shutdown()
}

func TestNewLoggerWithServiceFallsBackToInfo(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "info"

	log := NewLoggerWithService(cfg, &LoggerService{})
	if log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %v", log.GetLevel())
	}
}
