package telemetry_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"care-companion/internal/telemetry"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := telemetry.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestInitLogger_WritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	logger, closer, err := telemetry.InitLogger(dir, "info")
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	logger.Info("hello", "k", "v")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, telemetry.ServiceName+".log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("log file empty")
	}
}

func TestInitTelemetry_Cleanup(t *testing.T) {
	dir := t.TempDir()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(context.Background(), dir, "test")
	if err != nil {
		t.Fatalf("InitTelemetry: %v", err)
	}
	defer cleanup()
	if tracer == nil || meter == nil {
		t.Fatal("nil tracer or meter")
	}
	_, span := tracer.Start(context.Background(), "probe")
	span.End()
}
