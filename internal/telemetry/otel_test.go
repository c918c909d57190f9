package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), false, "")
	if err != nil {
		t.Fatalf("Setup() disabled should not error, got: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Setup() disabled should return a no-op shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown should not error, got: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Exporter creation is lazy, no collector needs to be running
	shutdown, err := Setup(ctx, true, "localhost:4318")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdown(shutdownCtx); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
}
