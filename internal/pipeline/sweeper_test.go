package pipeline_test

import (
	"testing"
	"time"

	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/pkg/lifecycle"
)

func TestSweeper(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	store.objects["uploads/report-2.csv"] = sourceCSV
	store.objects["uploads/notes.txt"] = "not a source file"

	cfg := &pipeline.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize failed: %v", err)
	}
	cfg.SweepInterval = "10ms"

	orch := pipeline.New(store, testLogger(), 0)
	sweeper := pipeline.NewSweeper(orch, store, testLogger(), cfg)

	lc := lifecycle.New()
	if err := sweeper.Start(lc); err != nil {
		t.Fatalf("sweeper start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		_, first := store.get("results/report-1.json")
		_, second := store.get("results/report-2.json")
		if first && second {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not process pending sources in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, ok := store.get("results/notes.json"); ok {
		t.Error("sweeper processed a non-csv object")
	}

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestSweeperSkipsProcessed(t *testing.T) {
	store := newFakeStorage()
	store.objects["uploads/report-1.csv"] = sourceCSV
	store.objects["results/report-1.json"] = "{}"

	cfg := &pipeline.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("config finalize failed: %v", err)
	}
	cfg.SweepInterval = "10ms"

	orch := pipeline.New(store, testLogger(), 0)
	sweeper := pipeline.NewSweeper(orch, store, testLogger(), cfg)

	lc := lifecycle.New()
	if err := sweeper.Start(lc); err != nil {
		t.Fatalf("sweeper start failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if err := lc.Shutdown(2 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if store.writes != 0 {
		t.Errorf("sweeper reprocessed %d completed sources, want 0", store.writes)
	}
}

func TestPipelineConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &pipeline.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.SweepIntervalDuration() != 30*time.Second {
			t.Errorf("sweep interval = %v, want 30s", cfg.SweepIntervalDuration())
		}
		if cfg.Concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", cfg.Concurrency)
		}
		if cfg.MaxSourceSizeBytes() != 10*1024*1024 {
			t.Errorf("max source size = %d, want 10MB", cfg.MaxSourceSizeBytes())
		}
	})

	t.Run("invalid interval rejected", func(t *testing.T) {
		cfg := &pipeline.Config{SweepInterval: "often"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("finalize accepted invalid sweep_interval")
		}
	})

	t.Run("invalid size rejected", func(t *testing.T) {
		cfg := &pipeline.Config{MaxSourceSize: "huge"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("finalize accepted invalid max_source_size")
		}
	})

	t.Run("merge overlays non-zero fields", func(t *testing.T) {
		cfg := &pipeline.Config{SweepInterval: "30s", Concurrency: 4, MaxSourceSize: "10MB"}
		cfg.Merge(&pipeline.Config{SweepInterval: "5m"})
		if cfg.SweepInterval != "5m" || cfg.Concurrency != 4 || cfg.MaxSourceSize != "10MB" {
			t.Errorf("merge result = %+v", cfg)
		}
	})
}
