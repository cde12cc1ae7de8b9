package storage_test

import (
	"testing"
	"time"

	"github.com/tallyhq/tally/pkg/storage"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.UploadsContainer != "uploads" {
			t.Errorf("uploads container = %q, want uploads", cfg.UploadsContainer)
		}
		if cfg.ResultsContainer != "results" {
			t.Errorf("results container = %q, want results", cfg.ResultsContainer)
		}
		if cfg.LinkTTLDuration() != time.Hour {
			t.Errorf("link ttl = %v, want 1h", cfg.LinkTTLDuration())
		}
	})

	t.Run("missing connection string rejected", func(t *testing.T) {
		cfg := &storage.Config{}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("finalize accepted empty connection_string")
		}
	})

	t.Run("identical containers rejected", func(t *testing.T) {
		cfg := &storage.Config{
			ConnectionString: "UseDevelopmentStorage=true",
			UploadsContainer: "blobs",
			ResultsContainer: "blobs",
		}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("finalize accepted identical uploads and results containers")
		}
	})

	t.Run("invalid ttl rejected", func(t *testing.T) {
		cfg := &storage.Config{
			ConnectionString: "UseDevelopmentStorage=true",
			LinkTTL:          "soon",
		}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("finalize accepted invalid link_ttl")
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_STORAGE_LINK_TTL", "15m")
		cfg := &storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
		env := &storage.Env{LinkTTL: "TEST_STORAGE_LINK_TTL"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.LinkTTLDuration() != 15*time.Minute {
			t.Errorf("link ttl = %v, want 15m", cfg.LinkTTLDuration())
		}
	})
}

func TestConfigMerge(t *testing.T) {
	cfg := &storage.Config{
		ConnectionString: "base",
		UploadsContainer: "uploads",
		ResultsContainer: "results",
		LinkTTL:          "1h",
	}

	cfg.Merge(&storage.Config{ConnectionString: "overlay", LinkTTL: "30m"})

	if cfg.ConnectionString != "overlay" {
		t.Errorf("connection string = %q, want overlay", cfg.ConnectionString)
	}
	if cfg.LinkTTL != "30m" {
		t.Errorf("link ttl = %q, want 30m", cfg.LinkTTL)
	}
	if cfg.UploadsContainer != "uploads" || cfg.ResultsContainer != "results" {
		t.Errorf("containers changed unexpectedly: %+v", cfg)
	}
}
