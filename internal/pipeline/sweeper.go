package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally/internal/reports"
	"github.com/tallyhq/tally/pkg/lifecycle"
	"github.com/tallyhq/tally/pkg/storage"
)

// Sweeper periodically scans the uploads container and runs the pipeline for
// any CSV source without a corresponding result artifact. Failed runs are
// left in place and retried on the next sweep; reruns reproduce the same
// artifact, so duplicate processing is harmless.
type Sweeper struct {
	orchestrator *Orchestrator
	storage      storage.System
	logger       *slog.Logger
	interval     time.Duration
	concurrency  int
}

// NewSweeper creates a Sweeper from the pipeline configuration.
func NewSweeper(
	orchestrator *Orchestrator,
	store storage.System,
	logger *slog.Logger,
	cfg *Config,
) *Sweeper {
	return &Sweeper{
		orchestrator: orchestrator,
		storage:      store,
		logger:       logger.With("system", "sweeper"),
		interval:     cfg.SweepIntervalDuration(),
		concurrency:  cfg.Concurrency,
	}
}

// Start launches the sweep loop and registers a shutdown hook that waits for
// it to drain.
func (s *Sweeper) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting pipeline sweeper", "interval", s.interval)

	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				s.sweep(lc.Context())
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
		s.logger.Info("pipeline sweeper stopped")
	})

	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	keys, err := s.storage.List(ctx, s.storage.Uploads(), "")
	if err != nil {
		s.logger.Error("sweep listing failed", "error", err)
		return
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, key := range keys {
		if !strings.HasSuffix(key, ".csv") {
			continue
		}

		reportID := strings.TrimSuffix(key, ".csv")

		exists, err := s.storage.Exists(ctx, s.storage.Results(), reports.ArtifactKey(reportID))
		if err != nil || exists {
			continue
		}

		group.Go(func() error {
			if err := s.orchestrator.Run(ctx, s.storage.Uploads(), key); err != nil {
				s.logger.Error("pipeline run failed", "key", key, "error", err)
			}
			return nil
		})
	}

	group.Wait()
}
