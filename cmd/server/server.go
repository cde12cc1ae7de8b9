package main

import (
	"time"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/infrastructure"
	"github.com/tallyhq/tally/internal/pipeline"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	sweeper *pipeline.Sweeper
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	orchestrator := pipeline.New(
		infra.Storage,
		infra.Logger,
		cfg.Pipeline.MaxSourceSizeBytes(),
	)
	sweeper := pipeline.NewSweeper(orchestrator, infra.Storage, infra.Logger, &cfg.Pipeline)

	router := buildRouter(cfg, infra, orchestrator)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
	)

	return &Server{
		infra:   infra,
		sweeper: sweeper,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.sweeper.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
