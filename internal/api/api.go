// Package api assembles the API surface: domain systems, route registration,
// and the middleware stack.
package api

import (
	"net/http"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/infrastructure"
	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/pkg/middleware"
)

// NewHandler creates the API handler with all domain handlers and middleware.
// The returned handler expects the API base path already stripped.
func NewHandler(
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	orchestrator *pipeline.Orchestrator,
) http.Handler {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, orchestrator)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	stack := middleware.New()
	stack.Use(middleware.CORS(&cfg.API.CORS))
	stack.Use(middleware.Logger(runtime.Logger))

	return stack.Apply(mux)
}
