package main

import (
	"encoding/json"
	"net/http"

	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/infrastructure"
	"github.com/tallyhq/tally/internal/pipeline"
)

func buildRouter(
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	orchestrator *pipeline.Orchestrator,
) http.Handler {
	mux := http.NewServeMux()

	apiHandler := api.NewHandler(cfg, infra, orchestrator)
	basePath := cfg.API.BasePath
	mux.Handle(basePath+"/", http.StripPrefix(basePath, apiHandler))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return mux
}
