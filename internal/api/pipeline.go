package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/pkg/handlers"
	"github.com/tallyhq/tally/pkg/routes"
	"github.com/tallyhq/tally/pkg/storage"
)

var errInvalidRun = errors.New("run request requires a source key")

// pipelineHandler exposes a manual trigger for pipeline runs, useful when an
// upload needs reprocessing ahead of the next sweep.
type pipelineHandler struct {
	orchestrator *pipeline.Orchestrator
	store        storage.System
	logger       *slog.Logger
}

type runRequest struct {
	Key string `json:"key"`
}

func newPipelineHandler(
	orchestrator *pipeline.Orchestrator,
	store storage.System,
	logger *slog.Logger,
) *pipelineHandler {
	return &pipelineHandler{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger.With("handler", "pipeline"),
	}
}

func (h *pipelineHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/pipeline",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/runs", Handler: h.run},
		},
	}
}

func (h *pipelineHandler) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidRun)
		return
	}

	if err := h.orchestrator.Run(r.Context(), h.store.Uploads(), req.Key); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
