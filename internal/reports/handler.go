package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tallyhq/tally/pkg/handlers"
	"github.com/tallyhq/tally/pkg/pagination"
	"github.com/tallyhq/tally/pkg/routes"
)

// Handler provides HTTP endpoints for report operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// InitiateRequest is the POST /reports body. FileName is advisory and
// defaults to sales-data.csv when omitted.
type InitiateRequest struct {
	FileName string `json:"file_name" validate:"omitempty,max=255"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "reports"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for report endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Fetch},
			{Method: "POST", Pattern: "", Handler: h.Initiate},
		},
	}
}

// Initiate creates a report id and returns it with an upload URL.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
	}

	if err := validate.Struct(req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	receipt, err := h.sys.Initiate(r.Context(), req.FileName)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, receipt)
}

// Fetch reports a report's lifecycle status by its UUID path parameter:
// 200 ready with a download URL, 202 processing, or 404 not found.
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	status := h.sys.Fetch(r.Context(), id.String())
	handlers.RespondJSON(w, status.HTTPStatus(), status)
}

// List returns a paginated list of registered reports.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
