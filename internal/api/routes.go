package api

import (
	"net/http"

	"github.com/tallyhq/tally/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Reports.Handler().Routes(),
		newPipelineHandler(domain.Pipeline, runtime.Storage, runtime.Logger).routes(),
	)
}
