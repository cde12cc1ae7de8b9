package api

import (
	"github.com/tallyhq/tally/internal/pipeline"
	"github.com/tallyhq/tally/internal/reports"
)

// Domain holds the domain systems that comprise the API.
type Domain struct {
	Reports  reports.System
	Pipeline *pipeline.Orchestrator
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, orchestrator *pipeline.Orchestrator) *Domain {
	registry := reports.NewRegistry(runtime.Database.Connection())

	reportsSystem := reports.New(
		registry,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Reports:  reportsSystem,
		Pipeline: orchestrator,
	}
}
