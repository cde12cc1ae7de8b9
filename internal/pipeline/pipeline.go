// Package pipeline orchestrates report runs: reading an uploaded CSV source,
// parsing and validating its records, building the report document, and
// persisting the artifact keyed by the report id.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/tallyhq/tally/internal/records"
	"github.com/tallyhq/tally/internal/reports"
	"github.com/tallyhq/tally/pkg/storage"
)

const artifactContentType = "application/json"

// Orchestrator runs the report pipeline for one uploaded source file at a
// time. Runs share no state; concurrent runs for distinct keys are safe.
type Orchestrator struct {
	storage   storage.System
	logger    *slog.Logger
	maxSource int64
}

// New creates an Orchestrator. maxSourceBytes caps the size of source
// objects the pipeline will parse; zero disables the cap.
func New(store storage.System, logger *slog.Logger, maxSourceBytes int64) *Orchestrator {
	return &Orchestrator{
		storage:   store,
		logger:    logger.With("system", "pipeline"),
		maxSource: maxSourceBytes,
	}
}

// Run processes the source object at container/key: read, parse, validate,
// build, and persist <reportId>.json to the results container. The report id
// is the source key with its extension stripped, overwriting the builder's
// provisional id. Any storage or serialization failure propagates to the
// caller; a failed run writes no artifact and is safe to retry since output
// is a pure function of input.
func (o *Orchestrator) Run(ctx context.Context, container, key string) error {
	text, err := o.storage.Read(ctx, container, key)
	if err != nil {
		return fmt.Errorf("read source %s/%s: %w", container, key, err)
	}

	if o.maxSource > 0 && int64(len(text)) > o.maxSource {
		return fmt.Errorf("source %s exceeds %d byte limit", key, o.maxSource)
	}

	candidates := records.Parse(text)
	items := records.Validated(candidates)
	doc := reports.Build(items)

	// source objects are named <reportId>.csv
	reportID := strings.TrimSuffix(key, path.Ext(key))
	doc.Metadata.ReportID = reportID

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize report %s: %w", reportID, err)
	}

	err = o.storage.Write(
		ctx,
		o.storage.Results(),
		reports.ArtifactKey(reportID),
		string(data),
		artifactContentType,
	)
	if err != nil {
		return fmt.Errorf("persist report %s: %w", reportID, err)
	}

	o.logger.Info(
		"report processed",
		"id", reportID,
		"items", doc.Summary.TotalItems,
		"grand_total", doc.Summary.GrandTotal,
	)

	return nil
}
