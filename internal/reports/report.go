// Package reports implements the report domain: the report document and its
// aggregation rules, the upload/fetch lifecycle, and the Postgres registry of
// initiated reports.
package reports

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally/internal/records"
)

// Metadata identifies a report document and records when it was produced.
type Metadata struct {
	ReportID    string    `json:"reportId"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Summary aggregates the retained items of a report document.
type Summary struct {
	TotalItems int     `json:"totalItems"`
	GrandTotal float64 `json:"grandTotal"`
}

// Document is the report artifact persisted for a report id. It is immutable
// once built; field names match the persisted wire format.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Items    []records.Item `json:"items"`
	Summary  Summary        `json:"summary"`
}

// Report is a registry row for an initiated report. The registry carries no
// status column; status is derived from artifact existence at fetch time.
type Report struct {
	ID        uuid.UUID `json:"id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is returned by Initiate: the generated report id and the
// time-limited URL the client deposits its CSV at.
type Receipt struct {
	ReportID  string `json:"reportId"`
	UploadURL string `json:"uploadUrl"`
}

// ReportStatus describes where a report is in its lifecycle.
type ReportStatus string

const (
	// StatusReady means the report artifact exists and can be downloaded.
	StatusReady ReportStatus = "ready"
	// StatusProcessing means the artifact is absent and no conclusive
	// determination could be made.
	StatusProcessing ReportStatus = "processing"
	// StatusNotFound means the existence probe conclusively reported absence.
	StatusNotFound ReportStatus = "not_found"
)

// Status is the fetch result: a lifecycle status and, when ready, a
// time-limited download URL for the artifact.
type Status struct {
	Status      ReportStatus `json:"status"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
}

// HTTPStatus maps a report status to its response code.
func (s Status) HTTPStatus() int {
	switch s.Status {
	case StatusReady:
		return http.StatusOK
	case StatusProcessing:
		return http.StatusAccepted
	case StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SourceKey returns the uploads-container key for a report's CSV source.
func SourceKey(reportID string) string {
	return reportID + ".csv"
}

// ArtifactKey returns the results-container key for a report's artifact.
func ArtifactKey(reportID string) string {
	return reportID + ".json"
}
