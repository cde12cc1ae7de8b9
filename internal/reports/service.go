package reports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tallyhq/tally/pkg/pagination"
	"github.com/tallyhq/tally/pkg/storage"
)

// defaultFileName is recorded when a client omits the advisory file name.
const defaultFileName = "sales-data.csv"

type service struct {
	registry   Registry
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a report system from the registry and storage collaborators.
func New(
	registry Registry,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		registry:   registry,
		storage:    store,
		logger:     logger.With("system", "reports"),
		pagination: pagination,
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *service) Initiate(ctx context.Context, fileName string) (*Receipt, error) {
	if fileName == "" {
		fileName = defaultFileName
	}

	id := uuid.New()

	uploadURL, err := s.storage.SignUpload(ctx, SourceKey(id.String()))
	if err != nil {
		return nil, fmt.Errorf("sign upload for report %s: %w", id, err)
	}

	if _, err := s.registry.Insert(ctx, Report{ID: id, FileName: fileName}); err != nil {
		return nil, fmt.Errorf("register report %s: %w", id, err)
	}

	s.logger.Info("report initiated", "id", id, "file_name", fileName)

	return &Receipt{
		ReportID:  id.String(),
		UploadURL: uploadURL,
	}, nil
}

func (s *service) Fetch(ctx context.Context, reportID string) Status {
	exists, err := s.storage.Exists(ctx, s.storage.Results(), ArtifactKey(reportID))
	if err != nil {
		// a failed probe is indistinguishable from "not yet written", so
		// pollers see processing instead of a hard failure
		s.logger.Warn("existence probe failed", "id", reportID, "error", err)
		return Status{Status: StatusProcessing}
	}

	if !exists {
		return Status{Status: StatusNotFound}
	}

	downloadURL, err := s.storage.SignDownload(ctx, ArtifactKey(reportID))
	if err != nil {
		s.logger.Warn("download link generation failed", "id", reportID, "error", err)
		return Status{Status: StatusProcessing}
	}

	return Status{
		Status:      StatusReady,
		DownloadURL: downloadURL,
	}
}

func (s *service) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Report], error) {
	page.Normalize(s.pagination)
	return s.registry.List(ctx, page)
}
