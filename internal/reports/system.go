package reports

import (
	"context"

	"github.com/tallyhq/tally/pkg/pagination"
)

// System defines the public contract for report lifecycle operations.
type System interface {
	Handler() *Handler

	// Initiate generates a fresh report id, registers it, and returns the id
	// with a time-limited upload URL. fileName is advisory metadata only and
	// does not affect the generated id.
	Initiate(ctx context.Context, fileName string) (*Receipt, error)

	// Fetch derives the report's status from artifact existence. A failed
	// existence probe downgrades to StatusProcessing rather than surfacing
	// the storage fault; Fetch itself never returns a storage error.
	Fetch(ctx context.Context, reportID string) Status

	// List returns a page of registered reports, newest first.
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Report], error)
}
