package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/tally/pkg/pagination"
	"github.com/tallyhq/tally/pkg/repository"
)

// Registry records initiated reports for metadata queries. Report status is
// never stored here; it is derived from artifact existence.
type Registry interface {
	Insert(ctx context.Context, report Report) (Report, error)
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Report], error)
}

type registry struct {
	db *sql.DB
}

// NewRegistry creates a Postgres-backed report registry.
func NewRegistry(db *sql.DB) Registry {
	return &registry{db: db}
}

func (r *registry) Insert(ctx context.Context, report Report) (Report, error) {
	q := `
		INSERT INTO reports(id, file_name)
		VALUES ($1, $2)
		RETURNING id, file_name, created_at`

	inserted, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Report, error) {
		return repository.QueryOne(ctx, tx, q, []any{report.ID, report.FileName}, scanReport)
	})
	if err != nil {
		return Report{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return inserted, nil
}

func (r *registry) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Report], error) {
	where := ""
	args := []any{}
	if page.Search != nil {
		where = " WHERE file_name ILIKE '%' || $1 || '%'"
		args = append(args, *page.Search)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	q := fmt.Sprintf(
		"SELECT id, file_name, created_at FROM reports%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, page.PageSize, page.Offset())

	rows, err := repository.QueryMany(ctx, r.db, q, args, scanReport)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

func scanReport(s repository.Scanner) (Report, error) {
	var r Report
	err := s.Scan(&r.ID, &r.FileName, &r.CreatedAt)
	return r, err
}
