package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobmetrics/domain/core"
	"jobmetrics/domain/run"
	apperrors "jobmetrics/internal/errors"
	"jobmetrics/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

type runRow struct {
	ID             string         `db:"id"`
	SourceHash     string         `db:"source_hash"`
	Filename       string         `db:"filename"`
	CompletedRows  int            `db:"completed_rows"`
	InProgressRows int            `db:"in_progress_rows"`
	Insufficient   string         `db:"insufficient"`
	Report         sql.NullString `db:"report"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (row runRow) toRun() (*run.Run, error) {
	r := &run.Run{
		ID:             core.RunID(row.ID),
		SourceHash:     core.Hash(row.SourceHash),
		Filename:       row.Filename,
		CompletedRows:  row.CompletedRows,
		InProgressRows: row.InProgressRows,
		CreatedAt:      row.CreatedAt.UTC(),
	}
	if row.Insufficient != "" {
		if err := json.Unmarshal([]byte(row.Insufficient), &r.Insufficient); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insufficient keys of run %s: %w", row.ID, err)
		}
	}
	if row.Report.Valid && row.Report.String != "" {
		r.Report = json.RawMessage(row.Report.String)
	}
	return r, nil
}

const runColumns = `id, source_hash, filename, completed_rows, in_progress_rows, insufficient, created_at`

// Create inserts a new run into the database
func (r *runRepository) Create(ctx context.Context, rn *run.Run) error {
	if err := rn.Validate(); err != nil {
		return apperrors.WithCode(apperrors.CodeValidationError, err)
	}

	insufficient, err := json.Marshal(nonNil(rn.Insufficient))
	if err != nil {
		return fmt.Errorf("failed to marshal insufficient keys: %w", err)
	}
	var report sql.NullString
	if len(rn.Report) > 0 {
		report = sql.NullString{String: string(rn.Report), Valid: true}
	}

	query := r.db.Rebind(`INSERT INTO runs (` + runColumns + `, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		rn.ID.String(), rn.SourceHash.String(), rn.Filename, rn.CompletedRows, rn.InProgressRows,
		string(insufficient), rn.CreatedAt.UTC(), report,
	)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to create run: %w", err))
	}
	return nil
}

// GetByID retrieves a run, report included, by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*run.Run, error) {
	query := r.db.Rebind(`SELECT ` + runColumns + `, report FROM runs WHERE id = ?`)
	return r.getOne(ctx, query, id.String(), string(id))
}

// LatestByHash retrieves the newest run for a workbook hash
func (r *runRepository) LatestByHash(ctx context.Context, hash core.Hash) (*run.Run, error) {
	query := r.db.Rebind(`SELECT ` + runColumns + `, report FROM runs WHERE source_hash = ? ORDER BY created_at DESC, id DESC LIMIT 1`)
	return r.getOne(ctx, query, hash.String(), "hash "+hash.Short())
}

func (r *runRepository) getOne(ctx context.Context, query string, arg interface{}, what string) (*run.Run, error) {
	var row runRow
	if err := r.db.QueryRowxContext(ctx, query, arg).StructScan(&row); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.WithCode(apperrors.CodeNotFound, fmt.Errorf("%w %s", core.ErrRunNotFound, what))
		}
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to get run: %w", err))
	}
	return row.toRun()
}

// List retrieves run summaries, newest first
func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*run.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.Rebind(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, fmt.Errorf("failed to list runs: %w", err))
	}

	runs := make([]*run.Run, 0, len(rows))
	for _, row := range rows {
		rn, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, rn)
	}
	return runs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
