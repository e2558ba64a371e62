// Package captionrun persists collection runs and their caption mappings in
// PostgreSQL. A run is written once and never updated.
package captionrun

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/captionmap/internal/adapter/postgres"
	"github.com/heartmarshall/captionmap/internal/domain"
)

// DefaultChunkSize is the number of image_captions rows per INSERT.
const DefaultChunkSize = 500

var (
	runColumns     = []string{"id", "base_dir", "validate_images", "image_count", "caption_count", "digest", "started_at", "finished_at"}
	captionColumns = []string{"run_id", "image_path", "position", "caption"}

	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
)

// Repo provides caption run persistence backed by PostgreSQL.
type Repo struct {
	db        postgres.DB
	txm       *postgres.TxManager
	chunkSize int
}

// New creates a caption run repository. chunkSize <= 0 selects
// DefaultChunkSize.
func New(db postgres.DB, txm *postgres.TxManager, chunkSize int) *Repo {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Repo{db: db, txm: txm, chunkSize: chunkSize}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// SaveRun stores the run row and every caption of m in one transaction.
// Captions are written in sorted path order with their list position.
func (r *Repo) SaveRun(ctx context.Context, run domain.CollectionRun, m domain.CaptionMapping) error {
	return r.txm.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.db)

		sql, args, err := psql.Insert("caption_runs").
			Columns(runColumns...).
			Values(run.ID, run.BaseDir, run.ValidateImages, run.ImageCount, run.CaptionCount,
				run.Digest, run.StartedAt, run.FinishedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build caption_runs insert: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, "caption_run", run.ID)
		}

		insert := newCaptionInsert()
		rows := 0
		flush := func() error {
			if rows == 0 {
				return nil
			}
			sql, args, err := insert.ToSql()
			if err != nil {
				return fmt.Errorf("build image_captions insert: %w", err)
			}
			if _, err := q.Exec(ctx, sql, args...); err != nil {
				return postgres.MapError(err, "image_captions of run", run.ID)
			}
			insert, rows = newCaptionInsert(), 0
			return nil
		}

		for _, path := range m.Paths() {
			for pos, caption := range m[path] {
				insert = insert.Values(run.ID, path, pos, caption)
				rows++
				if rows == r.chunkSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		}
		return flush()
	})
}

func newCaptionInsert() sq.InsertBuilder {
	return psql.Insert("image_captions").Columns(captionColumns...)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// runRecord is the scan target for caption_runs rows.
type runRecord struct {
	ID             uuid.UUID `db:"id"`
	BaseDir        string    `db:"base_dir"`
	ValidateImages bool      `db:"validate_images"`
	ImageCount     int       `db:"image_count"`
	CaptionCount   int       `db:"caption_count"`
	Digest         string    `db:"digest"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
}

func (r runRecord) toDomain() domain.CollectionRun {
	return domain.CollectionRun{
		ID:             r.ID,
		BaseDir:        r.BaseDir,
		ValidateImages: r.ValidateImages,
		ImageCount:     r.ImageCount,
		CaptionCount:   r.CaptionCount,
		Digest:         r.Digest,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

// GetRun returns the run summary. Returns domain.ErrNotFound if absent.
func (r *Repo) GetRun(ctx context.Context, id uuid.UUID) (*domain.CollectionRun, error) {
	sql, args, err := psql.Select(runColumns...).
		From("caption_runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build caption_runs select: %w", err)
	}

	var rec runRecord
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("caption_run %s: %w", id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "caption_run", id)
	}

	run := rec.toDomain()
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.CollectionRun, error) {
	sql, args, err := psql.Select(runColumns...).
		From("caption_runs").
		OrderBy("finished_at DESC", "id").
		Limit(uint64(max(limit, 1))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build caption_runs list: %w", err)
	}

	var recs []runRecord
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &recs, sql, args...); err != nil {
		return nil, postgres.MapError(err, "caption_run", uuid.Nil)
	}

	runs := make([]domain.CollectionRun, len(recs))
	for i, rec := range recs {
		runs[i] = rec.toDomain()
	}
	return runs, nil
}

// GetRunMapping rebuilds the caption mapping stored for a run. Returns
// domain.ErrNotFound if the run does not exist.
func (r *Repo) GetRunMapping(ctx context.Context, id uuid.UUID) (domain.CaptionMapping, error) {
	if _, err := r.GetRun(ctx, id); err != nil {
		return nil, err
	}

	sql, args, err := psql.Select("image_path", "caption").
		From("image_captions").
		Where(sq.Eq{"run_id": id}).
		OrderBy("image_path", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build image_captions select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "image_captions of run", id)
	}
	defer rows.Close()

	m := domain.NewCaptionMapping()
	for rows.Next() {
		var path, caption string
		if err := rows.Scan(&path, &caption); err != nil {
			return nil, fmt.Errorf("scan image_caption: %w", err)
		}
		m.Add(path, caption)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "image_captions of run", id)
	}
	return m, nil
}
