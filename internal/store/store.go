// Package store owns the persisted contribution table. It seeds the table
// once from the bulk source, loads it, and replaces it wholesale on save.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/logger"
	"github.com/janekbaraniewski/wfdash/internal/metrics"
	"github.com/janekbaraniewski/wfdash/internal/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// Seeder fetches the bulk records used to populate an empty store.
type Seeder func(ctx context.Context) ([]schema.RawRecord, error)

type SeedResult struct {
	Seeded bool         `json:"seeded"`
	Rows   int          `json:"rows"`
	Report codec.Report `json:"report"`
}

type ReplaceResult struct {
	Rows   int          `json:"rows"`
	Report codec.Report `json:"report"`
}

type Store struct {
	db      *sql.DB
	now     func() time.Time
	log     *logger.Logger
	metrics *metrics.Metrics

	seedGroup singleflight.Group
	writeMu   sync.Mutex

	// beforeCommit runs inside a replace or seed transaction right before
	// commit. Tests use it to fail or stall a write midway.
	beforeCommit func(ctx context.Context, tx *sql.Tx) error
}

type Option func(*Store)

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func OpenStore(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating DB dir: %w: %w", core.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("store: opening DB: %w: %w", core.ErrStoreUnavailable, err)
	}
	configurePool(db)

	store := NewStore(db, opts...)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, log: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS beitraege (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		Timeline_Status TEXT,
		Autor TEXT,
		Beitragsthema TEXT,
		Ressort TEXT,
		"VÖ_Datum" DATE,
		Workflow_Start DATE,
		Workflow_Ende DATE
	);`); err != nil {
		return unavailable("init schema", err)
	}
	if err := verifyColumns(ctx, s.db); err != nil {
		return unavailable("init schema", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_beitraege_voe_datum ON beitraege("VÖ_Datum");`); err != nil {
		return unavailable("init schema", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM beitraege`).Scan(&n); err != nil {
		return 0, unavailable("count rows", err)
	}
	return n, nil
}

// EnsureInitialized creates the table and, when it holds no rows, seeds it
// from seeder. A populated table is left untouched. Concurrent callers share
// one run. On failure the table stays empty.
func (s *Store) EnsureInitialized(ctx context.Context, seeder Seeder) (SeedResult, error) {
	v, err, _ := s.seedGroup.Do("seed", func() (any, error) {
		return s.ensureInitialized(ctx, seeder)
	})
	res, _ := v.(SeedResult)
	return res, err
}

func (s *Store) ensureInitialized(ctx context.Context, seeder Seeder) (SeedResult, error) {
	if err := s.Init(ctx); err != nil {
		s.metrics.Seed("failed")
		return SeedResult{}, err
	}
	n, err := s.Count(ctx)
	if err != nil {
		s.metrics.Seed("failed")
		return SeedResult{}, err
	}
	if n > 0 || seeder == nil {
		s.metrics.Seed("skipped")
		return SeedResult{Rows: n}, nil
	}

	started := s.now()
	raw, err := seeder(ctx)
	if err != nil {
		s.metrics.Seed("failed")
		s.log.Warn("seed_source_failed", "error", err)
		return SeedResult{}, err
	}

	rows, report, err := decodeRecords(raw, core.DirectionISO, codec.DecodeOptions{})
	if err != nil {
		s.metrics.Seed("failed")
		s.log.Warn("seed_decode_failed", "error", err)
		return SeedResult{}, err
	}
	s.metrics.DateFailures(string(core.DirectionISO), report.Count())
	// Bulk ids are not authoritative; the store assigns its own.
	for i := range rows {
		rows[i].ID = 0
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var existing int
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM beitraege`).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		return insertRows(ctx, tx, rows)
	})
	if err != nil {
		s.metrics.Seed("failed")
		s.log.Warn("seed_write_failed", "error", err)
		return SeedResult{}, err
	}
	if existing > 0 {
		s.metrics.Seed("skipped")
		return SeedResult{Rows: existing}, nil
	}

	s.metrics.Seed("seeded")
	s.metrics.SetContributions(len(rows))
	s.log.Info("seeded", "rows", len(rows), "date_failures", report.Count(),
		"duration_ms", s.now().Sub(started).Milliseconds())
	if report.Count() > 0 {
		s.log.Warn("seed_dates_unparsable", "summary", report.Summary())
	}
	return SeedResult{Seeded: len(rows) > 0, Rows: len(rows), Report: report}, nil
}

// LoadAll returns every persisted row in id order. Dates are read in the ISO
// direction; unreadable values come back unset and are logged.
func (s *Store) LoadAll(ctx context.Context) ([]core.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, Timeline_Status, Autor, Beitragsthema, Ressort,
		"VÖ_Datum", Workflow_Start, Workflow_Ende FROM beitraege ORDER BY id`)
	if err != nil {
		return nil, unavailable("load rows", err)
	}
	defer rows.Close()

	var records []schema.Record
	for rows.Next() {
		var id int64
		var status, author, topic, dept sql.NullString
		var pubDate, workflowStart, workflowEnd sql.NullString
		if err := rows.Scan(&id, &status, &author, &topic, &dept, &pubDate, &workflowStart, &workflowEnd); err != nil {
			return nil, unavailable("scan row", err)
		}
		records = append(records, schema.Record{
			ID:              strconv.FormatInt(id, 10),
			Status:          status.String,
			Author:          author.String,
			Topic:           topic.String,
			Department:      dept.String,
			PublicationDate: pubDate.String,
			WorkflowStart:   workflowStart.String,
			WorkflowEnd:     workflowEnd.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate rows", err)
	}

	out, report, err := codec.Decode(records, core.DirectionISO, codec.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("store: decode rows: %w", err)
	}
	if report.Count() > 0 {
		s.metrics.DateFailures(string(core.DirectionISO), report.Count())
		s.log.Warn("load_dates_unparsable", "summary", report.Summary())
	}
	s.metrics.SetContributions(len(out))
	return out, nil
}

// ReplaceAll overwrites the table with the edited grid snapshot. Dates are
// read day-first. Rows keep their id when they carry one; rows missing from
// the snapshot are deleted. The swap is one transaction, and a second save
// while one is running fails with core.ErrBusy.
func (s *Store) ReplaceAll(ctx context.Context, records []schema.RawRecord, opts codec.DecodeOptions) (ReplaceResult, error) {
	if !s.writeMu.TryLock() {
		s.metrics.Save("busy")
		return ReplaceResult{}, core.ErrBusy
	}
	defer s.writeMu.Unlock()

	rows, report, err := decodeRecords(records, core.DirectionDayFirst, opts)
	if err != nil {
		s.metrics.Save("rejected")
		return ReplaceResult{}, err
	}
	if err := checkDuplicateIDs(rows); err != nil {
		s.metrics.Save("rejected")
		return ReplaceResult{}, err
	}
	s.metrics.DateFailures(string(core.DirectionDayFirst), report.Count())

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM beitraege`); err != nil {
			return err
		}
		return insertRows(ctx, tx, rows)
	})
	if err != nil {
		s.metrics.Save("failed")
		s.log.Error("save_failed", "rows", len(rows), "error", err)
		return ReplaceResult{}, err
	}

	s.metrics.Save("ok")
	s.metrics.SetContributions(len(rows))
	s.log.Info("saved", "rows", len(rows), "date_failures", report.Count())
	return ReplaceResult{Rows: len(rows), Report: report}, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return unavailable("write rows", err)
	}
	if s.beforeCommit != nil {
		if err := s.beforeCommit(ctx, tx); err != nil {
			return unavailable("write rows", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, rows []core.Contribution) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO beitraege
		(id, Timeline_Status, Autor, Beitragsthema, Ressort, "VÖ_Datum", Workflow_Start, Workflow_Ende)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Explicit ids go in first so generated ids land above all of them.
	explicit, fresh := lo.FilterReject(rows, func(c core.Contribution, _ int) bool { return c.ID > 0 })
	for _, c := range explicit {
		if err := insertRow(ctx, stmt, c.ID, c); err != nil {
			return err
		}
	}
	for _, c := range fresh {
		if err := insertRow(ctx, stmt, nil, c); err != nil {
			return err
		}
	}
	return nil
}

func insertRow(ctx context.Context, stmt *sql.Stmt, id interface{}, c core.Contribution) error {
	_, err := stmt.ExecContext(ctx, id,
		c.Status, c.Author, c.Topic, c.Department,
		nullableDate(c.PublicationDate), nullableDate(c.WorkflowStart), nullableDate(c.WorkflowEnd),
	)
	return err
}

func decodeRecords(raw []schema.RawRecord, dir core.Direction, opts codec.DecodeOptions) ([]core.Contribution, codec.Report, error) {
	records, err := schema.Normalize(raw)
	if err != nil {
		return nil, codec.Report{}, err
	}
	return codec.Decode(records, dir, opts)
}

func checkDuplicateIDs(rows []core.Contribution) error {
	seen := make(map[int64]struct{}, len(rows))
	for i, c := range rows {
		if c.ID == 0 {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			return &core.SchemaError{Field: core.FieldID, Row: i, Reason: fmt.Sprintf("duplicate id %d", c.ID)}
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func nullableDate(d core.Date) interface{} {
	if !d.IsSet() {
		return nil
	}
	return d.ISO()
}

func unavailable(op string, err error) error {
	if errors.Is(err, core.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("store: %s: %w: %w", op, core.ErrStoreUnavailable, err)
}
