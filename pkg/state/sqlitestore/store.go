// Package sqlitestore persists item states in a single SQLite table using the
// pure Go modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `CREATE TABLE IF NOT EXISTS records (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	etag TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	parent_id TEXT NOT NULL DEFAULT '',
	extra TEXT NOT NULL DEFAULT '{}',
	codec TEXT NOT NULL,
	payload BLOB NOT NULL,
	PRIMARY KEY (kind, id)
)`

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the payload encoding. JSON is the default.
func WithCodec(codec state.Codec) Option {
	return func(s *Store) {
		if codec != nil {
			s.codec = codec
		}
	}
}

func WithClock(clock taskcore.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store implements state.Store[taskcore.State]. ETags are random UUIDs
// replaced on every save.
type Store struct {
	db     *sql.DB
	path   string
	codec  state.Codec
	clock  taskcore.Clock
	logger zerolog.Logger
}

var _ state.Store[taskcore.State] = (*Store)(nil)

// NewStore opens, or creates, the database at path.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = "taskcore.db"
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	s := &Store{
		db:     db,
		path:   path,
		codec:  state.JSONCodec{},
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, ref state.Ref) (taskcore.State, state.Meta, bool, error) {
	if _, err := ref.Identifier(); err != nil {
		return taskcore.State{}, state.Meta{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT etag, updated_at, parent_id, extra, codec, payload FROM records WHERE kind = ? AND id = ?`,
		string(ref.Kind), ref.ID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return taskcore.State{}, state.Meta{}, false, nil
	}
	if err != nil {
		return taskcore.State{}, state.Meta{}, false, fmt.Errorf("load %s/%s: %w", ref.Kind, ref.ID, err)
	}
	snapshot, err := s.decode(rec)
	if err != nil {
		return taskcore.State{}, state.Meta{}, false, fmt.Errorf("load %s/%s: %w", ref.Kind, ref.ID, err)
	}
	return snapshot, rec.meta, true, nil
}

func (s *Store) Save(ctx context.Context, ref state.Ref, snapshot taskcore.State, meta state.Meta) (saved state.Meta, retErr error) {
	if _, err := ref.Identifier(); err != nil {
		return state.Meta{}, err
	}
	payload, err := s.codec.Encode(snapshot)
	if err != nil {
		return state.Meta{}, fmt.Errorf("encode %s/%s: %w", ref.Kind, ref.ID, err)
	}
	extra, err := json.Marshal(meta.Extra)
	if err != nil {
		return state.Meta{}, fmt.Errorf("encode meta: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return state.Meta{}, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	current, found, err := currentETag(ctx, tx, ref)
	if err != nil {
		return state.Meta{}, err
	}
	if found {
		if err := state.CheckETag(meta.ETag, current); err != nil {
			return state.Meta{}, err
		}
	}
	saved = state.CloneMeta(meta)
	saved.ETag = uuid.NewString()
	saved.UpdatedAt = s.clock().UTC()
	if _, err := tx.ExecContext(ctx, `INSERT INTO records (kind, id, etag, updated_at, parent_id, extra, codec, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			etag = excluded.etag,
			updated_at = excluded.updated_at,
			parent_id = excluded.parent_id,
			extra = excluded.extra,
			codec = excluded.codec,
			payload = excluded.payload`,
		string(ref.Kind), ref.ID, saved.ETag, saved.UpdatedAt.Format(time.RFC3339Nano),
		saved.ParentID, string(extra), s.codec.Name(), payload); err != nil {
		return state.Meta{}, fmt.Errorf("save %s/%s: %w", ref.Kind, ref.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return state.Meta{}, err
	}
	s.logger.Debug().Str("kind", string(ref.Kind)).Str("id", ref.ID).Str("etag", saved.ETag).Msg("record saved")
	return saved, nil
}

func (s *Store) Delete(ctx context.Context, ref state.Ref, meta state.Meta) (retErr error) {
	if _, err := ref.Identifier(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	current, found, err := currentETag(ctx, tx, ref)
	if err != nil {
		return err
	}
	if !found {
		return state.ErrNotFound
	}
	if err := state.CheckETag(meta.ETag, current); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, string(ref.Kind), ref.ID); err != nil {
		return fmt.Errorf("delete %s/%s: %w", ref.Kind, ref.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug().Str("kind", string(ref.Kind)).Str("id", ref.ID).Msg("record deleted")
	return nil
}

func (s *Store) List(ctx context.Context, kind taskcore.Kind) ([]state.Entry[taskcore.State], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, etag, updated_at, parent_id, extra, codec, payload FROM records WHERE kind = ? ORDER BY id`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var records []record
	for rows.Next() {
		var id string
		rec, err := scanRecord(rows, &id)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec.id = id
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]state.Entry[taskcore.State], 0, len(records))
	for _, rec := range records {
		snapshot, err := s.decode(rec)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", kind, rec.id, err)
		}
		out = append(out, state.Entry[taskcore.State]{
			Ref:      state.Ref{Kind: kind, ID: rec.id},
			Snapshot: snapshot,
			Meta:     rec.meta,
		})
	}
	return out, nil
}

type record struct {
	id      string
	meta    state.Meta
	codec   string
	payload []byte
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, leading ...any) (record, error) {
	var (
		rec       record
		updatedAt string
		extra     string
	)
	dest := append(leading, &rec.meta.ETag, &updatedAt, &rec.meta.ParentID, &extra, &rec.codec, &rec.payload)
	if err := row.Scan(dest...); err != nil {
		return record{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return record{}, fmt.Errorf("parse updated_at: %w", err)
	}
	rec.meta.UpdatedAt = parsed
	if err := json.Unmarshal([]byte(extra), &rec.meta.Extra); err != nil {
		return record{}, fmt.Errorf("decode meta: %w", err)
	}
	return rec, nil
}

func (s *Store) decode(rec record) (taskcore.State, error) {
	if rec.codec != s.codec.Name() {
		return taskcore.State{}, fmt.Errorf("sqlitestore: payload codec %q, store reads %q", rec.codec, s.codec.Name())
	}
	return s.codec.Decode(rec.payload)
}

func currentETag(ctx context.Context, tx *sql.Tx, ref state.Ref) (string, bool, error) {
	var etag string
	err := tx.QueryRowContext(ctx, `SELECT etag FROM records WHERE kind = ? AND id = ?`, string(ref.Kind), ref.ID).Scan(&etag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return etag, true, nil
}
