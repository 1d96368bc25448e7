package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"formation-hq/timeline/pkg/timeline"
)

// SQLite driver names accepted by SQLiteConfig.Driver.
const (
	// DriverCGo is github.com/mattn/go-sqlite3.
	DriverCGo = "sqlite3"
	// DriverPureGo is modernc.org/sqlite, usable with CGO_ENABLED=0.
	DriverPureGo = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite policy store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver, DriverCGo or DriverPureGo.
	// Default: DriverCGo
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/timeline.db",
		Driver:       DriverCGo,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// dsn builds a connection string that applies the pragmas on every pooled
// connection. The two drivers spell pragmas differently.
func (c *SQLiteConfig) dsn() (string, error) {
	busy := c.BusyTimeout.Milliseconds()
	switch c.Driver {
	case DriverCGo:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", c.Path, busy)
		if c.WALMode {
			dsn += "&_journal_mode=WAL"
		}
		return dsn, nil
	case DriverPureGo:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", c.Path, busy)
		if c.WALMode {
			dsn += "&_pragma=journal_mode(WAL)"
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q (want %q or %q)", c.Driver, DriverCGo, DriverPureGo)
	}
}

// SQLiteStore implements timeline.Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens the database, creates the schema and verifies its
// version.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverCGo
	}

	logger := slog.Default().With("component", "timeline.storage.sqlite")

	dsn, err := config.dsn()
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
		now:    time.Now,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite policy store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return timeline.NewStoreError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return timeline.NewStoreError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return timeline.NewStoreError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return timeline.NewStoreError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Create inserts policy and returns it with the id SQLite assigned.
func (s *SQLiteStore) Create(ctx context.Context, policy timeline.RetentionPolicy) (timeline.RetentionPolicy, error) {
	if err := policy.Validate(); err != nil {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("sqlite", "create", err)
	}

	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx, insertPolicy,
		policy.Name, timeline.FormatRule(policy.Rule), policy.RetentionSeconds, now, now)
	if err != nil {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("sqlite", "create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return timeline.RetentionPolicy{}, timeline.NewStoreError("sqlite", "create", err)
	}

	policy.ID = timeline.PolicyID(id)
	s.logger.Debug("policy created", "policy_id", policy.ID, "name", policy.Name)
	return policy, nil
}

// Edit overwrites the name, rule and retention of an existing policy.
func (s *SQLiteStore) Edit(ctx context.Context, policy timeline.RetentionPolicy) error {
	if err := policy.Validate(); err != nil {
		return timeline.NewStoreError("sqlite", "edit", err)
	}

	res, err := s.db.ExecContext(ctx, updatePolicy,
		policy.Name, timeline.FormatRule(policy.Rule), policy.RetentionSeconds, s.now().UTC(), int64(policy.ID))
	if err != nil {
		return timeline.NewStoreError("sqlite", "edit", err)
	}
	if err := requireRow(res); err != nil {
		return timeline.NewStoreError("sqlite", "edit", err)
	}
	return nil
}

// Delete removes a policy. It fails with timeline.ErrAttached while the
// policy is attached to any volume.
func (s *SQLiteStore) Delete(ctx context.Context, id timeline.PolicyID) error {
	res, err := s.db.ExecContext(ctx, deleteDetachedPolicy, int64(id), int64(id))
	if err != nil {
		return timeline.NewStoreError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return timeline.NewStoreError("sqlite", "delete", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing deleted: either the policy is unknown or still attached.
	if err := s.exists(ctx, id); err != nil {
		return timeline.NewStoreError("sqlite", "delete", err)
	}
	var attached int
	if err := s.db.QueryRowContext(ctx, countAttachments, int64(id)).Scan(&attached); err != nil {
		return timeline.NewStoreError("sqlite", "delete", err)
	}
	return timeline.NewStoreError("sqlite", "delete",
		fmt.Errorf("%w to %d volume(s), detach first", timeline.ErrAttached, attached))
}

// Attach associates a policy with a volume. Attaching twice is a no-op.
func (s *SQLiteStore) Attach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	if err := s.exists(ctx, id); err != nil {
		return timeline.NewStoreError("sqlite", "attach", err)
	}
	if _, err := s.db.ExecContext(ctx, insertAttachment, int64(id), string(volume), s.now().UTC()); err != nil {
		return timeline.NewStoreError("sqlite", "attach", err)
	}
	return nil
}

// Detach dissociates a policy from a volume. Detaching a policy that is
// not attached to the volume is a no-op.
func (s *SQLiteStore) Detach(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error {
	if err := s.exists(ctx, id); err != nil {
		return timeline.NewStoreError("sqlite", "detach", err)
	}
	if _, err := s.db.ExecContext(ctx, deleteAttachment, int64(id), string(volume)); err != nil {
		return timeline.NewStoreError("sqlite", "detach", err)
	}
	return nil
}

// ListAttached returns the policies attached to volume, ordered by id.
func (s *SQLiteStore) ListAttached(ctx context.Context, volume timeline.VolumeID) ([]timeline.RetentionPolicy, error) {
	rows, err := s.db.QueryContext(ctx, selectAttached, string(volume))
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "list_attached", err)
	}
	defer rows.Close()

	policies, err := scanPolicies(rows)
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "list_attached", err)
	}
	return policies, nil
}

// List returns every stored policy, ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]timeline.RetentionPolicy, error) {
	rows, err := s.db.QueryContext(ctx, selectPolicies)
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "list", err)
	}
	defer rows.Close()

	policies, err := scanPolicies(rows)
	if err != nil {
		return nil, timeline.NewStoreError("sqlite", "list", err)
	}
	return policies, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return timeline.NewStoreError("sqlite", "close", err)
	}
	s.logger.Info("SQLite policy store closed")
	return nil
}

func (s *SQLiteStore) exists(ctx context.Context, id timeline.PolicyID) error {
	var one int
	err := s.db.QueryRowContext(ctx, policyExists, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return timeline.ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return timeline.ErrNotFound
	}
	return nil
}

func scanPolicies(rows *sql.Rows) ([]timeline.RetentionPolicy, error) {
	policies := []timeline.RetentionPolicy{}
	for rows.Next() {
		var (
			id        int64
			name      string
			rule      string
			retention int64
		)
		if err := rows.Scan(&id, &name, &rule, &retention); err != nil {
			return nil, err
		}
		parsed, err := timeline.ParseRule(rule)
		if err != nil {
			return nil, fmt.Errorf("policy %d: %w", id, err)
		}
		policies = append(policies, timeline.RetentionPolicy{
			ID:               timeline.PolicyID(id),
			Name:             name,
			Rule:             parsed,
			RetentionSeconds: retention,
		})
	}
	return policies, rows.Err()
}
