package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosts"
	_ "modernc.org/sqlite"
)

// Store implements hosts.Store using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

var _ hosts.Store = (*Store)(nil)

// New creates a new SQLite-based host store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open host database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize host database: %w", err)
	}

	return store, nil
}

// NewWithDB creates a store using an existing database connection.
func NewWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize host tables: %w", err)
	}
	return store, nil
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS hosts (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			protocol    TEXT NOT NULL,
			parent_id   TEXT NOT NULL,
			sort        INTEGER NOT NULL,
			create_date INTEGER NOT NULL,
			update_date INTEGER NOT NULL,
			deleted     INTEGER NOT NULL DEFAULT 0,
			address     TEXT,
			port        INTEGER,
			username    TEXT,
			serial_port TEXT,
			baud_rate   INTEGER,
			remark      TEXT,
			options     TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_hosts_parent ON hosts(parent_id);
		CREATE INDEX IF NOT EXISTS idx_hosts_deleted ON hosts(deleted);
	`

	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = `SELECT id, name, protocol, parent_id, sort, create_date, update_date, deleted,
	address, port, username, serial_port, baud_rate, remark, options FROM hosts`

// AddOrUpdate inserts or replaces a host by ID.
func (s *Store) AddOrUpdate(ctx context.Context, host core.Host) error {
	if host.ID == "" {
		return hosts.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return hosts.ErrStoreClosed
	}

	var options sql.NullString
	if len(host.Options) > 0 {
		data, err := json.Marshal(host.Options)
		if err != nil {
			return fmt.Errorf("failed to encode host options: %w", err)
		}
		options = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO hosts (
			id, name, protocol, parent_id, sort, create_date, update_date, deleted,
			address, port, username, serial_port, baud_rate, remark, options
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		host.ID, host.Name, string(host.Protocol), host.ParentID, host.Sort,
		host.CreateDate, host.UpdateDate, host.Deleted,
		host.Address, host.Port, host.Username, host.SerialPort, host.BaudRate, host.Remark, options,
	)
	if err != nil {
		return fmt.Errorf("failed to save host %s: %w", host.ID, err)
	}

	return nil
}

// Get retrieves a host by ID, including soft-deleted ones.
func (s *Store) Get(ctx context.Context, id string) (core.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.Host{}, hosts.ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	host, err := scanHost(row)
	if err == sql.ErrNoRows {
		return core.Host{}, hosts.ErrNotFound
	}
	if err != nil {
		return core.Host{}, fmt.Errorf("failed to get host: %w", err)
	}

	return host, nil
}

// List returns all live hosts ordered by sort key.
func (s *Store) List(ctx context.Context) ([]core.Host, error) {
	return s.query(ctx, selectColumns+" WHERE deleted = 0 ORDER BY sort, id")
}

// ListDeleted returns all soft-deleted hosts.
func (s *Store) ListDeleted(ctx context.Context) ([]core.Host, error) {
	return s.query(ctx, selectColumns+" WHERE deleted = 1 ORDER BY update_date, id")
}

func (s *Store) query(ctx context.Context, query string) ([]core.Host, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, hosts.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var result []core.Host
	for rows.Next() {
		host, err := scanHost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		result = append(result, host)
	}

	return result, rows.Err()
}

// Purge permanently removes soft-deleted hosts.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, hosts.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM hosts WHERE deleted = 1")
	if err != nil {
		return 0, fmt.Errorf("failed to purge hosts: %w", err)
	}

	return res.RowsAffected()
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHost(row rowScanner) (core.Host, error) {
	var host core.Host
	var protocol string
	var address, username, serialPort, remark, options sql.NullString
	var port, baudRate sql.NullInt64

	err := row.Scan(
		&host.ID, &host.Name, &protocol, &host.ParentID, &host.Sort,
		&host.CreateDate, &host.UpdateDate, &host.Deleted,
		&address, &port, &username, &serialPort, &baudRate, &remark, &options,
	)
	if err != nil {
		return host, err
	}

	host.Protocol = core.Protocol(protocol)
	host.Address = address.String
	host.Port = int(port.Int64)
	host.Username = username.String
	host.SerialPort = serialPort.String
	host.BaudRate = int(baudRate.Int64)
	host.Remark = remark.String

	if options.Valid && options.String != "" {
		if err := json.Unmarshal([]byte(options.String), &host.Options); err != nil {
			return host, fmt.Errorf("invalid options for host %s: %w", host.ID, err)
		}
	}

	return host, nil
}
