// Package easyorm derives a table schema from a struct's fields, stores
// struct values as rows and rebuilds them from query results.
//
// Every operation takes a dedicated connection from the client's *sql.DB,
// runs its statements and releases the connection before returning. A
// Client carries no locking; share one between goroutines only with
// external synchronisation.
package easyorm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/TechXTT/easyorm/internal/core"
	"github.com/TechXTT/easyorm/pkg/dialect"
	"github.com/TechXTT/easyorm/pkg/runtime"
)

// DefaultReapThreshold is how long a session may run before the reaper
// that follows every save and retrieve terminates it.
const DefaultReapThreshold = 10 * time.Second

// Options tune a Client.
type Options struct {
	// Database qualifies table names. Empty means it is resolved from the
	// server on first use.
	Database string
	// ReapThreshold overrides DefaultReapThreshold; zero keeps the default.
	// Negative disables the automatic reaper.
	ReapThreshold time.Duration
	Logger        *slog.Logger
}

// Client binds a database handle to a dialect.
type Client struct {
	DB      *sql.DB
	Dialect dialect.Dialect

	database      string
	reapThreshold time.Duration
	logger        *slog.Logger
}

// NewClient wraps an open handle. A nil dialect means MySQL.
func NewClient(db *sql.DB, d dialect.Dialect, opts Options) *Client {
	if d == nil {
		d = dialect.MySQL{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ReapThreshold == 0 {
		opts.ReapThreshold = DefaultReapThreshold
	}
	return &Client{
		DB:            db,
		Dialect:       d,
		database:      opts.Database,
		reapThreshold: opts.ReapThreshold,
		logger:        opts.Logger,
	}
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts Options) (*Client, error) {
	d, err := dialect.For(driver)
	if err != nil {
		return nil, err
	}
	db, err := runtime.Connect(d.Name(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewClient(db, d, opts), nil
}

// Close closes the underlying handle.
func (c *Client) Close() error {
	if c == nil || c.DB == nil {
		return ErrConnectionUndefined
	}
	return c.DB.Close()
}

// Database returns the namespace tables are qualified with, or "" if it has
// not been resolved yet.
func (c *Client) Database() string {
	return c.database
}

func (c *Client) checkConn() error {
	if c == nil || c.DB == nil || c.Dialect == nil {
		return ErrConnectionUndefined
	}
	return nil
}

func (c *Client) check(table string) error {
	if err := c.checkConn(); err != nil {
		return err
	}
	if table == "" {
		return &ArgumentError{Name: "table", Reason: "table name is empty"}
	}
	if !core.ValidIdent(table) {
		return &ArgumentError{Name: "table", Reason: fmt.Sprintf("%q is not a valid identifier", table)}
	}
	return nil
}

// namespace resolves the qualifier for table names on conn and caches it.
func (c *Client) namespace(ctx context.Context, conn *sql.Conn) (string, error) {
	if c.database != "" {
		return c.database, nil
	}
	query := c.Dialect.NamespaceQuery()
	if query == "" {
		c.database = c.Dialect.DefaultNamespace()
		return c.database, nil
	}
	var ns sql.NullString
	if err := conn.QueryRowContext(ctx, query).Scan(&ns); err != nil {
		return "", err
	}
	if !ns.Valid || ns.String == "" {
		return c.Dialect.DefaultNamespace(), nil
	}
	c.database = ns.String
	return c.database, nil
}

// fail logs a driver failure and converts it into an outcome.
func (c *Client) fail(op, table, stmt string, err error) (Outcome, error) {
	outcome := Fail
	switch c.Dialect.Classify(err) {
	case dialect.ErrDuplicateTable:
		outcome = TableAlreadyExists
	case dialect.ErrMissingTable:
		outcome = TableNotFound
	}
	c.logger.Error("easyorm: "+op+" failed",
		slog.String("table", table),
		slog.String("outcome", outcome.String()),
		slog.Any("err", err))
	return outcome, &DriverError{Op: op, Table: table, Statement: stmt, Outcome: outcome, Err: err}
}
