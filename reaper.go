package easyorm

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/TechXTT/easyorm/internal/core"
)

// KillSessions terminates server sessions that have been running for longer
// than threshold.
func (c *Client) KillSessions(ctx context.Context, threshold time.Duration) (Outcome, error) {
	if err := c.checkConn(); err != nil {
		return Fail, err
	}
	if threshold < 0 {
		return Fail, &ArgumentError{Name: "threshold", Reason: "must not be negative"}
	}
	var killed []int64
	err := core.WithConn(ctx, c.DB, func(conn *sql.Conn) error {
		var err error
		killed, err = c.Dialect.Reap(ctx, conn, threshold)
		return err
	})
	if len(killed) > 0 {
		c.logger.Info("easyorm: killed sessions",
			slog.Duration("threshold", threshold),
			slog.Any("ids", killed))
	}
	if err != nil {
		c.logger.Warn("easyorm: kill sessions failed", slog.Any("err", err))
		return Fail, &DriverError{Op: "kill sessions", Outcome: Fail, Err: err}
	}
	return Success, nil
}

// reap is the fire-and-forget cleanup that follows saves and retrieves.
func (c *Client) reap(ctx context.Context) {
	if c.reapThreshold < 0 {
		return
	}
	// KillSessions already logs its own failures.
	_, _ = c.KillSessions(ctx, c.reapThreshold)
}
