// Package curation implements the slot and ranking engine: the two fixed
// homepage positions (main, second), the bounded ordered curation lists
// (featured, trending, editors_pick), the derived read-only feeds, and the
// gateway that validates every mutation and keeps the invariants intact.
package curation

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error taxonomy surfaced by every engine operation. Callers branch on these
// with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrValidation marks structurally invalid input: empty id, unknown
	// slot or list name, rank out of range. Never retried.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a referenced article that does not exist or is
	// not published. The caller should refresh its candidate list.
	ErrNotFound = errors.New("article not found or not published")

	// ErrConflict marks a concurrent write that invalidated the
	// operation's preconditions. The engine never retries; the caller
	// must re-fetch current state and decide.
	ErrConflict = errors.New("concurrent modification")

	// ErrUnavailable marks an unreachable backing store. Transient; a
	// caller may retry manually.
	ErrUnavailable = errors.New("content store unavailable")
)

// Postgres SQLSTATEs that indicate a lost race rather than a broken query.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// classify maps a low-level database failure onto the public taxonomy,
// prefixing it with op. Errors that are already taxonomy members pass
// through untouched so validation failures keep their original message.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			// A unique violation here means the deferred rank
			// constraint caught two writers racing on one list.
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
