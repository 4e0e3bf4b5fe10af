package domain

import "context"

// SessionRow is a persisted session: the (UserID, IP) pair is the
// natural key and Token is a pure function of it, so a row is written
// once and never updated.
type SessionRow struct {
	UserID int
	IP     string
	Token  string
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository (Core layer).
type SessionRepository interface {
	// GetByUserAndIP returns the session keyed by (userID, ip).
	// Returns (nil, nil) when no session exists for the pair.
	GetByUserAndIP(ctx context.Context, userID int, ip string) (*SessionRow, error)

	// GetUserIDByIPAndToken returns the user ID owning the session that
	// matches (ip, token). Returns 0 when no session matches.
	GetUserIDByIPAndToken(ctx context.Context, ip, token string) (int, error)

	// Insert conditionally inserts the session. It reports false with a
	// nil error when a row for the same (UserID, IP) pair already
	// exists, so a lost get-or-create race never surfaces as a failure.
	Insert(ctx context.Context, session SessionRow) (inserted bool, err error)
}
