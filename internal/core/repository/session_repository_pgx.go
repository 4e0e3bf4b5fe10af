package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallproject/api/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// GetByUserAndIP returns the session keyed by (userID, ip).
// Returns (nil, nil) when no session exists for the pair.
func (r *PgxSessionRepository) GetByUserAndIP(ctx context.Context, userID int, ip string) (*domain.SessionRow, error) {
	query := `SELECT user_id, ip, token FROM sessions WHERE user_id = $1 AND ip = $2`

	var row domain.SessionRow
	err := r.pool.QueryRow(ctx, query, userID, ip).Scan(&row.UserID, &row.IP, &row.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// GetUserIDByIPAndToken returns the user ID owning the session that
// matches (ip, token). Returns 0 when no session matches.
func (r *PgxSessionRepository) GetUserIDByIPAndToken(ctx context.Context, ip, token string) (int, error) {
	query := `SELECT user_id FROM sessions WHERE ip = $1 AND token = $2`

	var userID int
	err := r.pool.QueryRow(ctx, query, ip, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return userID, nil
}

// Insert conditionally inserts the session. The UNIQUE (user_id, ip)
// constraint absorbs concurrent get-or-create races: a conflicting
// insert affects zero rows and is reported as inserted == false
// rather than as an error.
func (r *PgxSessionRepository) Insert(ctx context.Context, session domain.SessionRow) (bool, error) {
	query := `INSERT INTO sessions (user_id, ip, token) VALUES ($1, $2, $3) ON CONFLICT (user_id, ip) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, session.UserID, session.IP, session.Token)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
