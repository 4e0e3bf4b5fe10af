package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallproject/api/internal/core/domain"
)

// PgxContactRepository implements domain.ContactRepository using pgxpool.
type PgxContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new PgxContactRepository.
func NewContactRepository(pool *pgxpool.Pool) *PgxContactRepository {
	return &PgxContactRepository{pool: pool}
}

// ListByUserID returns all contacts owned by the given user, newest first.
func (r *PgxContactRepository) ListByUserID(ctx context.Context, userID int) ([]domain.ContactRow, error) {
	query := `SELECT id, name, email, phone FROM contacts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.ContactRow, 0)
	for rows.Next() {
		var row domain.ContactRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Email, &row.Phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contacts, nil
}
