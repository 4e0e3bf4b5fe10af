package domain

import "context"

// ContactRow represents a single address-book entry owned by a user.
type ContactRow struct {
	ID    int
	Name  string
	Email string
	Phone string
}

// ContactRepository defines the data-access contract for contact
// operations consumed by the dashboard.
type ContactRepository interface {
	// ListByUserID returns all contacts owned by the given user,
	// newest first. An empty slice means the user has no contacts.
	ListByUserID(ctx context.Context, userID int) ([]ContactRow, error)
}
