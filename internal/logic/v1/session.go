package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smallproject/api/internal/core/domain"
	"github.com/smallproject/api/middleware"
)

// SessionManager implements get-or-create session semantics and token
// resolution over a SessionRepository. It holds no state of its own:
// every call re-queries the store, so external invalidation is
// observed immediately.
type SessionManager struct {
	sessions domain.SessionRepository
}

// NewSessionManager creates a new SessionManager with the given repository.
func NewSessionManager(sessions domain.SessionRepository) *SessionManager {
	return &SessionManager{sessions: sessions}
}

// GetOrCreate returns the session for (user.ID, ip), creating it on
// first use. Repeated calls for the same pair return the same row and
// never mint a new token. A concurrent creation race is absorbed by
// the store's conditional insert; the loser re-reads the winner's row,
// which carries the identical derived token anyway.
func (m *SessionManager) GetOrCreate(ctx context.Context, user domain.User, ip string) (*domain.SessionRow, error) {
	ctx, span := middleware.StartSpan(ctx, "session.get_or_create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("user.id", user.ID),
	))
	defer span.End()

	if user.ID == domain.UnpersistedID {
		span.SetAttributes(attribute.Bool("session.created", false))
		return nil, fmt.Errorf("create session for unpersisted user: %w", ErrInvalidUser)
	}

	session, err := m.sessions.GetByUserAndIP(ctx, user.ID, ip)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session for user %d: %w", user.ID, err)
	}
	if session != nil {
		span.SetAttributes(attribute.Bool("session.created", false))
		return session, nil
	}

	row := domain.SessionRow{
		UserID: user.ID,
		IP:     ip,
		Token:  DeriveToken(user.ID, ip),
	}

	inserted, err := m.sessions.Insert(ctx, row)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert session for user %d: %w", user.ID, err)
	}
	if !inserted {
		// Lost a race against a concurrent get-or-create; the winner's
		// row is the one to return.
		session, err = m.sessions.GetByUserAndIP(ctx, user.ID, ip)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("re-read session for user %d: %w", user.ID, err)
		}
		if session != nil {
			span.SetAttributes(attribute.Bool("session.created", false))
			return session, nil
		}
		// Row vanished between insert and re-read (external deletion);
		// the locally derived row is still correct.
	}

	span.SetAttributes(attribute.Bool("session.created", true))
	span.AddEvent("session.created")

	return &row, nil
}

// Resolve validates a session token for the given IP and returns the
// owning user ID. Structurally malformed tokens are rejected before
// the store is ever queried.
func (m *SessionManager) Resolve(ctx context.Context, ip, token string) (int, error) {
	ctx, span := middleware.StartSpan(ctx, "session.resolve", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if token == "" || len(token) != TokenLength {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return 0, fmt.Errorf("token length %d: %w", len(token), ErrMalformedToken)
	}

	userID, err := m.sessions.GetUserIDByIPAndToken(ctx, ip, token)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("query session by token: %w", err)
	}
	if userID <= 0 {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return 0, fmt.Errorf("no session for token: %w", ErrInvalidToken)
	}

	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Bool("session.valid", true),
	)

	return userID, nil
}
