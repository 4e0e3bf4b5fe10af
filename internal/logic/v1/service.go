package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/smallproject/api/internal/core/domain"
	"github.com/smallproject/api/middleware"
)

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users    domain.UserRepository
	contacts domain.ContactRepository
	sessions *SessionManager
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, contacts domain.ContactRepository, sessions *SessionManager) *AuthService {
	return &AuthService{
		users:    users,
		contacts: contacts,
		sessions: sessions,
	}
}

// Login verifies the credentials and returns the session for the
// requesting IP, creating it on first login from that address.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.SessionResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", email, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate %q: %w", email, ErrInvalidCredentials)
	}

	// Update last_login timestamp (best-effort, don't fail login)
	if updateErr := s.users.UpdateLastLogin(ctx, row.ID); updateErr != nil {
		span.RecordError(fmt.Errorf("update last_login: %w", updateErr))
	}

	session, err := s.sessions.GetOrCreate(ctx, userFromRow(row), ip)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return sessionResponse(session), nil
}

// Register creates a new account and logs it in. When the email is
// already registered, a matching password degrades to a plain login;
// a mismatch is reported as the email being taken.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest, ip string) (*domain.SessionResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}

	if existing != nil && existing.ID != domain.UnpersistedID {
		// Account already exists: only the right password lets the
		// registrant straight back in.
		if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(req.Password)); err != nil {
			span.SetAttributes(attribute.Bool("registration.success", false))
			return nil, fmt.Errorf("register %q: %w", req.Email, ErrEmailExists)
		}

		session, err := s.sessions.GetOrCreate(ctx, userFromRow(existing), ip)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		span.SetAttributes(
			attribute.Int("user.id", existing.ID),
			attribute.Bool("registration.success", true),
		)
		span.AddEvent("user.authenticated")

		return sessionResponse(session), nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, req.Email, string(passwordHash), req.FirstName, req.LastName)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user := domain.User{
		ID:        userID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	session, err := s.sessions.GetOrCreate(ctx, user, ip)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return sessionResponse(session), nil
}

// CheckEmail reports whether the email is free to register.
// Returns ErrEmailExists when it is already taken.
func (s *AuthService) CheckEmail(ctx context.Context, email string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.check_email", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", email),
	))
	defer span.End()

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("lookup email %q: %w", email, err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("email.available", false))
		return fmt.Errorf("check email %q: %w", email, ErrEmailExists)
	}

	span.SetAttributes(attribute.Bool("email.available", true))
	return nil
}

// Dashboard resolves the session token for the requesting IP and
// returns that user's dashboard data.
func (s *AuthService) Dashboard(ctx context.Context, ip, token string) (*domain.DashboardResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.dashboard", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	userID, err := s.sessions.Resolve(ctx, ip, token)
	if err != nil {
		return nil, err
	}

	rows, err := s.contacts.ListByUserID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list contacts for user %d: %w", userID, err)
	}

	contacts := make([]domain.ContactResponse, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, domain.ContactResponse{
			ID:    row.ID,
			Name:  row.Name,
			Email: row.Email,
			Phone: row.Phone,
		})
	}

	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("contacts.count", len(contacts)),
	)

	return &domain.DashboardResponse{
		Status:   fmt.Sprintf("hello user #%d", userID),
		Contacts: contacts,
	}, nil
}

func userFromRow(row *domain.UserRow) domain.User {
	return domain.User{
		ID:        row.ID,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
	}
}

func sessionResponse(session *domain.SessionRow) *domain.SessionResponse {
	return &domain.SessionResponse{
		UserID: session.UserID,
		IP:     session.IP,
		Token:  session.Token,
	}
}
