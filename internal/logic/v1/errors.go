// Package v1 provides authentication and session business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent common authentication,
// session, and registration failures. These errors should be wrapped with
// context using fmt.Errorf("%w") when returned from business logic methods.
//
// Example Usage:
//
//	if user == nil {
//	    return nil, fmt.Errorf("authenticate %q: %w", email, ErrUserNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusForbidden, gin.H{"error": "invalid email/password"})
//	case errors.Is(err, logicv1.ErrUserNotFound):
//	    c.JSON(http.StatusForbidden, gin.H{"error": "invalid email/password"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for authentication and session operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 403 Forbidden
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist in the system.
	// HTTP Status: 403 Forbidden (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists indicates the email is already registered.
	// HTTP Status: 400 Bad Request
	ErrEmailExists = errors.New("email already in use")

	// ErrInvalidUser indicates an unpersisted identity was passed to
	// session creation.
	// HTTP Status: 400 Bad Request
	ErrInvalidUser = errors.New("user has no persisted identity")

	// ErrMalformedToken indicates the token fails the structural check
	// (empty or not exactly 64 characters). The store is never queried.
	// HTTP Status: 400 Bad Request
	ErrMalformedToken = errors.New("malformed session token")

	// ErrInvalidToken indicates a well-formed token that matches no
	// session for the requesting IP.
	// HTTP Status: 400 Bad Request
	ErrInvalidToken = errors.New("invalid session token")
)
