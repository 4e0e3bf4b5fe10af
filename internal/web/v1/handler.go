package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smallproject/api/internal/core/domain"
	"github.com/smallproject/api/internal/logger"
	logicv1 "github.com/smallproject/api/internal/logic/v1"
	"github.com/smallproject/api/middleware"
)

// Client-facing messages. Validation reports the first failing check
// only; later checks are never evaluated.
const (
	errInvalidPayload     = "payload is not a valid JSON object"
	errDeserializeFail    = "unable to construct user from payload"
	errMissingEmail       = "payload is missing email"
	errMissingPassword    = "payload is missing password"
	errEmptyEmail         = "email may not be empty"
	errEmptyPassword      = "password may not be empty"
	errInvalidEmail       = "invalid email address"
	errInvalidPassword    = "invalid password"
	errInvalidFirstName   = "invalid first name"
	errInvalidLastName    = "invalid last name"
	errInvalidCredentials = "invalid email/password"
	errEmailExists        = "email is already in use"
	errFailedSession      = "unable to create session"
	errTokenMissing       = "token not present"
	errInvalidToken       = "invalid token received"
	errInternal           = "internal server error"
)

// Email syntax checking mirrors the reference validator. validator.Var
// is goroutine-safe, one immutable instance serves all requests.
var validate = validator.New()

// Handler groups HTTP handlers for the API.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth *logicv1.AuthService
}

// NewHandler creates a new Handler with the given AuthService.
func NewHandler(auth *logicv1.AuthService) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes registers all API routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/register", h.Register)
	rg.POST("/dashboard", h.Dashboard)
}

// Login handles POST /login: shape checks in order, credential check,
// then get-or-create of the caller's session.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.login", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPayload})
		return
	}
	if req.Email == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingEmail})
		return
	}
	if req.Password == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingPassword})
		return
	}
	if *req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyEmail})
		return
	}
	if *req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyPassword})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	session, err := h.auth.Login(ctx, *req.Email, *req.Password, c.ClientIP())
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Login failed")

		switch {
		case errors.Is(err, logicv1.ErrUserNotFound), errors.Is(err, logicv1.ErrInvalidCredentials):
			// Don't reveal whether the email exists.
			c.JSON(http.StatusForbidden, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, logicv1.ErrInvalidUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": errFailedSession})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		}
		return
	}

	log.Info().Int("user_id", session.UserID).Msg("Login successful")
	c.JSON(http.StatusOK, session)
}

// Register handles POST /register. A payload holding exactly one key,
// email, is an availability probe; anything else is a full
// registration validated in fixed field order.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.register", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil || raw == nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": errDeserializeFail})
		return
	}

	if _, probe := raw["email"]; probe && len(raw) == 1 {
		h.checkEmail(c, ctx, raw["email"])
		return
	}

	var req domain.RegisterRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errDeserializeFail})
		return
	}
	if req.Email == "" || validate.Var(req.Email, "email") != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPassword})
		return
	}
	if req.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidFirstName})
		return
	}
	if req.LastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLastName})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	session, err := h.auth.Register(ctx, req, c.ClientIP())
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrEmailExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmailExists})
		case errors.Is(err, logicv1.ErrInvalidUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": errFailedSession})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		}
		return
	}

	log.Info().Int("user_id", session.UserID).Msg("Registration successful")
	c.JSON(http.StatusOK, session)
}

// checkEmail serves registration probe mode: syntax-check the email
// and report availability, with no session side effects.
func (h *Handler) checkEmail(c *gin.Context, ctx context.Context, rawEmail json.RawMessage) {
	log := logger.FromContext(ctx)

	var email string
	if err := json.Unmarshal(rawEmail, &email); err != nil || email == "" || validate.Var(email, "email") != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail})
		return
	}

	if err := h.auth.CheckEmail(ctx, email); err != nil {
		if errors.Is(err, logicv1.ErrEmailExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmailExists})
			return
		}
		log.Error().Err(err).Msg("Email probe failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": email})
}

// Dashboard handles POST /dashboard: structural token gate, session
// resolution, then the user's dashboard data.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.dashboard", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.DashboardRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPayload})
		return
	}
	if req.Token == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": errTokenMissing})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	data, err := h.auth.Dashboard(ctx, c.ClientIP(), *req.Token)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Dashboard access denied")

		switch {
		case errors.Is(err, logicv1.ErrMalformedToken), errors.Is(err, logicv1.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidToken})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal})
		}
		return
	}

	c.JSON(http.StatusOK, data)
}
