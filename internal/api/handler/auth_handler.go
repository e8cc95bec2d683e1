package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fixapp/fixapp-api/internal/api/metrics"
	"github.com/fixapp/fixapp-api/internal/api/middleware"
	"github.com/fixapp/fixapp-api/internal/core/domain"
	"github.com/fixapp/fixapp-api/internal/core/ports"
	"github.com/fixapp/fixapp-api/pkg/token"
)

// tokenRetries bounds the defensive re-mint loop on token collisions.
// With 256-bit tokens a collision effectively never happens.
const tokenRetries = 3

type AuthHandler struct {
	identity   ports.IdentityService
	sessions   ports.SessionService
	tokens     *token.Generator
	sessionTTL time.Duration
}

func NewAuthHandler(identity ports.IdentityService, sessions ports.SessionService, tokens *token.Generator, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{identity: identity, sessions: sessions, tokens: tokens, sessionTTL: sessionTTL}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *domain.User `json:"user,omitempty"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.identity.Register(c.Request().Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return err
	}

	metrics.UsersRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.identity.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}
		return err
	}

	session, err := h.mintSession(c, user.ID)
	if err != nil {
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsIssuedTotal.Inc()
	expiresAt := session.ExpiresAt
	return c.JSON(http.StatusOK, authResponse{Token: session.Token, ExpiresAt: &expiresAt, User: user})
}

// mintSession generates a token and stores the session, re-minting on the
// (theoretical) token collision.
func (h *AuthHandler) mintSession(c echo.Context, userID int64) (*domain.Session, error) {
	var lastErr error
	for i := 0; i < tokenRetries; i++ {
		tok, err := h.tokens.New()
		if err != nil {
			return nil, err
		}
		session, err := h.sessions.Create(c.Request().Context(), userID, tok, h.sessionTTL)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionExists) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Logout revokes the presented session token. Revoking an expired or
// already-revoked token succeeds: logout is idempotent.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      401   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	tok, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Revoke(c.Request().Context(), tok); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the account owning the presented session token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}
