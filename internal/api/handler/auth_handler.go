package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/credential"
	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	transport   *credential.Transport
}

func NewAuthHandler(authService ports.AuthService, transport *credential.Transport) *AuthHandler {
	return &AuthHandler{authService: authService, transport: transport}
}

// Register creates a new user account. An authenticated admin may choose the
// new account's role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  envelope{data=authData}
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Failure      503   {object}  map[string]any
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Actor:     middleware.SessionFrom(c),
	})
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("register").Inc()
	h.transport.Attach(c.Response(), res.Token, res.ExpiresAt)
	return c.JSON(http.StatusCreated, ok("User registered successfully", authData{
		User:      res.User,
		Token:     res.Token,
		ExpiresIn: formatTTL(res.TTL),
		ExpiresAt: res.ExpiresAt,
	}))
}

// Login authenticates by username or email and sets the credential cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=authData}
// @Failure      401   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Failure      503   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidCredentials) {
			result = "invalid_credentials"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}

	kind := "login"
	if req.RememberMe {
		kind = "remember"
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(kind).Inc()

	h.transport.Attach(c.Response(), res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, ok("Login successful", authData{
		User:      res.User,
		Token:     res.Token,
		ExpiresIn: formatTTL(res.TTL),
		ExpiresAt: res.ExpiresAt,
	}))
}

// Logout clears the credential cookie. Bearer tokens stay valid until they
// expire; clients drop them locally.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      401  {object}  map[string]any
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.transport.Clear(c.Response())
	return c.JSON(http.StatusOK, ok("Logout successful", nil))
}

// Profile returns the caller's live account record.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=userData}
// @Failure      401  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("", userData{User: user}))
}

// Refresh issues a new default-lifetime token and replaces the cookie.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=tokenData}
// @Failure      401  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	res, err := h.authService.Refresh(c.Request().Context(), session)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	h.transport.Attach(c.Response(), res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, ok("Token refreshed successfully", tokenData{Token: res.Token, ExpiresAt: res.ExpiresAt}))
}

// Verify reports the session behind the presented token.
//
// @Summary      Verify token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=verifyData}
// @Failure      401  {object}  map[string]any
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Token is valid", verifyData{User: session, TokenExpiry: session.ExpiresAt}))
}

// formatTTL renders whole days as "7d" and anything else as a duration.
func formatTTL(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	const day = 24 * time.Hour
	if d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}
