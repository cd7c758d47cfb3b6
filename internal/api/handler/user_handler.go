package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/ports"
)

// UserHandler exposes account management. Access rules live in the service;
// routes add coarse role checks in front of it.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List returns every account.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=usersData}
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	users, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("", usersData{Users: users, Count: len(users)}))
}

// Get returns one account. Callers may read their own; moderators and above
// may read any.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  envelope{data=userData}
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("", userData{User: user}))
}

// UpdateProfile edits names and email of the caller, or of :id for admins.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                false  "User ID (omit for own profile)"
// @Param        body  body      updateProfileRequest  true   "Fields to change"
// @Success      200   {object}  envelope{data=userData}
// @Failure      403   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /users/profile [put]
// @Router       /users/{id}/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), actor, c.Param("id"), ports.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Profile updated successfully", userData{User: user}))
}

// ChangePassword changes the caller's password, or resets :id for admins.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 false  "User ID (omit for own password)"
// @Param        body  body      changePasswordRequest  true   "Current and new password"
// @Success      200   {object}  envelope
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /users/change-password [put]
// @Router       /users/{id}/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err = h.service.ChangePassword(c.Request().Context(), actor, c.Param("id"), ports.ChangePasswordInput{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("Password changed successfully", nil))
}

// UpdateRole assigns a role to :id.
//
// @Summary      Update user role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  envelope{data=userData}
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateRole(c.Request().Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("User role updated successfully", userData{User: user}))
}

// UpdateStatus activates or deactivates :id. Outstanding tokens of a
// deactivated account stop working on their next request.
//
// @Summary      Activate or deactivate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "User ID"
// @Param        body  body      updateStatusRequest  true  "Desired status"
// @Success      200   {object}  envelope{data=userData}
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /users/{id}/status [put]
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetActive(c.Request().Context(), actor, c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}
	msg := "User deactivated successfully"
	if user.Active {
		msg = "User activated successfully"
	}
	return c.JSON(http.StatusOK, ok(msg, userData{User: user}))
}

// Delete removes :id. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  envelope
// @Failure      400  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("User deleted successfully", nil))
}
