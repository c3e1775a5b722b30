package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixelmuse/imagevault/internal/api/metrics"
	"github.com/pixelmuse/imagevault/internal/core/ports"
)

// UserHandler exposes the user ledger over HTTP. Create/update/delete mirror
// the identity provider's account lifecycle events.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /v1/users.
//
// @Summary      Record a user synced from the identity provider
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User profile"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		ExternalID:    req.ExternalID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		CreditBalance: req.CreditBalance,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// Get handles GET /v1/users/:external_id.
//
// @Summary      Get a user by external id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        external_id  path      string  true  "Identity provider id"
// @Success      200          {object}  domain.User
// @Failure      404          {object}  errorResponse
// @Router       /v1/users/{external_id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUserByExternalID(c.Request().Context(), c.Param("external_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PATCH /v1/users/:external_id - partial profile edit.
//
// @Summary      Update a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        external_id  path      string             true  "Identity provider id"
// @Param        body         body      updateUserRequest  true  "Fields to change"
// @Success      200          {object}  domain.User
// @Failure      404          {object}  errorResponse
// @Router       /v1/users/{external_id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("external_id"), ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /v1/users/:external_id. The user's images survive on
// purpose; only the ledger record goes away.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        external_id  path      string  true  "Identity provider id"
// @Success      200          {object}  domain.User
// @Failure      404          {object}  errorResponse
// @Router       /v1/users/{external_id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := h.service.DeleteUser(c.Request().Context(), c.Param("external_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AdjustCredits handles POST /v1/users/:id/credits - atomic balance change
// keyed by the internal user id.
//
// @Summary      Adjust a user's credit balance
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Internal user id"
// @Param        body  body      adjustCreditsRequest  true  "Signed delta"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/credits [post]
func (h *UserHandler) AdjustCredits(c echo.Context) error {
	var req adjustCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.AdjustCredits(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return err
	}

	direction := "credit"
	if req.Delta < 0 {
		direction = "debit"
	}
	metrics.CreditAdjustmentsTotal.WithLabelValues(direction).Inc()

	return c.JSON(http.StatusOK, user)
}
