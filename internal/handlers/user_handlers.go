package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	userService services.UserService
	rbacService services.RBACService
}

func NewUserHandlers(userService services.UserService, rbacService services.RBACService) *UserHandlers {
	return &UserHandlers{userService: userService, rbacService: rbacService}
}

// Create handles POST /users: an admin adds a staff member.
func (h *UserHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		FirstName  string  `json:"first_name"`
		LastName   string  `json:"last_name"`
		Role       string  `json:"role"`
		LocationID *string `json:"location_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Role == "" {
		req.Role = "technician"
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.LocationID != nil {
		locationID, err := common.ValidateUUID(*req.LocationID, "location_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		user.LocationID = &locationID
	}

	created, err := h.userService.Register(ctx, companyID, user, req.Password, req.Role)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /users/:id
func (h *UserHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	userID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	user, err := h.userService.GetByID(ctx, companyID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// List handles GET /users
func (h *UserHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	users, err := h.userService.List(ctx, companyID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// AssignRole handles POST /users/:id/roles
func (h *UserHandlers) AssignRole(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	userID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Role == "" {
		return common.SendValidationError(c, "role", "role is required")
	}

	if err := h.rbacService.AssignRole(ctx, companyID, userID, req.Role); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Role assigned"})
}

// Permissions handles GET /users/:id/permissions
func (h *UserHandlers) Permissions(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	userID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	permissions, err := h.rbacService.GetUserPermissions(ctx, companyID, userID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"permissions": permissions})
}
