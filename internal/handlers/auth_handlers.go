package handlers

import (
	"errors"
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	userService    services.UserService
	companyService services.CompanyService
	rbacService    services.RBACService
}

func NewAuthHandlers(userService services.UserService, companyService services.CompanyService, rbacService services.RBACService) *AuthHandlers {
	return &AuthHandlers{
		userService:    userService,
		companyService: companyService,
		rbacService:    rbacService,
	}
}

// Signup handles POST /auth/signup: creates a company and its first admin.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		CompanyName string `json:"company_name"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.CompanyName == "" {
		return common.SendValidationError(c, "company_name", "company name is required")
	}

	company, err := h.companyService.Create(ctx, &models.Company{Name: req.CompanyName})
	if err != nil {
		return common.RespondError(c, err)
	}

	user, err := h.userService.Register(ctx, company.ID, &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password, "admin")
	if err != nil {
		return common.RespondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"company": company,
		"user":    user,
	})
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tokens, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh token is required")
	}

	tokens, err := h.userService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.userService.Logout(ctx, req.RefreshToken); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
