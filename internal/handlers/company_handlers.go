package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type CompanyHandlers struct {
	companyService services.CompanyService
}

func NewCompanyHandlers(companyService services.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{companyService: companyService}
}

// Get handles GET /company: the caller's own tenant.
func (h *CompanyHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	company, err := h.companyService.GetByID(ctx, companyID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Update handles PUT /company
func (h *CompanyHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var company models.Company
	if err := c.Bind(&company); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	updated, err := h.companyService.Update(ctx, companyID, &company)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
