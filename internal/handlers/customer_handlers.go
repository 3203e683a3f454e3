package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// Create handles POST /customers
func (h *CustomerHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var customer models.Customer
	if err := c.Bind(&customer); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	created, err := h.customerService.Create(ctx, companyID, &customer)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /customers/:id
func (h *CustomerHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerService.GetByID(ctx, companyID, customerID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// List handles GET /customers; an optional q parameter switches to search.
func (h *CustomerHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)

	var customers []*models.Customer
	var err error
	if query := c.QueryParam("q"); query != "" {
		customers, err = h.customerService.Search(ctx, companyID, query, limit, offset)
	} else {
		customers, err = h.customerService.List(ctx, companyID, limit, offset)
	}
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// Update handles PUT /customers/:id
func (h *CustomerHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var customer models.Customer
	if err := c.Bind(&customer); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	updated, err := h.customerService.Update(ctx, companyID, customerID, &customer)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.customerService.Delete(ctx, companyID, customerID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Customer deleted"})
}
