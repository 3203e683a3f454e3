package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type LocationHandlers struct {
	locationService services.LocationService
}

func NewLocationHandlers(locationService services.LocationService) *LocationHandlers {
	return &LocationHandlers{locationService: locationService}
}

// Create handles POST /locations
func (h *LocationHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var location models.Location
	if err := c.Bind(&location); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	created, err := h.locationService.Create(ctx, companyID, &location)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /locations/:id
func (h *LocationHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	location, err := h.locationService.GetByID(ctx, companyID, locationID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

// List handles GET /locations
func (h *LocationHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	locations, err := h.locationService.List(ctx, companyID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"locations": locations,
		"limit":     limit,
		"offset":    offset,
	})
}

// Update handles PUT /locations/:id
func (h *LocationHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var location models.Location
	if err := c.Bind(&location); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	updated, err := h.locationService.Update(ctx, companyID, locationID, &location)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /locations/:id
func (h *LocationHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	locationID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.locationService.Delete(ctx, companyID, locationID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Location deleted"})
}
