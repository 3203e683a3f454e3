package handlers

import (
	"net/http"
	"strconv"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

func paginationFromQuery(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return common.ValidatePaginationParams(limit, offset)
}

// CreateItem handles POST /inventory/items
func (h *InventoryHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		LocationID    string  `json:"location_id"`
		SKU           string  `json:"sku"`
		Name          string  `json:"name"`
		Category      *string `json:"category"`
		Brand         *string `json:"brand"`
		Model         *string `json:"model"`
		Description   *string `json:"description"`
		CostPrice     float64 `json:"cost_price"`
		SellingPrice  float64 `json:"selling_price"`
		Quantity      int     `json:"quantity"`
		ReorderLevel  int     `json:"reorder_level"`
		TrackQuantity *bool   `json:"track_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	locationID, err := common.ValidateUUID(req.LocationID, "location_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item := &models.InventoryItem{
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		Brand:         req.Brand,
		Model:         req.Model,
		Description:   req.Description,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
		Quantity:      req.Quantity,
		ReorderLevel:  req.ReorderLevel,
		TrackQuantity: true,
	}
	if req.TrackQuantity != nil {
		item.TrackQuantity = *req.TrackQuantity
	}

	created, err := h.inventoryService.Create(ctx, companyID, locationID, item)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetItem handles GET /inventory/items/:id
func (h *InventoryHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item, err := h.inventoryService.GetByID(ctx, companyID, itemID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// ListItems handles GET /inventory/items
func (h *InventoryHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	items, err := h.inventoryService.List(ctx, companyID, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

// SearchItems handles GET /inventory/items/search
func (h *InventoryHandlers) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	filter := &models.InventorySearchFilter{
		Query:     c.QueryParam("q"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}
	if locParam := c.QueryParam("location_id"); locParam != "" {
		locationID, err := common.ValidateUUID(locParam, "location_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.LocationID = &locationID
	}
	if category := c.QueryParam("category"); category != "" {
		filter.Category = &category
	}
	if c.QueryParam("low_stock") == "true" {
		filter.LowStock = true
	}

	items, err := h.inventoryService.Search(ctx, companyID, filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

// LowStock handles GET /inventory/items/low-stock
func (h *InventoryHandlers) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	items, err := h.inventoryService.LowStock(ctx, companyID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// UpdateItem handles PATCH /inventory/items/:id
func (h *InventoryHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var patch models.InventoryItemPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, err := h.inventoryService.Update(ctx, companyID, itemID, &patch)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// AdjustQuantity handles POST /inventory/items/:id/adjust
func (h *InventoryHandlers) AdjustQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Delta == 0 {
		return common.SendValidationError(c, "delta", "delta must be non-zero")
	}

	item, err := h.inventoryService.AdjustQuantity(ctx, companyID, itemID, req.Delta)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /inventory/items/:id
func (h *InventoryHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.inventoryService.Delete(ctx, companyID, itemID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item deleted"})
}
