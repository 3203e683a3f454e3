package handlers

import (
	"net/http"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type PurchaseOrderHandlers struct {
	poService services.PurchaseOrderService
}

func NewPurchaseOrderHandlers(poService services.PurchaseOrderService) *PurchaseOrderHandlers {
	return &PurchaseOrderHandlers{poService: poService}
}

type purchaseOrderItemRequest struct {
	InventoryItemID string  `json:"inventory_item_id"`
	QuantityOrdered int     `json:"quantity_ordered"`
	UnitCost        float64 `json:"unit_cost"`
}

func buildOrderItems(reqItems []purchaseOrderItemRequest) ([]*models.PurchaseOrderItem, error) {
	items := make([]*models.PurchaseOrderItem, 0, len(reqItems))
	for _, reqItem := range reqItems {
		itemID, err := common.ValidateUUID(reqItem.InventoryItemID, "inventory_item_id")
		if err != nil {
			return nil, err
		}
		items = append(items, &models.PurchaseOrderItem{
			InventoryItemID: itemID,
			QuantityOrdered: reqItem.QuantityOrdered,
			UnitCost:        reqItem.UnitCost,
		})
	}
	return items, nil
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Supplier             string                     `json:"supplier"`
		ExpectedDeliveryDate *time.Time                 `json:"expected_delivery_date"`
		Notes                *string                    `json:"notes"`
		Items                []purchaseOrderItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	items, err := buildOrderItems(req.Items)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	po := &models.PurchaseOrder{
		Supplier:             req.Supplier,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		Items:                items,
	}
	created, err := h.poService.Create(ctx, companyID, po)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	po, err := h.poService.GetByID(ctx, companyID, poID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	filter := &models.PurchaseOrderFilter{Limit: limit, Offset: offset}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if supplier := c.QueryParam("supplier"); supplier != "" {
		filter.Supplier = &supplier
	}

	orders, err := h.poService.List(ctx, companyID, filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"purchase_orders": orders,
		"limit":           limit,
		"offset":          offset,
	})
}

// Update handles PUT /purchase-orders/:id (draft only)
func (h *PurchaseOrderHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Supplier             *string                    `json:"supplier"`
		ExpectedDeliveryDate *time.Time                 `json:"expected_delivery_date"`
		Notes                *string                    `json:"notes"`
		Items                []purchaseOrderItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	update := &models.PurchaseOrderUpdate{
		Supplier:             req.Supplier,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
	}
	if req.Items != nil {
		items, err := buildOrderItems(req.Items)
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		update.Items = items
	}

	po, err := h.poService.Update(ctx, companyID, poID, update)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

// MarkOrdered handles POST /purchase-orders/:id/order
func (h *PurchaseOrderHandlers) MarkOrdered(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	po, err := h.poService.MarkOrdered(ctx, companyID, poID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandlers) Receive(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Items []struct {
			InventoryItemID  string `json:"inventory_item_id"`
			QuantityReceived int    `json:"quantity_received"`
		} `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	receivedItems := make([]models.ReceivedItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		itemID, err := common.ValidateUUID(reqItem.InventoryItemID, "inventory_item_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		receivedItems = append(receivedItems, models.ReceivedItem{
			InventoryItemID:  itemID,
			QuantityReceived: reqItem.QuantityReceived,
		})
	}

	po, err := h.poService.Receive(ctx, companyID, poID, receivedItems)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandlers) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	po, err := h.poService.Cancel(ctx, companyID, poID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, po)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	poID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.poService.Delete(ctx, companyID, poID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Purchase order deleted"})
}
