package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type TransferHandlers struct {
	transferService services.InventoryTransferService
}

func NewTransferHandlers(transferService services.InventoryTransferService) *TransferHandlers {
	return &TransferHandlers{transferService: transferService}
}

// Create handles POST /transfers
func (h *TransferHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		FromLocationID  string  `json:"from_location_id"`
		ToLocationID    string  `json:"to_location_id"`
		InventoryItemID string  `json:"inventory_item_id"`
		Quantity        int     `json:"quantity"`
		Notes           *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	fromID, err := common.ValidateUUID(req.FromLocationID, "from_location_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	toID, err := common.ValidateUUID(req.ToLocationID, "to_location_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	itemID, err := common.ValidateUUID(req.InventoryItemID, "inventory_item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	transfer, err := h.transferService.Create(ctx, companyID, userID, &models.TransferCreate{
		FromLocationID:  fromID,
		ToLocationID:    toID,
		InventoryItemID: itemID,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
	})
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, transfer)
}

// Get handles GET /transfers/:id
func (h *TransferHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	transferID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	transfer, err := h.transferService.GetByID(ctx, companyID, transferID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}

// List handles GET /transfers
func (h *TransferHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	filter := &models.TransferFilter{Limit: limit, Offset: offset}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if fromParam := c.QueryParam("from_location_id"); fromParam != "" {
		fromID, err := common.ValidateUUID(fromParam, "from_location_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.FromLocationID = &fromID
	}
	if toParam := c.QueryParam("to_location_id"); toParam != "" {
		toID, err := common.ValidateUUID(toParam, "to_location_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.ToLocationID = &toID
	}

	transfers, err := h.transferService.List(ctx, companyID, filter)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"limit":     limit,
		"offset":    offset,
	})
}

// Complete handles POST /transfers/:id/complete
func (h *TransferHandlers) Complete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	transferID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	transfer, err := h.transferService.Complete(ctx, companyID, transferID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}

// Cancel handles POST /transfers/:id/cancel
func (h *TransferHandlers) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	transferID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	transfer, err := h.transferService.Cancel(ctx, companyID, transferID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, transfer)
}
