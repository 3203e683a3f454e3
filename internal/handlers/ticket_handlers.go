package handlers

import (
	"net/http"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type TicketHandlers struct {
	ticketService services.TicketService
}

func NewTicketHandlers(ticketService services.TicketService) *TicketHandlers {
	return &TicketHandlers{ticketService: ticketService}
}

// Create handles POST /tickets
func (h *TicketHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		LocationID       string  `json:"location_id"`
		CustomerID       string  `json:"customer_id"`
		DeviceType       string  `json:"device_type"`
		DeviceBrand      *string `json:"device_brand"`
		DeviceModel      *string `json:"device_model"`
		SerialNumber     *string `json:"serial_number"`
		IssueDescription string  `json:"issue_description"`
		LaborCost        float64 `json:"labor_cost"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	locationID, err := common.ValidateUUID(req.LocationID, "location_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ticket := &models.RepairTicket{
		LocationID:       locationID,
		CustomerID:       customerID,
		DeviceType:       req.DeviceType,
		DeviceBrand:      req.DeviceBrand,
		DeviceModel:      req.DeviceModel,
		SerialNumber:     req.SerialNumber,
		IssueDescription: req.IssueDescription,
		LaborCost:        req.LaborCost,
	}
	created, err := h.ticketService.Create(ctx, companyID, ticket)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get handles GET /tickets/:id
func (h *TicketHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	ticketID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ticket, err := h.ticketService.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// List handles GET /tickets
func (h *TicketHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := paginationFromQuery(c)
	var status *string
	if statusParam := c.QueryParam("status"); statusParam != "" {
		status = &statusParam
	}

	tickets, err := h.ticketService.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"limit":   limit,
		"offset":  offset,
	})
}

// Update handles PUT /tickets/:id
func (h *TicketHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	ticketID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var ticket models.RepairTicket
	if err := c.Bind(&ticket); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	updated, err := h.ticketService.Update(ctx, companyID, ticketID, &ticket)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateStatus handles PUT /tickets/:id/status
func (h *TicketHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	ticketID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Status == "" {
		return common.SendValidationError(c, "status", "status is required")
	}

	ticket, err := h.ticketService.UpdateStatus(ctx, companyID, ticketID, req.Status)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// UsePart handles POST /tickets/:id/parts
func (h *TicketHandlers) UsePart(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	ticketID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		InventoryItemID string `json:"inventory_item_id"`
		Quantity        int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	itemID, err := common.ValidateUUID(req.InventoryItemID, "inventory_item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	part, err := h.ticketService.UsePart(ctx, companyID, ticketID, itemID, req.Quantity)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, part)
}

// Delete handles DELETE /tickets/:id
func (h *TicketHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	ticketID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ticketService.Delete(ctx, companyID, ticketID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Ticket deleted"})
}
