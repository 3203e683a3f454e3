package handlers

import (
	"net/http"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/services"

	"github.com/labstack/echo/v4"
)

type InvoiceHandlers struct {
	invoiceService services.InvoiceService
}

func NewInvoiceHandlers(invoiceService services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService}
}

// Create handles POST /invoices: bills a repair ticket.
func (h *InvoiceHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		TicketID string     `json:"ticket_id"`
		DueDate  *time.Time `json:"due_date"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ticketID, err := common.ValidateUUID(req.TicketID, "ticket_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.CreateFromTicket(ctx, companyID, ticketID, req.DueDate)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, companyID, invoiceID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandlers) List(c echo.Context) error {
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

	invoices, err := h.invoiceService.List(ctx, companyID, status, limit, offset)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// MarkPaid handles POST /invoices/:id/pay
func (h *InvoiceHandlers) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.MarkPaid(ctx, companyID, invoiceID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandlers) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.Cancel(ctx, companyID, invoiceID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// GeneratePDF handles POST /invoices/:id/pdf
func (h *InvoiceHandlers) GeneratePDF(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := h.invoiceService.GeneratePDF(ctx, companyID, invoiceID)
	if err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"pdf_url":    url,
		"expires_in": "24 hours",
	})
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.Delete(ctx, companyID, invoiceID); err != nil {
		return common.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Invoice deleted"})
}
