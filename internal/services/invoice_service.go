package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/gommon/random"
)

const invoiceBucket = "invoices"

type InvoiceService interface {
	CreateFromTicket(ctx context.Context, companyID, ticketID uuid.UUID, dueDate *time.Time) (*models.Invoice, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.Invoice, error)
	MarkPaid(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error)
	MarkOverdue(ctx context.Context, companyID uuid.UUID) (int64, error)
	GeneratePDF(ctx context.Context, companyID, id uuid.UUID) (string, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo  repositories.InvoiceRepository
	ticketRepo   repositories.TicketRepository
	customerRepo repositories.CustomerRepository
	companyRepo  repositories.CompanyRepository
	minioSvc     MinioService
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, ticketRepo repositories.TicketRepository, customerRepo repositories.CustomerRepository, companyRepo repositories.CompanyRepository, minioSvc MinioService) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		ticketRepo:   ticketRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		minioSvc:     minioSvc,
	}
}

func (s *invoiceService) generateInvoiceNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		number := fmt.Sprintf("INV-%s", random.String(8, random.Uppercase, random.Numeric))
		exists, err := s.invoiceRepo.ExistsInvoiceNumber(ctx, companyID, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique invoice number")
}

// CreateFromTicket bills a closed repair: labor plus every part at the price
// it was booked with.
func (s *invoiceService) CreateFromTicket(ctx context.Context, companyID, ticketID uuid.UUID, dueDate *time.Time) (*models.Invoice, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketStatusReady && ticket.Status != models.TicketStatusClosed {
		return nil, common.NewPreconditionFailed("ticket must be ready or closed before invoicing")
	}

	total := ticket.LaborCost
	for _, part := range ticket.Parts {
		total += float64(part.Quantity) * part.UnitPrice
	}

	number, err := s.generateInvoiceNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		CompanyID:     companyID,
		CustomerID:    ticket.CustomerID,
		TicketID:      &ticket.ID,
		InvoiceNumber: number,
		Status:        models.InvoiceStatusUnpaid,
		TotalAmount:   total,
		DueDate:       dueDate,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, companyID, id)
}

func (s *invoiceService) List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.List(ctx, companyID, status, limit, offset)
}

func (s *invoiceService) MarkPaid(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	// Overdue invoices can still be settled.
	if invoice.Status != models.InvoiceStatusUnpaid && invoice.Status != models.InvoiceStatusOverdue {
		return nil, common.NewInvalidStateTransition("invoice", invoice.Status, models.InvoiceStatusPaid)
	}

	now := time.Now()
	if err := s.invoiceRepo.UpdateStatus(ctx, companyID, id, models.InvoiceStatusPaid, &now); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now
	return invoice, nil
}

func (s *invoiceService) Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusCancelled {
		return nil, common.NewInvalidStateTransition("invoice", invoice.Status, models.InvoiceStatusCancelled)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, companyID, id, models.InvoiceStatusCancelled, nil); err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceStatusCancelled
	return invoice, nil
}

func (s *invoiceService) MarkOverdue(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return s.invoiceRepo.MarkOverdue(ctx, companyID, time.Now())
}

func (s *invoiceService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return common.NewPreconditionFailed("paid invoices cannot be deleted")
	}
	return s.invoiceRepo.SoftDelete(ctx, companyID, id)
}

// GeneratePDF renders the invoice, stores it and returns a 24h download URL.
func (s *invoiceService) GeneratePDF(ctx context.Context, companyID, id uuid.UUID) (string, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return "", err
	}
	customer, err := s.customerRepo.GetByID(ctx, companyID, invoice.CustomerID)
	if err != nil {
		return "", err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return "", err
	}

	var ticket *models.RepairTicket
	if invoice.TicketID != nil {
		ticket, err = s.ticketRepo.GetByID(ctx, companyID, *invoice.TicketID)
		if err != nil {
			return "", err
		}
	}

	pdfBytes, err := renderInvoicePDF(invoice, customer, company, ticket)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s.pdf", companyID.String(), invoice.InvoiceNumber)
	if err := s.minioSvc.EnsureBucketExists(ctx, invoiceBucket); err != nil {
		return "", err
	}
	if err := s.minioSvc.UploadDocument(ctx, invoiceBucket, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to upload PDF: %w", err)
	}
	if err := s.invoiceRepo.SetPDFObjectKey(ctx, companyID, id, objectName); err != nil {
		return "", err
	}

	return s.minioSvc.GetPresignedURL(ctx, invoiceBucket, objectName, 24*time.Hour)
}

func renderInvoicePDF(invoice *models.Invoice, customer *models.Customer, company *models.Company, ticket *models.RepairTicket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.Cell(0, 10, company.Name)
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Number: %s", invoice.InvoiceNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Date: %s", invoice.CreatedAt.Format("02-Jan-2006")))
	pdf.Ln(8)
	if invoice.DueDate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", invoice.DueDate.Format("02-Jan-2006")))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%s %s", customer.FirstName, customer.LastName))
	pdf.Ln(6)
	if customer.Email != nil {
		pdf.Cell(0, 6, *customer.Email)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	headers := []string{"Description", "Qty", "Rate", "Amount"}
	colWidths := []float64{80, 20, 30, 40}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	if ticket != nil {
		if ticket.LaborCost > 0 {
			pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("Labor: %s repair", ticket.DeviceType), "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[1], 8, "1", "1", 0, "C", false, 0, "")
			pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", ticket.LaborCost), "1", 0, "R", false, 0, "")
			pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", ticket.LaborCost), "1", 0, "R", false, 0, "")
			pdf.Ln(8)
		}
		for _, part := range ticket.Parts {
			amount := float64(part.Quantity) * part.UnitPrice
			pdf.CellFormat(colWidths[0], 8, fmt.Sprintf("Part %s", part.InventoryItemID.String()[:8]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", part.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", part.UnitPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", amount), "1", 0, "R", false, 0, "")
			pdf.Ln(8)
		}
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", invoice.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "Thank you for your business!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
