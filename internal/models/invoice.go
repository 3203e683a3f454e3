package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

type Invoice struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CompanyID     uuid.UUID  `json:"company_id" db:"company_id"`
	CustomerID    uuid.UUID  `json:"customer_id" db:"customer_id"`
	TicketID      *uuid.UUID `json:"ticket_id" db:"ticket_id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	Status        string     `json:"status" db:"status"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	DueDate       *time.Time `json:"due_date" db:"due_date"`
	PaidAt        *time.Time `json:"paid_at" db:"paid_at"`
	PDFObjectKey  *string    `json:"pdf_object_key" db:"pdf_object_key"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
