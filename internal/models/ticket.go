package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketStatusOpen          = "open"
	TicketStatusInProgress    = "in_progress"
	TicketStatusAwaitingParts = "awaiting_parts"
	TicketStatusReady         = "ready"
	TicketStatusClosed        = "closed"
	TicketStatusCancelled     = "cancelled"
)

type RepairTicket struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	CompanyID        uuid.UUID     `json:"company_id" db:"company_id"`
	LocationID       uuid.UUID     `json:"location_id" db:"location_id"`
	CustomerID       uuid.UUID     `json:"customer_id" db:"customer_id"`
	AssignedTo       *uuid.UUID    `json:"assigned_to" db:"assigned_to"`
	TicketNumber     string        `json:"ticket_number" db:"ticket_number"`
	DeviceType       string        `json:"device_type" db:"device_type"`
	DeviceBrand      *string       `json:"device_brand" db:"device_brand"`
	DeviceModel      *string       `json:"device_model" db:"device_model"`
	SerialNumber     *string       `json:"serial_number" db:"serial_number"`
	IssueDescription string        `json:"issue_description" db:"issue_description"`
	Status           string        `json:"status" db:"status"`
	LaborCost        float64       `json:"labor_cost" db:"labor_cost"`
	Parts            []*TicketPart `json:"parts,omitempty"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TicketPart is an inventory item consumed by a repair.
type TicketPart struct {
	ID              uuid.UUID `json:"id" db:"id"`
	TicketID        uuid.UUID `json:"ticket_id" db:"ticket_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id" db:"inventory_item_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	UnitPrice       float64   `json:"unit_price" db:"unit_price"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
