package models

import (
	"time"

	"github.com/google/uuid"
)

// Transfer lifecycle: pending -> completed | cancelled, both terminal.
// While a transfer is pending its quantity is deducted from the source
// location and visible at neither end.
const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
	TransferStatusCancelled = "cancelled"
)

type InventoryTransfer struct {
	ID              uuid.UUID `json:"id" db:"id"`
	CompanyID       uuid.UUID `json:"company_id" db:"company_id"`
	FromLocationID  uuid.UUID `json:"from_location_id" db:"from_location_id"`
	ToLocationID    uuid.UUID `json:"to_location_id" db:"to_location_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id" db:"inventory_item_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	Status          string    `json:"status" db:"status"`
	Notes           *string   `json:"notes" db:"notes"`
	TransferredBy   uuid.UUID `json:"transferred_by" db:"transferred_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TransferCreate is the input for creating a transfer.
type TransferCreate struct {
	FromLocationID  uuid.UUID `json:"from_location_id"`
	ToLocationID    uuid.UUID `json:"to_location_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	Quantity        int       `json:"quantity"`
	Notes           *string   `json:"notes,omitempty"`
}

type TransferFilter struct {
	Status         *string    `json:"status,omitempty"`
	FromLocationID *uuid.UUID `json:"from_location_id,omitempty"`
	ToLocationID   *uuid.UUID `json:"to_location_id,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	Offset         int        `json:"offset,omitempty"`
}
