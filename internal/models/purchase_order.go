package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase order lifecycle: draft -> ordered -> received, with cancelled
// reachable from draft and ordered. Received and cancelled are terminal.
const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusOrdered   = "ordered"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

type PurchaseOrder struct {
	ID                   uuid.UUID            `json:"id" db:"id"`
	CompanyID            uuid.UUID            `json:"company_id" db:"company_id"`
	PONumber             string               `json:"po_number" db:"po_number"`
	Supplier             string               `json:"supplier" db:"supplier"`
	Status               string               `json:"status" db:"status"`
	OrderDate            time.Time            `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate *time.Time           `json:"expected_delivery_date" db:"expected_delivery_date"`
	ReceivedDate         *time.Time           `json:"received_date" db:"received_date"`
	TotalAmount          float64              `json:"total_amount" db:"total_amount"`
	Notes                *string              `json:"notes" db:"notes"`
	Items                []*PurchaseOrderItem `json:"items,omitempty"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
	DeletedAt            *time.Time           `json:"deleted_at,omitempty" db:"deleted_at"`
}

type PurchaseOrderItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	PurchaseOrderID  uuid.UUID `json:"purchase_order_id" db:"purchase_order_id"`
	InventoryItemID  uuid.UUID `json:"inventory_item_id" db:"inventory_item_id"`
	QuantityOrdered  int       `json:"quantity_ordered" db:"quantity_ordered"`
	QuantityReceived int       `json:"quantity_received" db:"quantity_received"`
	UnitCost         float64   `json:"unit_cost" db:"unit_cost"`
	Subtotal         float64   `json:"subtotal" db:"subtotal"`
}

// ReceivedItem is one line of a receive submission.
type ReceivedItem struct {
	InventoryItemID  uuid.UUID `json:"inventory_item_id"`
	QuantityReceived int       `json:"quantity_received"`
}

// PurchaseOrderUpdate carries a draft-only update. A non-nil Items slice
// replaces the entire item set.
type PurchaseOrderUpdate struct {
	Supplier             *string              `json:"supplier,omitempty"`
	ExpectedDeliveryDate *time.Time           `json:"expected_delivery_date,omitempty"`
	Notes                *string              `json:"notes,omitempty"`
	Items                []*PurchaseOrderItem `json:"items,omitempty"`
}

type PurchaseOrderFilter struct {
	Status   *string `json:"status,omitempty"`
	Supplier *string `json:"supplier,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}
