package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a stock-keeping unit scoped to a company and, once
// assigned, to a physical location. Quantity is signed: negative quantity
// represents a backorder.
type InventoryItem struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CompanyID     uuid.UUID  `json:"company_id" db:"company_id"`
	LocationID    *uuid.UUID `json:"location_id" db:"location_id"`
	SKU           string     `json:"sku" db:"sku"`
	Name          string     `json:"name" db:"name"`
	Category      *string    `json:"category" db:"category"`
	Brand         *string    `json:"brand" db:"brand"`
	Model         *string    `json:"model" db:"model"`
	Description   *string    `json:"description" db:"description"`
	CostPrice     float64    `json:"cost_price" db:"cost_price"`
	SellingPrice  float64    `json:"selling_price" db:"selling_price"`
	Quantity      int        `json:"quantity" db:"quantity"`
	ReorderLevel  int        `json:"reorder_level" db:"reorder_level"`
	TrackQuantity bool       `json:"track_quantity" db:"track_quantity"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// InventoryItemPatch carries a partial update. Quantity is deliberately
// absent: every quantity mutation goes through AdjustQuantity.
type InventoryItemPatch struct {
	LocationID    *uuid.UUID `json:"location_id,omitempty"`
	SKU           *string    `json:"sku,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Brand         *string    `json:"brand,omitempty"`
	Model         *string    `json:"model,omitempty"`
	Description   *string    `json:"description,omitempty"`
	CostPrice     *float64   `json:"cost_price,omitempty"`
	SellingPrice  *float64   `json:"selling_price,omitempty"`
	ReorderLevel  *int       `json:"reorder_level,omitempty"`
	TrackQuantity *bool      `json:"track_quantity,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// InventorySearchFilter holds search and filter criteria for item queries
type InventorySearchFilter struct {
	Query       string     `json:"query,omitempty"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	Category    *string    `json:"category,omitempty"`
	MinQuantity *int       `json:"min_quantity,omitempty"`
	MaxQuantity *int       `json:"max_quantity,omitempty"`
	LowStock    bool       `json:"low_stock,omitempty"`
	SortBy      string     `json:"sort_by,omitempty"`
	SortOrder   string     `json:"sort_order,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}
