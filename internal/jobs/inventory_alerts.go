package jobs

import (
	"context"
	"log"

	"fixhub/internal/repositories"

	"github.com/google/uuid"
)

// InventoryAlertService scans stock levels and reports items at or below
// their reorder level. Alerts currently go to the log; a notification
// channel can hang off the same data.
type InventoryAlertService struct {
	itemRepo    repositories.InventoryItemRepository
	companyRepo repositories.CompanyRepository
}

type InventoryAlert struct {
	CompanyID    uuid.UUID
	ItemID       uuid.UUID
	SKU          string
	Name         string
	CurrentStock int
	ReorderLevel int
}

func NewInventoryAlertService(itemRepo repositories.InventoryItemRepository, companyRepo repositories.CompanyRepository) *InventoryAlertService {
	return &InventoryAlertService{
		itemRepo:    itemRepo,
		companyRepo: companyRepo,
	}
}

func (a *InventoryAlertService) CheckLowStock(ctx context.Context, companyID uuid.UUID) ([]InventoryAlert, error) {
	items, err := a.itemRepo.LowStock(ctx, companyID)
	if err != nil {
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, InventoryAlert{
			CompanyID:    companyID,
			ItemID:       item.ID,
			SKU:          item.SKU,
			Name:         item.Name,
			CurrentStock: item.Quantity,
			ReorderLevel: item.ReorderLevel,
		})
	}
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	if len(alerts) == 0 {
		return
	}
	log.Printf("Low stock alerts for company %s:", alerts[0].CompanyID.String())
	for _, alert := range alerts {
		log.Printf("- %s (%s) has %d units (reorder level: %d)",
			alert.Name, alert.SKU, alert.CurrentStock, alert.ReorderLevel)
	}
}

// ScheduledLowStockCheck runs the scan for every active company.
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	companyIDs, err := a.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Failed to list companies for low stock check: %v", err)
		return err
	}

	for _, companyID := range companyIDs {
		alerts, err := a.CheckLowStock(ctx, companyID)
		if err != nil {
			log.Printf("Low stock check failed for company %s: %v", companyID.String(), err)
			continue
		}
		a.LogLowStockAlerts(alerts)
	}
	return nil
}
