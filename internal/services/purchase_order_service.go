package services

import (
	"context"
	"fmt"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

// PurchaseOrderService drives the draft -> ordered -> received lifecycle.
// Receiving is the only path by which purchased stock enters inventory, and
// it runs as a single transaction: item receipts, cost averaging, quantity
// adjustments and the status flip all commit or roll back together.
type PurchaseOrderService interface {
	Create(ctx context.Context, companyID uuid.UUID, po *models.PurchaseOrder) (*models.PurchaseOrder, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, companyID uuid.UUID, filter *models.PurchaseOrderFilter) ([]*models.PurchaseOrder, error)
	Update(ctx context.Context, companyID, id uuid.UUID, update *models.PurchaseOrderUpdate) (*models.PurchaseOrder, error)
	MarkOrdered(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error)
	Receive(ctx context.Context, companyID, id uuid.UUID, receivedItems []models.ReceivedItem) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type purchaseOrderService struct {
	poRepo           repositories.PurchaseOrderRepository
	inventoryService InventoryService
	txManager        repositories.TransactionManager
}

func NewPurchaseOrderService(poRepo repositories.PurchaseOrderRepository, inventoryService InventoryService, txManager repositories.TransactionManager) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:           poRepo,
		inventoryService: inventoryService,
		txManager:        txManager,
	}
}

func (s *purchaseOrderService) generatePONumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		poNumber := fmt.Sprintf("PO-%s", random.String(8, random.Uppercase, random.Numeric))
		exists, err := s.poRepo.ExistsPONumber(ctx, companyID, poNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			return poNumber, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique purchase order number")
}

func validateOrderItems(items []*models.PurchaseOrderItem) error {
	if len(items) == 0 {
		return common.NewValidation("purchase order requires at least one item")
	}
	for _, item := range items {
		if item.InventoryItemID == uuid.Nil {
			return common.NewValidation("item inventory_item_id is required")
		}
		if item.QuantityOrdered <= 0 {
			return common.NewValidation("item quantity ordered must be positive")
		}
		if item.UnitCost < 0 {
			return common.NewValidation("item unit cost must be non-negative")
		}
	}
	return nil
}

func (s *purchaseOrderService) Create(ctx context.Context, companyID uuid.UUID, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if po.Supplier == "" {
		return nil, common.NewValidation("supplier is required")
	}
	if err := validateOrderItems(po.Items); err != nil {
		return nil, err
	}

	// Every referenced item must exist and belong to the company before the
	// order is persisted.
	for _, item := range po.Items {
		if _, err := s.inventoryService.GetByID(ctx, companyID, item.InventoryItemID); err != nil {
			return nil, err
		}
	}

	poNumber, err := s.generatePONumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	po.ID = uuid.New()
	po.CompanyID = companyID
	po.PONumber = poNumber
	po.Status = models.PurchaseOrderStatusDraft
	if po.OrderDate.IsZero() {
		po.OrderDate = time.Now()
	}
	po.ReceivedDate = nil
	po.TotalAmount = 0
	for _, item := range po.Items {
		item.ID = uuid.New()
		item.PurchaseOrderID = po.ID
		item.QuantityReceived = 0
		item.Subtotal = float64(item.QuantityOrdered) * item.UnitCost
		po.TotalAmount += item.Subtotal
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *purchaseOrderService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.poRepo.GetByID(ctx, companyID, id)
}

func (s *purchaseOrderService) List(ctx context.Context, companyID uuid.UUID, filter *models.PurchaseOrderFilter) ([]*models.PurchaseOrder, error) {
	return s.poRepo.List(ctx, companyID, filter)
}

// Update edits order fields and optionally replaces the item set. Only
// drafts are editable; ordered and later orders are immutable except for
// their status transitions.
func (s *purchaseOrderService) Update(ctx context.Context, companyID, id uuid.UUID, update *models.PurchaseOrderUpdate) (*models.PurchaseOrder, error) {
	var updated *models.PurchaseOrder
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		poRepo := s.poRepo.WithTx(tx)

		po, err := poRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if po.Status != models.PurchaseOrderStatusDraft {
			return common.NewPreconditionFailed("only draft purchase orders can be edited")
		}

		if update.Supplier != nil {
			if *update.Supplier == "" {
				return common.NewValidation("supplier cannot be empty")
			}
			po.Supplier = *update.Supplier
		}
		if update.ExpectedDeliveryDate != nil {
			po.ExpectedDeliveryDate = update.ExpectedDeliveryDate
		}
		if update.Notes != nil {
			po.Notes = update.Notes
		}

		if update.Items != nil {
			if err := validateOrderItems(update.Items); err != nil {
				return err
			}
			invSvc := s.inventoryService.WithTx(tx)
			for _, item := range update.Items {
				if _, err := invSvc.GetByID(ctx, companyID, item.InventoryItemID); err != nil {
					return err
				}
			}

			po.Items = update.Items
			po.TotalAmount = 0
			for _, item := range po.Items {
				item.ID = uuid.New()
				item.PurchaseOrderID = po.ID
				item.QuantityReceived = 0
				item.Subtotal = float64(item.QuantityOrdered) * item.UnitCost
				po.TotalAmount += item.Subtotal
			}
			if err := poRepo.ReplaceItems(ctx, po); err != nil {
				return err
			}
		} else {
			po.TotalAmount = 0
			for _, item := range po.Items {
				po.TotalAmount += item.Subtotal
			}
		}

		if err := poRepo.Update(ctx, po); err != nil {
			return err
		}
		updated = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *purchaseOrderService) MarkOrdered(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	var ordered *models.PurchaseOrder
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		poRepo := s.poRepo.WithTx(tx)

		po, err := poRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if po.Status != models.PurchaseOrderStatusDraft {
			return common.NewInvalidStateTransition("purchase order", po.Status, models.PurchaseOrderStatusOrdered)
		}

		po.Status = models.PurchaseOrderStatusOrdered
		if err := poRepo.UpdateStatus(ctx, po); err != nil {
			return err
		}
		ordered = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// Receive books the delivered quantities against an ordered purchase order.
// For each received line the item's unit cost is re-averaged over the stock
// on hand before its quantity is bumped, so the average weighs the
// pre-delivery quantity at the old cost. Lines omitted from the submission
// stay at zero received. Receiving is terminal even when a line arrives
// short; the remainder is not reorderable through this order.
func (s *purchaseOrderService) Receive(ctx context.Context, companyID, id uuid.UUID, receivedItems []models.ReceivedItem) (*models.PurchaseOrder, error) {
	if len(receivedItems) == 0 {
		return nil, common.NewValidation("receive requires at least one item")
	}
	// A duplicated line would bump stock once per occurrence while the
	// persisted receipt keeps only the last quantity, so each item may be
	// submitted at most once.
	seen := make(map[uuid.UUID]bool, len(receivedItems))
	for _, submitted := range receivedItems {
		if seen[submitted.InventoryItemID] {
			return nil, common.NewValidation(fmt.Sprintf("item %s appears more than once in the receipt", submitted.InventoryItemID))
		}
		seen[submitted.InventoryItemID] = true
	}

	var received *models.PurchaseOrder
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		poRepo := s.poRepo.WithTx(tx)
		invSvc := s.inventoryService.WithTx(tx)

		po, err := poRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if po.Status != models.PurchaseOrderStatusOrdered {
			return common.NewInvalidStateTransition("purchase order", po.Status, models.PurchaseOrderStatusReceived)
		}

		lineByItemID := make(map[uuid.UUID]*models.PurchaseOrderItem, len(po.Items))
		for _, line := range po.Items {
			lineByItemID[line.InventoryItemID] = line
		}

		for _, submitted := range receivedItems {
			line, ok := lineByItemID[submitted.InventoryItemID]
			if !ok {
				return common.NewValidation(fmt.Sprintf("item %s is not part of this purchase order", submitted.InventoryItemID))
			}
			if submitted.QuantityReceived < 0 || submitted.QuantityReceived > line.QuantityOrdered {
				return common.NewValidation(fmt.Sprintf("received quantity for item %s must be between 0 and %d", submitted.InventoryItemID, line.QuantityOrdered))
			}

			line.QuantityReceived = submitted.QuantityReceived
			line.Subtotal = float64(submitted.QuantityReceived) * line.UnitCost
			if err := poRepo.UpdateItemReceipt(ctx, line.ID, line.QuantityReceived, line.Subtotal); err != nil {
				return err
			}

			if submitted.QuantityReceived == 0 {
				continue
			}

			// Cost averaging must see the quantity as it was before this
			// delivery, so it runs ahead of the adjustment.
			if _, err := invSvc.UpdateCostWithDollarCostAverage(ctx, companyID, line.InventoryItemID, submitted.QuantityReceived, line.UnitCost); err != nil {
				return err
			}
			if _, err := invSvc.AdjustQuantity(ctx, companyID, line.InventoryItemID, submitted.QuantityReceived); err != nil {
				return err
			}
		}

		// Unsubmitted lines received nothing; their subtotals drop out of
		// the final total.
		po.TotalAmount = 0
		for _, line := range po.Items {
			found := false
			for _, submitted := range receivedItems {
				if submitted.InventoryItemID == line.InventoryItemID {
					found = true
					break
				}
			}
			if !found {
				line.QuantityReceived = 0
				line.Subtotal = 0
				if err := poRepo.UpdateItemReceipt(ctx, line.ID, 0, 0); err != nil {
					return err
				}
			}
			po.TotalAmount += line.Subtotal
		}

		now := time.Now()
		po.Status = models.PurchaseOrderStatusReceived
		po.ReceivedDate = &now
		if err := poRepo.UpdateStatus(ctx, po); err != nil {
			return err
		}
		received = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

// Cancel is allowed from draft and ordered. Cancelling never touches stock:
// nothing was received, so nothing needs reverting.
func (s *purchaseOrderService) Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	var cancelled *models.PurchaseOrder
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		poRepo := s.poRepo.WithTx(tx)

		po, err := poRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if po.Status == models.PurchaseOrderStatusReceived || po.Status == models.PurchaseOrderStatusCancelled {
			return common.NewInvalidStateTransition("purchase order", po.Status, models.PurchaseOrderStatusCancelled)
		}

		po.Status = models.PurchaseOrderStatusCancelled
		if err := poRepo.UpdateStatus(ctx, po); err != nil {
			return err
		}
		cancelled = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *purchaseOrderService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	po, err := s.poRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if po.Status != models.PurchaseOrderStatusDraft {
		return common.NewPreconditionFailed("only draft purchase orders can be deleted")
	}
	return s.poRepo.SoftDelete(ctx, companyID, id)
}
