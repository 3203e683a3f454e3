package services

import (
	"context"
	"log"
	"time"

	"fixhub/internal/caching"
	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryService is the sole mutator of inventory item rows. The purchase
// order and transfer services never touch the stock ledger directly; every
// quantity change funnels through AdjustQuantity and every cost change
// through UpdateCostWithDollarCostAverage.
type InventoryService interface {
	// WithTx returns a service bound to tx so callers can compose inventory
	// primitives into their own atomic write sequences.
	WithTx(tx pgx.Tx) InventoryService

	Create(ctx context.Context, companyID, locationID uuid.UUID, item *models.InventoryItem) (*models.InventoryItem, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error)
	Search(ctx context.Context, companyID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryItem, error)
	LowStock(ctx context.Context, companyID uuid.UUID) ([]*models.InventoryItem, error)
	Update(ctx context.Context, companyID, id uuid.UUID, patch *models.InventoryItemPatch) (*models.InventoryItem, error)
	AdjustQuantity(ctx context.Context, companyID, id uuid.UUID, delta int) (*models.InventoryItem, error)
	UpdateCostWithDollarCostAverage(ctx context.Context, companyID, id uuid.UUID, receivedQty int, receivedCost float64) (*models.InventoryItem, error)
	SyncPricingAcrossLocations(ctx context.Context, companyID uuid.UUID, sku string, sellingPrice, costPrice float64) error
	Relocate(ctx context.Context, companyID, id, locationID uuid.UUID) (*models.InventoryItem, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

type inventoryService struct {
	itemRepo     repositories.InventoryItemRepository
	locationRepo repositories.LocationRepository
	cacheService caching.CacheService
}

func NewInventoryService(itemRepo repositories.InventoryItemRepository, locationRepo repositories.LocationRepository, cacheService caching.CacheService) InventoryService {
	return &inventoryService{
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		cacheService: cacheService,
	}
}

func (s *inventoryService) WithTx(tx pgx.Tx) InventoryService {
	return &inventoryService{
		itemRepo:     s.itemRepo.WithTx(tx),
		locationRepo: s.locationRepo,
		cacheService: s.cacheService,
	}
}

func (s *inventoryService) invalidateItemCache(ctx context.Context, companyID, itemID uuid.UUID) {
	if err := s.cacheService.DeleteInventoryItem(ctx, companyID, itemID); err != nil {
		log.Printf("Failed to invalidate cache for item %s: %v", itemID.String(), err)
	}
}

func (s *inventoryService) Create(ctx context.Context, companyID, locationID uuid.UUID, item *models.InventoryItem) (*models.InventoryItem, error) {
	if item.SKU == "" {
		return nil, common.NewValidation("sku is required")
	}
	if item.Name == "" {
		return nil, common.NewValidation("name is required")
	}
	if item.CostPrice < 0 || item.SellingPrice < 0 {
		return nil, common.NewValidation("prices must be non-negative")
	}

	// The location must belong to the caller's company.
	if _, err := s.locationRepo.GetByID(ctx, companyID, locationID); err != nil {
		return nil, err
	}

	exists, err := s.itemRepo.ExistsActiveSKU(ctx, companyID, item.SKU, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewDuplicateSKU(item.SKU)
	}

	item.ID = uuid.New()
	item.CompanyID = companyID
	item.LocationID = &locationID
	item.IsActive = true

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error) {
	if cached, err := s.cacheService.GetInventoryItem(ctx, companyID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors never fail the read.
		log.Printf("Cache error for item %s: %v", id.String(), err)
	}

	item, err := s.itemRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetInventoryItem(ctx, companyID, item, 5*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache item %s: %v", id.String(), cacheErr)
	}
	return item, nil
}

func (s *inventoryService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	return s.itemRepo.List(ctx, companyID, limit, offset)
}

func (s *inventoryService) Search(ctx context.Context, companyID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryItem, error) {
	if filter == nil {
		filter = &models.InventorySearchFilter{}
	}
	return s.itemRepo.Search(ctx, companyID, filter)
}

func (s *inventoryService) LowStock(ctx context.Context, companyID uuid.UUID) ([]*models.InventoryItem, error) {
	return s.itemRepo.LowStock(ctx, companyID)
}

// Update applies a partial update. Quantity is not settable here: callers
// must go through AdjustQuantity. A price change propagates to every row
// sharing the SKU, an SKU change re-validates company-wide uniqueness.
func (s *inventoryService) Update(ctx context.Context, companyID, id uuid.UUID, patch *models.InventoryItemPatch) (*models.InventoryItem, error) {
	item, err := s.itemRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if patch.SKU != nil && *patch.SKU != item.SKU {
		if *patch.SKU == "" {
			return nil, common.NewValidation("sku cannot be empty")
		}
		exists, err := s.itemRepo.ExistsActiveSKU(ctx, companyID, *patch.SKU, &item.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.NewDuplicateSKU(*patch.SKU)
		}
		item.SKU = *patch.SKU
	}
	if patch.LocationID != nil {
		if _, err := s.locationRepo.GetByID(ctx, companyID, *patch.LocationID); err != nil {
			return nil, err
		}
		item.LocationID = patch.LocationID
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Category != nil {
		item.Category = patch.Category
	}
	if patch.Brand != nil {
		item.Brand = patch.Brand
	}
	if patch.Model != nil {
		item.Model = patch.Model
	}
	if patch.Description != nil {
		item.Description = patch.Description
	}
	if patch.ReorderLevel != nil {
		if *patch.ReorderLevel < 0 {
			return nil, common.NewValidation("reorder level must be non-negative")
		}
		item.ReorderLevel = *patch.ReorderLevel
	}
	if patch.TrackQuantity != nil {
		item.TrackQuantity = *patch.TrackQuantity
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}

	priceChanged := false
	if patch.CostPrice != nil && *patch.CostPrice != item.CostPrice {
		if *patch.CostPrice < 0 {
			return nil, common.NewValidation("cost price must be non-negative")
		}
		item.CostPrice = *patch.CostPrice
		priceChanged = true
	}
	if patch.SellingPrice != nil && *patch.SellingPrice != item.SellingPrice {
		if *patch.SellingPrice < 0 {
			return nil, common.NewValidation("selling price must be non-negative")
		}
		item.SellingPrice = *patch.SellingPrice
		priceChanged = true
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	if priceChanged {
		if err := s.SyncPricingAcrossLocations(ctx, companyID, item.SKU, item.SellingPrice, item.CostPrice); err != nil {
			return nil, err
		}
	}

	s.invalidateItemCache(ctx, companyID, item.ID)
	return item, nil
}

// AdjustQuantity adds delta to the item's quantity. It is the only function
// permitted to change quantity after creation. It deliberately does not
// enforce non-negativity: backorders are an allowed terminal state, and
// quantity-sufficiency checks belong to the callers.
func (s *inventoryService) AdjustQuantity(ctx context.Context, companyID, id uuid.UUID, delta int) (*models.InventoryItem, error) {
	item, err := s.itemRepo.GetByIDForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !item.TrackQuantity {
		return item, nil
	}

	quantity, err := s.itemRepo.AdjustQuantity(ctx, companyID, id, delta)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity

	s.invalidateItemCache(ctx, companyID, id)
	return item, nil
}

// UpdateCostWithDollarCostAverage recomputes the unit cost as a weighted
// average over the pre-adjustment quantity:
//
//	newCost = currentQty <= 0 ? receivedCost
//	        : (currentQty*currentCost + receivedQty*receivedCost) / (currentQty + receivedQty)
//
// Callers must invoke it before the matching AdjustQuantity so currentQty is
// the quantity prior to the received units.
func (s *inventoryService) UpdateCostWithDollarCostAverage(ctx context.Context, companyID, id uuid.UUID, receivedQty int, receivedCost float64) (*models.InventoryItem, error) {
	if receivedQty <= 0 {
		return nil, common.NewValidation("received quantity must be positive")
	}
	if receivedCost < 0 {
		return nil, common.NewValidation("received cost must be non-negative")
	}

	item, err := s.itemRepo.GetByIDForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !item.TrackQuantity {
		return item, nil
	}

	currentQty := item.Quantity
	newCost := receivedCost
	if currentQty > 0 {
		newCost = (float64(currentQty)*item.CostPrice + float64(receivedQty)*receivedCost) / float64(currentQty+receivedQty)
	}

	if err := s.itemRepo.UpdateCost(ctx, companyID, id, newCost); err != nil {
		return nil, err
	}
	item.CostPrice = newCost

	s.invalidateItemCache(ctx, companyID, id)
	return item, nil
}

// SyncPricingAcrossLocations propagates pricing to every row sharing the
// SKU. The data model permits one row per location for a legacy SKU; those
// rows must present identical prices. Quantity is excluded from sync.
func (s *inventoryService) SyncPricingAcrossLocations(ctx context.Context, companyID uuid.UUID, sku string, sellingPrice, costPrice float64) error {
	if err := s.itemRepo.SyncPricing(ctx, companyID, sku, sellingPrice, costPrice); err != nil {
		return err
	}
	if cacheErr := s.cacheService.InvalidateCompanyCache(ctx, companyID); cacheErr != nil {
		log.Printf("Failed to invalidate company cache for %s: %v", companyID.String(), cacheErr)
	}
	return nil
}

// Relocate moves the item to another location without touching quantity.
// Used by transfer completion, which restores quantity separately.
func (s *inventoryService) Relocate(ctx context.Context, companyID, id, locationID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.itemRepo.GetByIDForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.UpdateLocation(ctx, companyID, id, locationID); err != nil {
		return nil, err
	}
	item.LocationID = &locationID

	s.invalidateItemCache(ctx, companyID, id)
	return item, nil
}

func (s *inventoryService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if item.Quantity != 0 {
		return common.NewPreconditionFailed("inventory item with non-zero quantity cannot be deleted")
	}
	if err := s.itemRepo.SoftDelete(ctx, companyID, id); err != nil {
		return err
	}

	s.invalidateItemCache(ctx, companyID, id)
	return nil
}
