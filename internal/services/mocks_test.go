package services

import (
	"context"
	"time"

	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// stubTxManager runs the callback without a real transaction so the service
// logic under test executes inline.
type stubTxManager struct{}

func (stubTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

// stubCache is a cache that optionally serves one item and swallows writes.
type stubCache struct {
	item *models.InventoryItem
}

func (s *stubCache) GetInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if s.item != nil && s.item.ID == itemID {
		return s.item, nil
	}
	return nil, nil
}

func (s *stubCache) SetInventoryItem(ctx context.Context, companyID uuid.UUID, item *models.InventoryItem, ttl time.Duration) error {
	return nil
}

func (s *stubCache) DeleteInventoryItem(ctx context.Context, companyID, itemID uuid.UUID) error {
	return nil
}

func (s *stubCache) SetRefreshToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return nil
}

func (s *stubCache) GetRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (s *stubCache) DeleteRefreshToken(ctx context.Context, token string) error {
	return nil
}

func (s *stubCache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 1, nil
}

func (s *stubCache) InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error {
	return nil
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) WithTx(tx pgx.Tx) repositories.InventoryItemRepository {
	return m
}

func (m *mockItemRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, companyID, id)
	if item, ok := args.Get(0).(*models.InventoryItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryItem, error) {
	args := m.Called(ctx, companyID, id)
	if item, ok := args.Get(0).(*models.InventoryItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) ExistsActiveSKU(ctx context.Context, companyID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockItemRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) AdjustQuantity(ctx context.Context, companyID, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, companyID, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *mockItemRepo) UpdateCost(ctx context.Context, companyID, id uuid.UUID, costPrice float64) error {
	return m.Called(ctx, companyID, id, costPrice).Error(0)
}

func (m *mockItemRepo) UpdateLocation(ctx context.Context, companyID, id, locationID uuid.UUID) error {
	return m.Called(ctx, companyID, id, locationID).Error(0)
}

func (m *mockItemRepo) SyncPricing(ctx context.Context, companyID uuid.UUID, sku string, sellingPrice, costPrice float64) error {
	return m.Called(ctx, companyID, sku, sellingPrice, costPrice).Error(0)
}

func (m *mockItemRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockItemRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if items, ok := args.Get(0).([]*models.InventoryItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) Search(ctx context.Context, companyID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, companyID, filter)
	if items, ok := args.Get(0).([]*models.InventoryItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) LowStock(ctx context.Context, companyID uuid.UUID) ([]*models.InventoryItem, error) {
	args := m.Called(ctx, companyID)
	if items, ok := args.Get(0).([]*models.InventoryItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLocationRepo struct {
	mock.Mock
}

func (m *mockLocationRepo) Create(ctx context.Context, location *models.Location) error {
	return m.Called(ctx, location).Error(0)
}

func (m *mockLocationRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, companyID, id)
	if location, ok := args.Get(0).(*models.Location); ok {
		return location, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) Update(ctx context.Context, location *models.Location) error {
	return m.Called(ctx, location).Error(0)
}

func (m *mockLocationRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockLocationRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Location, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if locations, ok := args.Get(0).([]*models.Location); ok {
		return locations, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPurchaseOrderRepo struct {
	mock.Mock
}

func (m *mockPurchaseOrderRepo) WithTx(tx pgx.Tx) repositories.PurchaseOrderRepository {
	return m
}

func (m *mockPurchaseOrderRepo) Create(ctx context.Context, po *models.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *mockPurchaseOrderRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, companyID, id)
	if po, ok := args.Get(0).(*models.PurchaseOrder); ok {
		return po, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, companyID, id)
	if po, ok := args.Get(0).(*models.PurchaseOrder); ok {
		return po, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPurchaseOrderRepo) ExistsPONumber(ctx context.Context, companyID uuid.UUID, poNumber string) (bool, error) {
	args := m.Called(ctx, companyID, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseOrderRepo) Update(ctx context.Context, po *models.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *mockPurchaseOrderRepo) ReplaceItems(ctx context.Context, po *models.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *mockPurchaseOrderRepo) UpdateItemReceipt(ctx context.Context, itemID uuid.UUID, quantityReceived int, subtotal float64) error {
	return m.Called(ctx, itemID, quantityReceived, subtotal).Error(0)
}

func (m *mockPurchaseOrderRepo) UpdateStatus(ctx context.Context, po *models.PurchaseOrder) error {
	return m.Called(ctx, po).Error(0)
}

func (m *mockPurchaseOrderRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockPurchaseOrderRepo) List(ctx context.Context, companyID uuid.UUID, filter *models.PurchaseOrderFilter) ([]*models.PurchaseOrder, error) {
	args := m.Called(ctx, companyID, filter)
	if pos, ok := args.Get(0).([]*models.PurchaseOrder); ok {
		return pos, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTransferRepo struct {
	mock.Mock
}

func (m *mockTransferRepo) WithTx(tx pgx.Tx) repositories.InventoryTransferRepository {
	return m
}

func (m *mockTransferRepo) Create(ctx context.Context, transfer *models.InventoryTransfer) error {
	return m.Called(ctx, transfer).Error(0)
}

func (m *mockTransferRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	args := m.Called(ctx, companyID, id)
	if transfer, ok := args.Get(0).(*models.InventoryTransfer); ok {
		return transfer, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransferRepo) GetByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	args := m.Called(ctx, companyID, id)
	if transfer, ok := args.Get(0).(*models.InventoryTransfer); ok {
		return transfer, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransferRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	return m.Called(ctx, companyID, id, status).Error(0)
}

func (m *mockTransferRepo) List(ctx context.Context, companyID uuid.UUID, filter *models.TransferFilter) ([]*models.InventoryTransfer, error) {
	args := m.Called(ctx, companyID, filter)
	if transfers, ok := args.Get(0).([]*models.InventoryTransfer); ok {
		return transfers, args.Error(1)
	}
	return nil, args.Error(1)
}
