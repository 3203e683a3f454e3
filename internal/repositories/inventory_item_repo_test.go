package repositories

import (
	"context"
	"testing"
	"time"

	"fixhub/internal/common"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemRepoMock(t *testing.T) (pgxmock.PgxPoolIface, InventoryItemRepository) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, NewInventoryItemRepo(mockPool)
}

func itemRows(id, companyID, locationID uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "company_id", "location_id", "sku", "name", "category", "brand", "model", "description",
		"cost_price", "selling_price", "quantity", "reorder_level", "track_quantity", "is_active",
		"created_at", "updated_at",
	}).AddRow(id, companyID, &locationID, "SCR-IPH14", "iPhone 14 screen",
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		2.0, 4.0, 5, 2, true, true, now, now)
}

func TestAdjustQuantityReturnsNewQuantity(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID, itemID := uuid.New(), uuid.New()

	mockPool.ExpectQuery(`UPDATE inventory_items`).
		WithArgs(5, companyID, itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(12))

	quantity, err := repo.AdjustQuantity(context.Background(), companyID, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, quantity)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestAdjustQuantityMissingItem(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID, itemID := uuid.New(), uuid.New()

	mockPool.ExpectQuery(`UPDATE inventory_items`).
		WithArgs(-3, companyID, itemID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.AdjustQuantity(context.Background(), companyID, itemID, -3)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestGetByIDForUpdateLocksRow(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID, itemID, locationID := uuid.New(), uuid.New(), uuid.New()

	mockPool.ExpectQuery(`(?s)SELECT .+ FROM inventory_items.+FOR UPDATE`).
		WithArgs(companyID, itemID).
		WillReturnRows(itemRows(itemID, companyID, locationID))

	item, err := repo.GetByIDForUpdate(context.Background(), companyID, itemID)
	require.NoError(t, err)
	assert.Equal(t, itemID, item.ID)
	assert.Equal(t, 5, item.Quantity)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestExistsActiveSKUScansResult(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID := uuid.New()

	mockPool.ExpectQuery(`SELECT EXISTS`).
		WithArgs(companyID, "SCR-IPH14", (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsActiveSKU(context.Background(), companyID, "SCR-IPH14", nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSyncPricingTargetsSKU(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID := uuid.New()

	mockPool.ExpectExec(`UPDATE inventory_items`).
		WithArgs(9.5, 4.25, companyID, "SCR-IPH14").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.SyncPricing(context.Background(), companyID, "SCR-IPH14", 9.5, 4.25)
	require.NoError(t, err)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSoftDeleteMissingItem(t *testing.T) {
	mockPool, repo := newItemRepoMock(t)
	companyID, itemID := uuid.New(), uuid.New()

	mockPool.ExpectExec(`UPDATE inventory_items`).
		WithArgs(companyID, itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SoftDelete(context.Background(), companyID, itemID)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}
