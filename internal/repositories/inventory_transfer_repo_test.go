package repositories

import (
	"context"
	"testing"
	"time"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransferRepoMock(t *testing.T) (pgxmock.PgxPoolIface, InventoryTransferRepository) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, NewInventoryTransferRepo(mockPool)
}

func transferRows(transfer *models.InventoryTransfer) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "company_id", "from_location_id", "to_location_id", "inventory_item_id",
		"quantity", "status", "notes", "transferred_by", "created_at", "updated_at",
	}).AddRow(transfer.ID, transfer.CompanyID, transfer.FromLocationID, transfer.ToLocationID,
		transfer.InventoryItemID, transfer.Quantity, transfer.Status, transfer.Notes,
		transfer.TransferredBy, now, now)
}

func sampleTransfer() *models.InventoryTransfer {
	return &models.InventoryTransfer{
		ID:              uuid.New(),
		CompanyID:       uuid.New(),
		FromLocationID:  uuid.New(),
		ToLocationID:    uuid.New(),
		InventoryItemID: uuid.New(),
		Quantity:        4,
		Status:          models.TransferStatusPending,
		TransferredBy:   uuid.New(),
	}
}

func TestCreateTransferInsertsRow(t *testing.T) {
	mockPool, repo := newTransferRepoMock(t)
	transfer := sampleTransfer()

	mockPool.ExpectExec(`INSERT INTO inventory_transfers`).
		WithArgs(transfer.ID, transfer.CompanyID, transfer.FromLocationID, transfer.ToLocationID,
			transfer.InventoryItemID, transfer.Quantity, transfer.Status, transfer.Notes,
			transfer.TransferredBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), transfer))
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTransferGetByIDForUpdateLocksRow(t *testing.T) {
	mockPool, repo := newTransferRepoMock(t)
	transfer := sampleTransfer()

	mockPool.ExpectQuery(`(?s)SELECT .+ FROM inventory_transfers.+FOR UPDATE`).
		WithArgs(transfer.CompanyID, transfer.ID).
		WillReturnRows(transferRows(transfer))

	got, err := repo.GetByIDForUpdate(context.Background(), transfer.CompanyID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, got.ID)
	assert.Equal(t, models.TransferStatusPending, got.Status)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTransferUpdateStatusMissingRow(t *testing.T) {
	mockPool, repo := newTransferRepoMock(t)
	companyID, transferID := uuid.New(), uuid.New()

	mockPool.ExpectExec(`UPDATE inventory_transfers`).
		WithArgs(models.TransferStatusCompleted, companyID, transferID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), companyID, transferID, models.TransferStatusCompleted)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestTransferListFiltersByStatus(t *testing.T) {
	mockPool, repo := newTransferRepoMock(t)
	transfer := sampleTransfer()
	status := models.TransferStatusPending

	mockPool.ExpectQuery(`(?s)SELECT .+ FROM inventory_transfers.+status`).
		WithArgs(transfer.CompanyID, status, 50).
		WillReturnRows(transferRows(transfer))

	transfers, err := repo.List(context.Background(), transfer.CompanyID, &models.TransferFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, transfer.ID, transfers[0].ID)
	require.NoError(t, mockPool.ExpectationsWereMet())
}
