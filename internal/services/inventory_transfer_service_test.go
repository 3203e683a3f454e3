package services

import (
	"context"
	"testing"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	transferRepo *mockTransferRepo
	locationRepo *mockLocationRepo
	itemRepo     *mockItemRepo
	svc          InventoryTransferService
	companyID    uuid.UUID
	userID       uuid.UUID
	fromID       uuid.UUID
	toID         uuid.UUID
}

func newTransferFixture() *transferFixture {
	transferRepo := &mockTransferRepo{}
	locationRepo := &mockLocationRepo{}
	itemRepo := &mockItemRepo{}
	invSvc := NewInventoryService(itemRepo, locationRepo, &stubCache{})
	return &transferFixture{
		transferRepo: transferRepo,
		locationRepo: locationRepo,
		itemRepo:     itemRepo,
		svc:          NewInventoryTransferService(transferRepo, locationRepo, invSvc, stubTxManager{}),
		companyID:    uuid.New(),
		userID:       uuid.New(),
		fromID:       uuid.New(),
		toID:         uuid.New(),
	}
}

func (f *transferFixture) expectLocations(ctx context.Context) {
	f.locationRepo.On("GetByID", ctx, f.companyID, f.fromID).Return(&models.Location{ID: f.fromID}, nil)
	f.locationRepo.On("GetByID", ctx, f.companyID, f.toID).Return(&models.Location{ID: f.toID}, nil)
}

func pendingTransfer(f *transferFixture, itemID uuid.UUID, qty int) *models.InventoryTransfer {
	return &models.InventoryTransfer{
		ID:              uuid.New(),
		CompanyID:       f.companyID,
		FromLocationID:  f.fromID,
		ToLocationID:    f.toID,
		InventoryItemID: itemID,
		Quantity:        qty,
		Status:          models.TransferStatusPending,
		TransferredBy:   f.userID,
	}
}

func TestCreateTransferDeductsSourceAndPersistsPending(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	f.expectLocations(ctx)

	item := trackedItem(f.companyID, f.fromID, 10, 2.0)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, -4).Return(6, nil)
	f.transferRepo.On("Create", ctx, mock.Anything).Return(nil)

	transfer, err := f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.toID,
		InventoryItemID: item.ID,
		Quantity:        4,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusPending, transfer.Status)
	assert.Equal(t, 4, transfer.Quantity)
	assert.Equal(t, f.userID, transfer.TransferredBy)
	f.itemRepo.AssertExpectations(t)
	f.transferRepo.AssertExpectations(t)
}

func TestCreateTransferFailsOnInsufficientQuantity(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	f.expectLocations(ctx)

	item := trackedItem(f.companyID, f.fromID, 2, 2.0)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, -4).Return(-2, nil)

	_, err := f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.toID,
		InventoryItemID: item.ID,
		Quantity:        4,
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	f.transferRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTransferFailsWhenItemElsewhere(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()
	f.expectLocations(ctx)

	item := trackedItem(f.companyID, uuid.New(), 10, 2.0)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, -4).Return(6, nil)

	_, err := f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.toID,
		InventoryItemID: item.ID,
		Quantity:        4,
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	f.transferRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTransferValidatesInput(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.toID,
		InventoryItemID: uuid.New(),
		Quantity:        0,
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	_, err = f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.fromID,
		InventoryItemID: uuid.New(),
		Quantity:        3,
	})
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	// With both fields invalid the location check is reported first.
	_, err = f.svc.Create(ctx, f.companyID, f.userID, &models.TransferCreate{
		FromLocationID:  f.fromID,
		ToLocationID:    f.fromID,
		InventoryItemID: uuid.New(),
		Quantity:        0,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locations must differ")
}

func TestCompleteRelocatesAndRestoresQuantity(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	item := trackedItem(f.companyID, f.fromID, 6, 2.0)
	transfer := pendingTransfer(f, item.ID, 4)

	f.transferRepo.On("GetByIDForUpdate", ctx, f.companyID, transfer.ID).Return(transfer, nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("UpdateLocation", ctx, f.companyID, item.ID, f.toID).Return(nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, 4).Return(10, nil)
	f.transferRepo.On("UpdateStatus", ctx, f.companyID, transfer.ID, models.TransferStatusCompleted).Return(nil)

	got, err := f.svc.Complete(ctx, f.companyID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, got.Status)
	f.itemRepo.AssertExpectations(t)
	f.transferRepo.AssertExpectations(t)
}

func TestCompleteRequiresPending(t *testing.T) {
	for _, status := range []string{models.TransferStatusCompleted, models.TransferStatusCancelled} {
		f := newTransferFixture()
		ctx := context.Background()

		transfer := pendingTransfer(f, uuid.New(), 4)
		transfer.Status = status
		f.transferRepo.On("GetByIDForUpdate", ctx, f.companyID, transfer.ID).Return(transfer, nil)

		_, err := f.svc.Complete(ctx, f.companyID, transfer.ID)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
		f.itemRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestCancelRestoresSourceWithoutRelocating(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	item := trackedItem(f.companyID, f.fromID, 6, 2.0)
	transfer := pendingTransfer(f, item.ID, 4)

	f.transferRepo.On("GetByIDForUpdate", ctx, f.companyID, transfer.ID).Return(transfer, nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, 4).Return(10, nil)
	f.transferRepo.On("UpdateStatus", ctx, f.companyID, transfer.ID, models.TransferStatusCancelled).Return(nil)

	got, err := f.svc.Cancel(ctx, f.companyID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, got.Status)
	f.itemRepo.AssertNotCalled(t, "UpdateLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelRequiresPending(t *testing.T) {
	f := newTransferFixture()
	ctx := context.Background()

	transfer := pendingTransfer(f, uuid.New(), 4)
	transfer.Status = models.TransferStatusCompleted
	f.transferRepo.On("GetByIDForUpdate", ctx, f.companyID, transfer.ID).Return(transfer, nil)

	_, err := f.svc.Cancel(ctx, f.companyID, transfer.ID)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
}
