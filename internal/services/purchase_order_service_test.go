package services

import (
	"context"
	"math"
	"strings"
	"testing"

	"fixhub/internal/common"
	"fixhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type poFixture struct {
	poRepo    *mockPurchaseOrderRepo
	itemRepo  *mockItemRepo
	svc       PurchaseOrderService
	companyID uuid.UUID
}

func newPOFixture() *poFixture {
	poRepo := &mockPurchaseOrderRepo{}
	itemRepo := &mockItemRepo{}
	invSvc := NewInventoryService(itemRepo, &mockLocationRepo{}, &stubCache{})
	return &poFixture{
		poRepo:    poRepo,
		itemRepo:  itemRepo,
		svc:       NewPurchaseOrderService(poRepo, invSvc, stubTxManager{}),
		companyID: uuid.New(),
	}
}

func orderedPO(companyID uuid.UUID, items ...*models.PurchaseOrderItem) *models.PurchaseOrder {
	po := &models.PurchaseOrder{
		ID:        uuid.New(),
		CompanyID: companyID,
		PONumber:  "PO-TEST0001",
		Supplier:  "Parts Direct",
		Status:    models.PurchaseOrderStatusOrdered,
		Items:     items,
	}
	for _, item := range items {
		item.PurchaseOrderID = po.ID
		item.Subtotal = float64(item.QuantityOrdered) * item.UnitCost
		po.TotalAmount += item.Subtotal
	}
	return po
}

func TestCreatePurchaseOrderComputesTotals(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	itemA := trackedItem(f.companyID, uuid.New(), 3, 2.0)
	itemB := trackedItem(f.companyID, uuid.New(), 0, 4.0)
	f.itemRepo.On("GetByID", ctx, f.companyID, itemA.ID).Return(itemA, nil)
	f.itemRepo.On("GetByID", ctx, f.companyID, itemB.ID).Return(itemB, nil)
	f.poRepo.On("ExistsPONumber", ctx, f.companyID, mock.AnythingOfType("string")).Return(false, nil)
	f.poRepo.On("Create", ctx, mock.Anything).Return(nil)

	po, err := f.svc.Create(ctx, f.companyID, &models.PurchaseOrder{
		Supplier: "Parts Direct",
		Items: []*models.PurchaseOrderItem{
			{InventoryItemID: itemA.ID, QuantityOrdered: 10, UnitCost: 3.5},
			{InventoryItemID: itemB.ID, QuantityOrdered: 2, UnitCost: 12.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseOrderStatusDraft, po.Status)
	assert.True(t, strings.HasPrefix(po.PONumber, "PO-"))
	assert.InDelta(t, 59.0, po.TotalAmount, 1e-9)
	for _, item := range po.Items {
		assert.Equal(t, 0, item.QuantityReceived)
		assert.Equal(t, po.ID, item.PurchaseOrderID)
	}
}

func TestCreatePurchaseOrderValidatesItems(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		po   *models.PurchaseOrder
	}{
		{"no supplier", &models.PurchaseOrder{Items: []*models.PurchaseOrderItem{{InventoryItemID: uuid.New(), QuantityOrdered: 1}}}},
		{"no items", &models.PurchaseOrder{Supplier: "Parts Direct"}},
		{"zero quantity", &models.PurchaseOrder{Supplier: "Parts Direct", Items: []*models.PurchaseOrderItem{{InventoryItemID: uuid.New(), QuantityOrdered: 0}}}},
		{"negative cost", &models.PurchaseOrder{Supplier: "Parts Direct", Items: []*models.PurchaseOrderItem{{InventoryItemID: uuid.New(), QuantityOrdered: 1, UnitCost: -2}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.companyID, tc.po)
			appErr, ok := common.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, common.CodeValidation, appErr.Code)
		})
	}
}

func TestMarkOrderedOnlyFromDraft(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	po := orderedPO(f.companyID)
	po.Status = models.PurchaseOrderStatusDraft
	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)
	f.poRepo.On("UpdateStatus", ctx, po).Return(nil)

	got, err := f.svc.MarkOrdered(ctx, f.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseOrderStatusOrdered, got.Status)

	// A second attempt finds the order already past draft.
	_, err = f.svc.MarkOrdered(ctx, f.companyID, po.ID)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
}

func TestReceiveAveragesCostBeforeAdjustingQuantity(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	// Stock on hand: 10 units at 2.00. Receiving 5 at 4.00 must average to
	// 40/15 over the pre-delivery quantity, then bump quantity to 15.
	item := trackedItem(f.companyID, uuid.New(), 10, 2.0)
	line := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: item.ID, QuantityOrdered: 5, UnitCost: 4.0}
	po := orderedPO(f.companyID, line)

	var callOrder []string
	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)
	f.poRepo.On("UpdateItemReceipt", ctx, line.ID, 5, 20.0).Return(nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("UpdateCost", ctx, f.companyID, item.ID, mock.MatchedBy(func(cost float64) bool {
		return math.Abs(cost-40.0/15.0) < 1e-9
	})).Run(func(args mock.Arguments) {
		callOrder = append(callOrder, "cost")
	}).Return(nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, 5).Run(func(args mock.Arguments) {
		callOrder = append(callOrder, "quantity")
	}).Return(15, nil)
	f.poRepo.On("UpdateStatus", ctx, po).Return(nil)

	got, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
		{InventoryItemID: item.ID, QuantityReceived: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cost", "quantity"}, callOrder)
	assert.Equal(t, models.PurchaseOrderStatusReceived, got.Status)
	require.NotNil(t, got.ReceivedDate)
	assert.InDelta(t, 20.0, got.TotalAmount, 1e-9)
	f.poRepo.AssertExpectations(t)
	f.itemRepo.AssertExpectations(t)
}

func TestReceiveRejectsOverReceipt(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	item := trackedItem(f.companyID, uuid.New(), 0, 2.0)
	line := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: item.ID, QuantityOrdered: 5, UnitCost: 4.0}
	po := orderedPO(f.companyID, line)
	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)

	_, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
		{InventoryItemID: item.ID, QuantityReceived: 6},
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	f.itemRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReceiveRejectsDuplicateSubmissionLines(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	item := trackedItem(f.companyID, uuid.New(), 10, 2.0)
	line := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: item.ID, QuantityOrdered: 5, UnitCost: 4.0}
	po := orderedPO(f.companyID, line)

	// Each duplicate would pass the bounds check on its own and adjust stock
	// again; the submission must be rejected before any mutation.
	_, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
		{InventoryItemID: item.ID, QuantityReceived: 5},
		{InventoryItemID: item.ID, QuantityReceived: 3},
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	f.itemRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.itemRepo.AssertNotCalled(t, "UpdateCost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.poRepo.AssertNotCalled(t, "UpdateItemReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.poRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	assert.Equal(t, 0, line.QuantityReceived)
}

func TestReceiveRejectsUnknownItem(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	line := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: uuid.New(), QuantityOrdered: 5, UnitCost: 4.0}
	po := orderedPO(f.companyID, line)
	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)

	_, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
		{InventoryItemID: uuid.New(), QuantityReceived: 1},
	})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
}

func TestReceiveRequiresOrderedStatus(t *testing.T) {
	for _, status := range []string{
		models.PurchaseOrderStatusDraft,
		models.PurchaseOrderStatusReceived,
		models.PurchaseOrderStatusCancelled,
	} {
		f := newPOFixture()
		ctx := context.Background()

		line := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: uuid.New(), QuantityOrdered: 5, UnitCost: 4.0}
		po := orderedPO(f.companyID, line)
		po.Status = status
		f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)

		_, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
			{InventoryItemID: line.InventoryItemID, QuantityReceived: 1},
		})
		appErr, ok := common.AsAppError(err)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
	}
}

func TestReceiveZeroesOmittedLines(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	itemA := trackedItem(f.companyID, uuid.New(), 0, 1.0)
	itemB := trackedItem(f.companyID, uuid.New(), 0, 1.0)
	lineA := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: itemA.ID, QuantityOrdered: 3, UnitCost: 2.0}
	lineB := &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: itemB.ID, QuantityOrdered: 4, UnitCost: 5.0}
	po := orderedPO(f.companyID, lineA, lineB)

	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)
	f.poRepo.On("UpdateItemReceipt", ctx, lineA.ID, 3, 6.0).Return(nil)
	f.poRepo.On("UpdateItemReceipt", ctx, lineB.ID, 0, 0.0).Return(nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, itemA.ID).Return(itemA, nil)
	f.itemRepo.On("UpdateCost", ctx, f.companyID, itemA.ID, 2.0).Return(nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, itemA.ID, 3).Return(3, nil)
	f.poRepo.On("UpdateStatus", ctx, po).Return(nil)

	got, err := f.svc.Receive(ctx, f.companyID, po.ID, []models.ReceivedItem{
		{InventoryItemID: itemA.ID, QuantityReceived: 3},
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.0, got.TotalAmount, 1e-9)
	assert.Equal(t, 0, lineB.QuantityReceived)
	f.itemRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, itemB.ID, mock.Anything)
	f.poRepo.AssertExpectations(t)
}

func TestCancelRejectsTerminalStatuses(t *testing.T) {
	for _, status := range []string{models.PurchaseOrderStatusReceived, models.PurchaseOrderStatusCancelled} {
		f := newPOFixture()
		ctx := context.Background()

		po := orderedPO(f.companyID)
		po.Status = status
		f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)

		_, err := f.svc.Cancel(ctx, f.companyID, po.ID)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
	}
}

func TestCancelNeverTouchesStock(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	po := orderedPO(f.companyID, &models.PurchaseOrderItem{ID: uuid.New(), InventoryItemID: uuid.New(), QuantityOrdered: 5, UnitCost: 4.0})
	f.poRepo.On("GetByIDForUpdate", ctx, f.companyID, po.ID).Return(po, nil)
	f.poRepo.On("UpdateStatus", ctx, po).Return(nil)

	got, err := f.svc.Cancel(ctx, f.companyID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseOrderStatusCancelled, got.Status)
	f.itemRepo.AssertNotCalled(t, "AdjustQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.itemRepo.AssertNotCalled(t, "UpdateCost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteOnlyDraft(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()

	po := orderedPO(f.companyID)
	f.poRepo.On("GetByID", ctx, f.companyID, po.ID).Return(po, nil)

	err := f.svc.Delete(ctx, f.companyID, po.ID)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	f.poRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}
