package services

import (
	"context"
	"testing"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTicketRepo struct {
	mock.Mock
}

func (m *mockTicketRepo) WithTx(tx pgx.Tx) repositories.TicketRepository {
	return m
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *models.RepairTicket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.RepairTicket, error) {
	args := m.Called(ctx, companyID, id)
	if ticket, ok := args.Get(0).(*models.RepairTicket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) Update(ctx context.Context, ticket *models.RepairTicket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketRepo) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	return m.Called(ctx, companyID, id, status).Error(0)
}

func (m *mockTicketRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockTicketRepo) List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.RepairTicket, error) {
	args := m.Called(ctx, companyID, status, limit, offset)
	if tickets, ok := args.Get(0).([]*models.RepairTicket); ok {
		return tickets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketRepo) AddPart(ctx context.Context, part *models.TicketPart) error {
	return m.Called(ctx, part).Error(0)
}

func (m *mockTicketRepo) ListParts(ctx context.Context, ticketID uuid.UUID) ([]*models.TicketPart, error) {
	args := m.Called(ctx, ticketID)
	if parts, ok := args.Get(0).([]*models.TicketPart); ok {
		return parts, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, companyID, id)
	if customer, ok := args.Get(0).(*models.Customer); ok {
		return customer, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockCustomerRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if customers, ok := args.Get(0).([]*models.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) Search(ctx context.Context, companyID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, companyID, query, limit, offset)
	if customers, ok := args.Get(0).([]*models.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

type ticketFixture struct {
	ticketRepo *mockTicketRepo
	itemRepo   *mockItemRepo
	svc        TicketService
	companyID  uuid.UUID
}

func newTicketFixture() *ticketFixture {
	ticketRepo := &mockTicketRepo{}
	itemRepo := &mockItemRepo{}
	invSvc := NewInventoryService(itemRepo, &mockLocationRepo{}, &stubCache{})
	return &ticketFixture{
		ticketRepo: ticketRepo,
		itemRepo:   itemRepo,
		svc:        NewTicketService(ticketRepo, &mockCustomerRepo{}, &mockLocationRepo{}, invSvc, stubTxManager{}),
		companyID:  uuid.New(),
	}
}

func openTicket(companyID uuid.UUID) *models.RepairTicket {
	return &models.RepairTicket{
		ID:               uuid.New(),
		CompanyID:        companyID,
		LocationID:       uuid.New(),
		CustomerID:       uuid.New(),
		TicketNumber:     "TKT-TEST0001",
		DeviceType:       "phone",
		IssueDescription: "cracked screen",
		Status:           models.TicketStatusOpen,
	}
}

func TestUsePartDeductsStockAndRecordsPrice(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()

	ticket := openTicket(f.companyID)
	ticket.Status = models.TicketStatusInProgress
	item := trackedItem(f.companyID, uuid.New(), 5, 3.0)

	f.ticketRepo.On("GetByID", ctx, f.companyID, ticket.ID).Return(ticket, nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, -2).Return(3, nil)
	f.ticketRepo.On("AddPart", ctx, mock.Anything).Return(nil)

	part, err := f.svc.UsePart(ctx, f.companyID, ticket.ID, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, part.Quantity)
	assert.InDelta(t, item.SellingPrice, part.UnitPrice, 1e-9)
	f.ticketRepo.AssertExpectations(t)
}

func TestUsePartFailsOnInsufficientStock(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()

	ticket := openTicket(f.companyID)
	item := trackedItem(f.companyID, uuid.New(), 1, 3.0)

	f.ticketRepo.On("GetByID", ctx, f.companyID, ticket.ID).Return(ticket, nil)
	f.itemRepo.On("GetByIDForUpdate", ctx, f.companyID, item.ID).Return(item, nil)
	f.itemRepo.On("AdjustQuantity", ctx, f.companyID, item.ID, -2).Return(-1, nil)

	_, err := f.svc.UsePart(ctx, f.companyID, ticket.ID, item.ID, 2)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	f.ticketRepo.AssertNotCalled(t, "AddPart", mock.Anything, mock.Anything)
}

func TestUsePartRejectsTerminalTickets(t *testing.T) {
	for _, status := range []string{models.TicketStatusClosed, models.TicketStatusCancelled} {
		f := newTicketFixture()
		ctx := context.Background()

		ticket := openTicket(f.companyID)
		ticket.Status = status
		f.ticketRepo.On("GetByID", ctx, f.companyID, ticket.ID).Return(ticket, nil)

		_, err := f.svc.UsePart(ctx, f.companyID, ticket.ID, uuid.New(), 1)
		appErr, ok := common.AsAppError(err)
		require.True(t, ok, "status %s", status)
		assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	}
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{models.TicketStatusOpen, models.TicketStatusInProgress, true},
		{models.TicketStatusInProgress, models.TicketStatusReady, true},
		{models.TicketStatusReady, models.TicketStatusClosed, true},
		{models.TicketStatusOpen, models.TicketStatusClosed, false},
		{models.TicketStatusClosed, models.TicketStatusOpen, false},
		{models.TicketStatusCancelled, models.TicketStatusInProgress, false},
	}
	for _, tc := range cases {
		f := newTicketFixture()
		ctx := context.Background()

		ticket := openTicket(f.companyID)
		ticket.Status = tc.from
		f.ticketRepo.On("GetByID", ctx, f.companyID, ticket.ID).Return(ticket, nil)
		if tc.allowed {
			f.ticketRepo.On("UpdateStatus", ctx, f.companyID, ticket.ID, tc.to).Return(nil)
		}

		got, err := f.svc.UpdateStatus(ctx, f.companyID, ticket.ID, tc.to)
		if tc.allowed {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, got.Status)
		} else {
			appErr, ok := common.AsAppError(err)
			require.True(t, ok, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, common.CodeInvalidStateTransition, appErr.Code)
		}
	}
}

func TestDeleteTicketOnlyWhenTerminal(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()

	ticket := openTicket(f.companyID)
	f.ticketRepo.On("GetByID", ctx, f.companyID, ticket.ID).Return(ticket, nil)

	err := f.svc.Delete(ctx, f.companyID, ticket.ID)
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodePreconditionFailed, appErr.Code)
	f.ticketRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything, mock.Anything)
}
