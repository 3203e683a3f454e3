package services

import (
	"context"
	"fmt"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

// ticketTransitions lists the reachable next states per status. Closed and
// cancelled are terminal.
var ticketTransitions = map[string][]string{
	models.TicketStatusOpen:          {models.TicketStatusInProgress, models.TicketStatusAwaitingParts, models.TicketStatusCancelled},
	models.TicketStatusInProgress:    {models.TicketStatusAwaitingParts, models.TicketStatusReady, models.TicketStatusCancelled},
	models.TicketStatusAwaitingParts: {models.TicketStatusInProgress, models.TicketStatusCancelled},
	models.TicketStatusReady:         {models.TicketStatusClosed, models.TicketStatusCancelled},
}

func ticketTransitionAllowed(from, to string) bool {
	for _, allowed := range ticketTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type TicketService interface {
	Create(ctx context.Context, companyID uuid.UUID, ticket *models.RepairTicket) (*models.RepairTicket, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.RepairTicket, error)
	Update(ctx context.Context, companyID, id uuid.UUID, ticket *models.RepairTicket) (*models.RepairTicket, error)
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) (*models.RepairTicket, error)
	UsePart(ctx context.Context, companyID, ticketID, inventoryItemID uuid.UUID, quantity int) (*models.TicketPart, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.RepairTicket, error)
}

type ticketService struct {
	ticketRepo       repositories.TicketRepository
	customerRepo     repositories.CustomerRepository
	locationRepo     repositories.LocationRepository
	inventoryService InventoryService
	txManager        repositories.TransactionManager
}

func NewTicketService(ticketRepo repositories.TicketRepository, customerRepo repositories.CustomerRepository, locationRepo repositories.LocationRepository, inventoryService InventoryService, txManager repositories.TransactionManager) TicketService {
	return &ticketService{
		ticketRepo:       ticketRepo,
		customerRepo:     customerRepo,
		locationRepo:     locationRepo,
		inventoryService: inventoryService,
		txManager:        txManager,
	}
}

func (s *ticketService) Create(ctx context.Context, companyID uuid.UUID, ticket *models.RepairTicket) (*models.RepairTicket, error) {
	if ticket.DeviceType == "" {
		return nil, common.NewValidation("device type is required")
	}
	if ticket.IssueDescription == "" {
		return nil, common.NewValidation("issue description is required")
	}
	if _, err := s.customerRepo.GetByID(ctx, companyID, ticket.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.GetByID(ctx, companyID, ticket.LocationID); err != nil {
		return nil, err
	}

	ticket.ID = uuid.New()
	ticket.CompanyID = companyID
	ticket.TicketNumber = fmt.Sprintf("TKT-%s", random.String(8, random.Uppercase, random.Numeric))
	ticket.Status = models.TicketStatusOpen
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.RepairTicket, error) {
	return s.ticketRepo.GetByID(ctx, companyID, id)
}

func (s *ticketService) Update(ctx context.Context, companyID, id uuid.UUID, ticket *models.RepairTicket) (*models.RepairTicket, error) {
	existing, err := s.ticketRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.TicketStatusClosed || existing.Status == models.TicketStatusCancelled {
		return nil, common.NewPreconditionFailed("closed or cancelled tickets cannot be edited")
	}
	if ticket.LaborCost < 0 {
		return nil, common.NewValidation("labor cost must be non-negative")
	}

	existing.AssignedTo = ticket.AssignedTo
	existing.DeviceType = ticket.DeviceType
	existing.DeviceBrand = ticket.DeviceBrand
	existing.DeviceModel = ticket.DeviceModel
	existing.SerialNumber = ticket.SerialNumber
	existing.IssueDescription = ticket.IssueDescription
	existing.LaborCost = ticket.LaborCost
	if err := s.ticketRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ticketService) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) (*models.RepairTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !ticketTransitionAllowed(ticket.Status, status) {
		return nil, common.NewInvalidStateTransition("repair ticket", ticket.Status, status)
	}
	if err := s.ticketRepo.UpdateStatus(ctx, companyID, id, status); err != nil {
		return nil, err
	}
	ticket.Status = status
	return ticket, nil
}

// UsePart consumes stock for a repair: the deduction and the part record
// commit together. Price defaults to the item's selling price at the time of
// use.
func (s *ticketService) UsePart(ctx context.Context, companyID, ticketID, inventoryItemID uuid.UUID, quantity int) (*models.TicketPart, error) {
	if quantity <= 0 {
		return nil, common.NewValidation("part quantity must be positive")
	}

	ticket, err := s.ticketRepo.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketStatusClosed || ticket.Status == models.TicketStatusCancelled {
		return nil, common.NewPreconditionFailed("closed or cancelled tickets cannot consume parts")
	}

	var part *models.TicketPart
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invSvc := s.inventoryService.WithTx(tx)

		item, err := invSvc.AdjustQuantity(ctx, companyID, inventoryItemID, -quantity)
		if err != nil {
			return err
		}
		if item.TrackQuantity && item.Quantity < 0 {
			return common.NewPreconditionFailed("insufficient quantity for part")
		}

		part = &models.TicketPart{
			ID:              uuid.New(),
			TicketID:        ticketID,
			InventoryItemID: inventoryItemID,
			Quantity:        quantity,
			UnitPrice:       item.SellingPrice,
		}
		return s.ticketRepo.WithTx(tx).AddPart(ctx, part)
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

func (s *ticketService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	ticket, err := s.ticketRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if ticket.Status != models.TicketStatusCancelled && ticket.Status != models.TicketStatusClosed {
		return common.NewPreconditionFailed("only closed or cancelled tickets can be deleted")
	}
	return s.ticketRepo.SoftDelete(ctx, companyID, id)
}

func (s *ticketService) List(ctx context.Context, companyID uuid.UUID, status *string, limit, offset int) ([]*models.RepairTicket, error) {
	return s.ticketRepo.List(ctx, companyID, status, limit, offset)
}
