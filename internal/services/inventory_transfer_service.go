package services

import (
	"context"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryTransferService moves stock between locations. A pending transfer
// holds its quantity out of both ends: creation deducts from the source,
// completion credits the destination, cancellation restores the source. Each
// of the three steps is one transaction, so total stock plus in-flight
// transfer quantity is conserved at every commit point.
type InventoryTransferService interface {
	Create(ctx context.Context, companyID, userID uuid.UUID, input *models.TransferCreate) (*models.InventoryTransfer, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error)
	List(ctx context.Context, companyID uuid.UUID, filter *models.TransferFilter) ([]*models.InventoryTransfer, error)
	Complete(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error)
	Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error)
}

type inventoryTransferService struct {
	transferRepo     repositories.InventoryTransferRepository
	locationRepo     repositories.LocationRepository
	inventoryService InventoryService
	txManager        repositories.TransactionManager
}

func NewInventoryTransferService(transferRepo repositories.InventoryTransferRepository, locationRepo repositories.LocationRepository, inventoryService InventoryService, txManager repositories.TransactionManager) InventoryTransferService {
	return &inventoryTransferService{
		transferRepo:     transferRepo,
		locationRepo:     locationRepo,
		inventoryService: inventoryService,
		txManager:        txManager,
	}
}

func (s *inventoryTransferService) Create(ctx context.Context, companyID, userID uuid.UUID, input *models.TransferCreate) (*models.InventoryTransfer, error) {
	if input.FromLocationID == input.ToLocationID {
		return nil, common.NewValidation("source and destination locations must differ")
	}
	if input.Quantity <= 0 {
		return nil, common.NewValidation("transfer quantity must be positive")
	}
	if _, err := s.locationRepo.GetByID(ctx, companyID, input.FromLocationID); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.GetByID(ctx, companyID, input.ToLocationID); err != nil {
		return nil, err
	}

	transfer := &models.InventoryTransfer{
		ID:              uuid.New(),
		CompanyID:       companyID,
		FromLocationID:  input.FromLocationID,
		ToLocationID:    input.ToLocationID,
		InventoryItemID: input.InventoryItemID,
		Quantity:        input.Quantity,
		Status:          models.TransferStatusPending,
		Notes:           input.Notes,
		TransferredBy:   userID,
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		invSvc := s.inventoryService.WithTx(tx)

		// Deduct first under the row lock, then verify; the rollback undoes
		// the deduction when a check fails.
		item, err := invSvc.AdjustQuantity(ctx, companyID, input.InventoryItemID, -input.Quantity)
		if err != nil {
			return err
		}
		if item.LocationID == nil || *item.LocationID != input.FromLocationID {
			return common.NewPreconditionFailed("item is not at the source location")
		}
		if item.TrackQuantity && item.Quantity < 0 {
			return common.NewPreconditionFailed("insufficient quantity at source location")
		}

		return s.transferRepo.WithTx(tx).Create(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *inventoryTransferService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	return s.transferRepo.GetByID(ctx, companyID, id)
}

func (s *inventoryTransferService) List(ctx context.Context, companyID uuid.UUID, filter *models.TransferFilter) ([]*models.InventoryTransfer, error) {
	return s.transferRepo.List(ctx, companyID, filter)
}

// Complete moves the item to the destination and restores the quantity held
// by the transfer.
func (s *inventoryTransferService) Complete(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	var completed *models.InventoryTransfer
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		transferRepo := s.transferRepo.WithTx(tx)
		invSvc := s.inventoryService.WithTx(tx)

		transfer, err := transferRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferStatusPending {
			return common.NewInvalidStateTransition("inventory transfer", transfer.Status, models.TransferStatusCompleted)
		}

		if _, err := invSvc.Relocate(ctx, companyID, transfer.InventoryItemID, transfer.ToLocationID); err != nil {
			return err
		}
		if _, err := invSvc.AdjustQuantity(ctx, companyID, transfer.InventoryItemID, transfer.Quantity); err != nil {
			return err
		}
		if err := transferRepo.UpdateStatus(ctx, companyID, id, models.TransferStatusCompleted); err != nil {
			return err
		}

		transfer.Status = models.TransferStatusCompleted
		completed = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// Cancel returns the held quantity to the source. The item never moved, so
// restoring the quantity is the entire reversal.
func (s *inventoryTransferService) Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.InventoryTransfer, error) {
	var cancelled *models.InventoryTransfer
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		transferRepo := s.transferRepo.WithTx(tx)
		invSvc := s.inventoryService.WithTx(tx)

		transfer, err := transferRepo.GetByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if transfer.Status != models.TransferStatusPending {
			return common.NewInvalidStateTransition("inventory transfer", transfer.Status, models.TransferStatusCancelled)
		}

		if _, err := invSvc.AdjustQuantity(ctx, companyID, transfer.InventoryItemID, transfer.Quantity); err != nil {
			return err
		}
		if err := transferRepo.UpdateStatus(ctx, companyID, id, models.TransferStatusCancelled); err != nil {
			return err
		}

		transfer.Status = models.TransferStatusCancelled
		cancelled = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
