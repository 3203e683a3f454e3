package services

import (
	"context"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
)

type LocationService interface {
	Create(ctx context.Context, companyID uuid.UUID, location *models.Location) (*models.Location, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, companyID, id uuid.UUID, location *models.Location) (*models.Location, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Location, error)
}

type locationService struct {
	locationRepo repositories.LocationRepository
	itemRepo     repositories.InventoryItemRepository
}

func NewLocationService(locationRepo repositories.LocationRepository, itemRepo repositories.InventoryItemRepository) LocationService {
	return &locationService{locationRepo: locationRepo, itemRepo: itemRepo}
}

func (s *locationService) Create(ctx context.Context, companyID uuid.UUID, location *models.Location) (*models.Location, error) {
	if location.Name == "" {
		return nil, common.NewValidation("location name is required")
	}
	location.ID = uuid.New()
	location.CompanyID = companyID
	location.IsActive = true
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *locationService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Location, error) {
	return s.locationRepo.GetByID(ctx, companyID, id)
}

func (s *locationService) Update(ctx context.Context, companyID, id uuid.UUID, location *models.Location) (*models.Location, error) {
	if location.Name == "" {
		return nil, common.NewValidation("location name is required")
	}
	existing, err := s.locationRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	existing.Name = location.Name
	existing.Address = location.Address
	existing.Phone = location.Phone
	existing.IsActive = location.IsActive
	if err := s.locationRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete refuses while stock is still assigned to the location.
func (s *locationService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	items, err := s.itemRepo.Search(ctx, companyID, &models.InventorySearchFilter{LocationID: &id, Limit: 1})
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return common.NewPreconditionFailed("location still holds inventory items")
	}
	return s.locationRepo.Delete(ctx, companyID, id)
}

func (s *locationService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Location, error) {
	return s.locationRepo.List(ctx, companyID, limit, offset)
}
