package services

import (
	"context"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, companyID uuid.UUID, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, companyID, id uuid.UUID, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	Search(ctx context.Context, companyID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) Create(ctx context.Context, companyID uuid.UUID, customer *models.Customer) (*models.Customer, error) {
	if customer.FirstName == "" && customer.LastName == "" {
		return nil, common.NewValidation("customer name is required")
	}
	customer.ID = uuid.New()
	customer.CompanyID = companyID
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, companyID, id)
}

func (s *customerService) Update(ctx context.Context, companyID, id uuid.UUID, customer *models.Customer) (*models.Customer, error) {
	existing, err := s.customerRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	existing.FirstName = customer.FirstName
	existing.LastName = customer.LastName
	existing.Email = customer.Email
	existing.Phone = customer.Phone
	existing.Address = customer.Address
	existing.Notes = customer.Notes
	if err := s.customerRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *customerService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return s.customerRepo.SoftDelete(ctx, companyID, id)
}

func (s *customerService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx, companyID, limit, offset)
}

func (s *customerService) Search(ctx context.Context, companyID uuid.UUID, query string, limit, offset int) ([]*models.Customer, error) {
	return s.customerRepo.Search(ctx, companyID, query, limit, offset)
}
