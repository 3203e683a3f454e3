package services

import (
	"context"

	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/google/uuid"
)

type CompanyService interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, company *models.Company) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
}

type companyService struct {
	companyRepo repositories.CompanyRepository
	rbacService RBACService
}

func NewCompanyService(companyRepo repositories.CompanyRepository, rbacService RBACService) CompanyService {
	return &companyService{companyRepo: companyRepo, rbacService: rbacService}
}

// Create registers a tenant and seeds its default roles.
func (s *companyService) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if company.Name == "" {
		return nil, common.NewValidation("company name is required")
	}
	company.ID = uuid.New()
	company.IsActive = true
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	if err := s.rbacService.SetupDefaultRoles(ctx, company.ID); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, company *models.Company) (*models.Company, error) {
	existing, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.Name != "" {
		existing.Name = company.Name
	}
	existing.Email = company.Email
	existing.Phone = company.Phone
	existing.Address = company.Address
	existing.IsActive = company.IsActive
	if err := s.companyRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *companyService) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	return s.companyRepo.List(ctx, limit, offset)
}
