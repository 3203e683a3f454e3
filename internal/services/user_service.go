package services

import (
	"context"
	"errors"
	"log"
	"time"

	"fixhub/internal/caching"
	"fixhub/internal/common"
	"fixhub/internal/models"
	"fixhub/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type UserService interface {
	Register(ctx context.Context, companyID uuid.UUID, user *models.User, password, roleName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userService struct {
	userRepo  repositories.UserRepository
	roleRepo  repositories.RoleRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
}

func NewUserService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, cacheSvc caching.CacheService, jwtSecret string) UserService {
	return &userService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *userService) Register(ctx context.Context, companyID uuid.UUID, user *models.User, password, roleName string) (*models.User, error) {
	if user.Email == "" {
		return nil, common.NewValidation("email is required")
	}
	if len(password) < 8 {
		return nil, common.NewValidation("password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return nil, common.NewValidation("email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.ID = uuid.New()
	user.CompanyID = companyID
	user.PasswordHash = string(hash)
	user.IsActive = true
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if roleName != "" {
		role, err := s.roleRepo.GetByName(ctx, companyID, roleName)
		if err != nil {
			return nil, err
		}
		if err := s.roleRepo.AssignToUser(ctx, user.ID, role.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	userID, err := s.cacheSvc.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByIDUnscoped(ctx, userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Rotate: the old token dies with the new issue.
	if err := s.cacheSvc.DeleteRefreshToken(ctx, refreshToken); err != nil {
		log.Printf("Failed to delete rotated refresh token: %v", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) issueTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	claims := common.JWTCustomClaims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshToken := random.String(64, random.Alphanumeric)
	if err := s.cacheSvc.SetRefreshToken(ctx, refreshToken, user.ID, refreshTokenTTL); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	}, nil
}

func (s *userService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, companyID, id)
}

func (s *userService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, companyID, limit, offset)
}
