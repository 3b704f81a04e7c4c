package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/repository"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/pkg/logger"
)

var (
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
)

// ProvisioningService onboards an agency owner: one call creates the identity
// and its agency. The two inserts are not transactional across stores, so a
// failure at any later step compensates by deleting whatever was created
// before it, and the original error is returned to the caller.
type ProvisioningService interface {
	CreateAgencyUser(ctx context.Context, req *dto.CreateAgencyUserRequest) (*dto.CreateAgencyUserResponse, error)
}

type provisioningService struct {
	userRepo repository.UserRepository
	agencies AgencyService
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(userRepo repository.UserRepository, agencies AgencyService) ProvisioningService {
	return &provisioningService{
		userRepo: userRepo,
		agencies: agencies,
	}
}

// CreateAgencyUser provisions an AGENCY_OWNER identity plus its agency.
// The fresh owner signs in with a provisional password and must change it.
func (s *provisioningService) CreateAgencyUser(ctx context.Context, req *dto.CreateAgencyUserRequest) (*dto.CreateAgencyUserResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:                 uuid.New().String(),
		Email:              req.Email,
		PasswordHash:       string(hash),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		Role:               domain.RoleAgencyOwner,
		MustChangePassword: true,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	agencyResp, err := s.agencies.Create(ctx, &dto.CreateAgencyRequest{
		Name:              req.AgencyName,
		Slug:              req.AgencySlug,
		OwnerID:           user.ID,
		LogoURL:           req.LogoURL,
		PrimaryColor:      req.PrimaryColor,
		HasImmoModule:     req.HasImmoModule,
		HasLocativeModule: req.HasLocativeModule,
	})
	if err != nil {
		// Compensate: the identity must not survive without its agency.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			logger.Error("provisioning compensation failed, orphan identity left behind",
				zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, err
	}

	user.AgencyID = agencyResp.ID
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The pair is unusable without the owner binding; unwind both inserts.
		if delErr := s.agencies.Delete(ctx, agencyResp.ID); delErr != nil {
			logger.Error("provisioning compensation failed, orphan agency left behind",
				zap.String("agency_id", agencyResp.ID), zap.Error(delErr))
		}
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			logger.Error("provisioning compensation failed, orphan identity left behind",
				zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, err
	}

	return &dto.CreateAgencyUserResponse{
		User:   toUserResponse(user),
		Agency: agencyResp,
	}, nil
}
