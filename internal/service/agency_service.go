package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/domain"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/dto"
	"github.com/matthews-crypto/agence-lycs-immo-sub002/internal/repository"
)

var (
	ErrAgencyAlreadyExists = errors.New("agency with this slug already exists")
	ErrAgencyNotFound      = errors.New("agency not found")
	ErrInvalidSlug         = errors.New("invalid slug format")
)

// AgencyService defines the interface for agency management operations
type AgencyService interface {
	// Create onboards a new agency
	Create(ctx context.Context, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error)
	// GetByID retrieves an agency by ID
	GetByID(ctx context.Context, id string) (*dto.AgencyResponse, error)
	// GetBySlug retrieves an agency by slug
	GetBySlug(ctx context.Context, slug string) (*dto.AgencyResponse, error)
	// ResolveAgency maps a URL slug to its agency record; the guard's tenant
	// resolver. A lookup error and an unknown slug surface identically.
	ResolveAgency(ctx context.Context, slug string) (*domain.Agency, error)
	// List retrieves agencies with pagination and filters
	List(ctx context.Context, query *dto.ListAgenciesQuery) (*dto.ListAgenciesResponse, error)
	// Update updates an agency
	Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest) (*dto.AgencyResponse, error)
	// Delete soft deletes an agency
	Delete(ctx context.Context, id string) error
}

// agencyService implements AgencyService
type agencyService struct {
	agencyRepo repository.AgencyRepository
}

// NewAgencyService creates a new AgencyService
func NewAgencyService(agencyRepo repository.AgencyRepository) AgencyService {
	return &agencyService{
		agencyRepo: agencyRepo,
	}
}

// Create onboards a new agency
func (s *agencyService) Create(ctx context.Context, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error) {
	// Validate slug format
	if valid, errMsg := req.ValidateSlug(); !valid {
		return nil, errors.New(errMsg)
	}

	// Check if an agency with this slug already exists
	exists, err := s.agencyRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAgencyAlreadyExists
	}

	now := time.Now()
	agency := &domain.Agency{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Slug:              req.Slug,
		OwnerID:           req.OwnerID,
		LogoURL:           req.LogoURL,
		PrimaryColor:      req.PrimaryColor,
		Settings:          req.Settings,
		IsActive:          true,
		HasImmoModule:     req.HasImmoModule,
		HasLocativeModule: req.HasLocativeModule,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if agency.Settings == nil {
		agency.Settings = make(map[string]interface{})
	}

	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, err
	}

	return s.toAgencyResponse(agency), nil
}

// GetByID retrieves an agency by ID
func (s *agencyService) GetByID(ctx context.Context, id string) (*dto.AgencyResponse, error) {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, ErrAgencyNotFound
	}
	return s.toAgencyResponse(agency), nil
}

// GetBySlug retrieves an agency by slug
func (s *agencyService) GetBySlug(ctx context.Context, slug string) (*dto.AgencyResponse, error) {
	agency, err := s.agencyRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, ErrAgencyNotFound
	}
	return s.toAgencyResponse(agency), nil
}

// ResolveAgency maps a slug to its agency record for the guard. Backend
// failures are folded into ErrAgencyNotFound: the caller redirects to the
// generic not-found page either way and no retry is attempted.
func (s *agencyService) ResolveAgency(ctx context.Context, slug string) (*domain.Agency, error) {
	agency, err := s.agencyRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, ErrAgencyNotFound
	}
	if agency == nil {
		return nil, ErrAgencyNotFound
	}
	return agency, nil
}

// List retrieves agencies with pagination and filters
func (s *agencyService) List(ctx context.Context, query *dto.ListAgenciesQuery) (*dto.ListAgenciesResponse, error) {
	query.SetDefaults()

	agencies, totalCount, err := s.agencyRepo.List(ctx, query.Page, query.Limit, query.IsActive, query.Search)
	if err != nil {
		return nil, err
	}

	agencyResponses := make([]dto.AgencyResponse, 0, len(agencies))
	for _, agency := range agencies {
		agencyResponses = append(agencyResponses, *s.toAgencyResponse(agency))
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(query.Limit)))

	return &dto.ListAgenciesResponse{
		Agencies:   agencyResponses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

// Update updates an agency
func (s *agencyService) Update(ctx context.Context, id string, req *dto.UpdateAgencyRequest) (*dto.AgencyResponse, error) {
	// Validate that at least one field is provided
	if valid, errMsg := req.Validate(); !valid {
		return nil, errors.New(errMsg)
	}

	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agency == nil {
		return nil, ErrAgencyNotFound
	}

	// Update fields if provided
	if req.Name != nil {
		agency.Name = *req.Name
	}
	if req.LogoURL != nil {
		agency.LogoURL = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		agency.PrimaryColor = *req.PrimaryColor
	}
	if req.Settings != nil {
		agency.Settings = *req.Settings
	}
	if req.IsActive != nil {
		agency.IsActive = *req.IsActive
	}
	if req.HasImmoModule != nil {
		agency.HasImmoModule = *req.HasImmoModule
	}
	if req.HasLocativeModule != nil {
		agency.HasLocativeModule = *req.HasLocativeModule
	}

	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}

	return s.toAgencyResponse(agency), nil
}

// Delete soft deletes an agency
func (s *agencyService) Delete(ctx context.Context, id string) error {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if agency == nil {
		return ErrAgencyNotFound
	}

	return s.agencyRepo.SoftDelete(ctx, id)
}

// toAgencyResponse converts domain.Agency to dto.AgencyResponse
func (s *agencyService) toAgencyResponse(agency *domain.Agency) *dto.AgencyResponse {
	return &dto.AgencyResponse{
		ID:                agency.ID,
		Name:              agency.Name,
		Slug:              agency.Slug,
		OwnerID:           agency.OwnerID,
		LogoURL:           agency.LogoURL,
		PrimaryColor:      agency.PrimaryColor,
		Settings:          agency.Settings,
		IsActive:          agency.IsActive,
		HasImmoModule:     agency.HasImmoModule,
		HasLocativeModule: agency.HasLocativeModule,
		CreatedAt:         agency.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         agency.UpdatedAt.Format(time.RFC3339),
	}
}
