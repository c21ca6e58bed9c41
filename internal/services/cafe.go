package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CafeService handles cafe-catalog business logic
type CafeService struct {
	cafes    repository.CafeRepository
	stops    repository.StopRepository
	hub      *EventsHub
	validate *validator.Validate
}

// NewCafeService creates a new cafe service
func NewCafeService(cafes repository.CafeRepository, stops repository.StopRepository, hub *EventsHub) *CafeService {
	return &CafeService{
		cafes:    cafes,
		stops:    stops,
		hub:      hub,
		validate: validator.New(),
	}
}

// CreateCafeRequest carries the fields of a new cafe. CreatedBy comes from
// the device identifier, not the body.
type CreateCafeRequest struct {
	Name         string                `json:"name" validate:"required"`
	Location     models.CafeLocation   `json:"location" validate:"required"`
	BestHours    []models.TimeWindow   `json:"bestHours"`
	Food         []string              `json:"food"`
	Price        models.PriceTier      `json:"price" validate:"required,oneof=$ $$ $$$"`
	IdealWork    []models.WorkActivity `json:"idealWork" validate:"dive,oneof=reading programming sketching work"`
	Amenities    []models.Amenity      `json:"amenities" validate:"dive,oneof=water wifi power desk bathroom"`
	OpeningHours models.OpeningHours   `json:"openingHours"`
}

// CreateCafe inserts a cafe unconditionally after enforcing the
// cross-entity invariant: the referenced stop must resolve and its type
// must equal the denormalized location type. Violations fail with
// ErrValidation and insert nothing.
func (s *CafeService) CreateCafe(ctx context.Context, createdBy string, req CreateCafeRequest) (*models.Cafe, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !req.Location.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown location type %q", ErrValidation, req.Location.Type)
	}

	stop, err := s.stops.GetByID(ctx, req.Location.StopID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stop: %w", err)
	}
	if stop == nil {
		return nil, fmt.Errorf("%w: stop %s does not exist", ErrValidation, req.Location.StopID)
	}
	if stop.Type != req.Location.Type {
		return nil, fmt.Errorf("%w: location type %q does not match stop type %q",
			ErrValidation, req.Location.Type, stop.Type)
	}

	cafe := &models.Cafe{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Location:     req.Location,
		BestHours:    req.BestHours,
		Food:         req.Food,
		Price:        req.Price,
		IdealWork:    req.IdealWork,
		Amenities:    req.Amenities,
		OpeningHours: req.OpeningHours,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}
	if cafe.BestHours == nil {
		cafe.BestHours = []models.TimeWindow{}
	}
	if cafe.Food == nil {
		cafe.Food = []string{}
	}

	if err := s.cafes.Create(ctx, cafe); err != nil {
		return nil, fmt.Errorf("failed to create cafe: %w", err)
	}

	s.hub.NotifyCafesChanged(cafe.ID)

	return cafe, nil
}

// ListCafes returns cafes matching every active filter clause.
func (s *CafeService) ListCafes(ctx context.Context, f models.CafeFilter) ([]*models.Cafe, error) {
	return s.cafes.List(ctx, f)
}

// GetCafe returns the cafe or nil when the identifier does not exist.
func (s *CafeService) GetCafe(ctx context.Context, id string) (*models.Cafe, error) {
	return s.cafes.GetByID(ctx, id)
}
