package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StopService handles transit-network business logic
type StopService struct {
	stops    repository.StopRepository
	hub      *EventsHub
	validate *validator.Validate
}

// NewStopService creates a new stop service. hub may be nil when no live
// feed is wanted (CLI usage).
func NewStopService(stops repository.StopRepository, hub *EventsHub) *StopService {
	return &StopService{
		stops:    stops,
		hub:      hub,
		validate: validator.New(),
	}
}

// CreateStopRequest carries the fields of a new stop. The server assigns
// the identifier and creation time.
type CreateStopRequest struct {
	Name             string              `json:"name" validate:"required"`
	Type             models.StopType     `json:"type" validate:"required,oneof=train tram"`
	City             string              `json:"city" validate:"required"`
	Line             string              `json:"line" validate:"required"`
	DistanceFromCity float64             `json:"distanceFromCity" validate:"gte=0"`
	Zone             *int                `json:"zone,omitempty" validate:"omitempty,gt=0"`
	Coordinates      *models.Coordinates `json:"coordinates,omitempty"`
	Accessibility    *bool               `json:"accessibility,omitempty"`
	Code             *string             `json:"code,omitempty"`
}

// CreateStopResult reports the stop identifier and whether the call
// actually inserted a record. A duplicate (name, line, city) triple returns
// the existing identifier with Created false.
type CreateStopResult struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// CreateStop inserts a stop unless one with the same (name, line, city)
// already exists. Duplicate hits return the existing identifier and merge
// nothing, so re-running an import is safe but cannot correct fields.
func (s *StopService) CreateStop(ctx context.Context, req CreateStopRequest) (*CreateStopResult, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	stop := &models.Stop{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Type:             req.Type,
		City:             req.City,
		Line:             req.Line,
		DistanceFromCity: req.DistanceFromCity,
		Zone:             req.Zone,
		Coordinates:      req.Coordinates,
		Accessibility:    req.Accessibility,
		Code:             req.Code,
		CreatedAt:        time.Now().UTC(),
	}

	id, created, err := s.stops.CreateIfAbsent(ctx, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to create stop: %w", err)
	}

	if created {
		s.hub.NotifyStopsChanged()
	}

	return &CreateStopResult{ID: id, Created: created}, nil
}

// ListStops returns stops matching every set filter field.
func (s *StopService) ListStops(ctx context.Context, f models.StopFilter) ([]*models.Stop, error) {
	return s.stops.List(ctx, f)
}

// GetStop returns the stop or nil when the identifier does not exist.
// Absence is data, not failure.
func (s *StopService) GetStop(ctx context.Context, id string) (*models.Stop, error) {
	return s.stops.GetByID(ctx, id)
}

// SearchStops matches the term case-insensitively against stop names.
// An empty term matches everything.
func (s *StopService) SearchStops(ctx context.Context, term string) ([]*models.Stop, error) {
	return s.stops.SearchByName(ctx, term)
}

// GetNearbyStops returns every other stop on the reference stop's line in
// its city, optionally limited to those within maxDistanceKm of the
// reference along the line. A missing reference yields an empty slice.
// Nearness is strictly 1-D along the line; coordinates play no part.
func (s *StopService) GetNearbyStops(ctx context.Context, stopID string, maxDistanceKm *float64) ([]*models.Stop, error) {
	reference, err := s.stops.GetByID(ctx, stopID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference stop: %w", err)
	}
	if reference == nil {
		return []*models.Stop{}, nil
	}

	candidates, err := s.stops.ListByCityLine(ctx, reference.City, reference.Line)
	if err != nil {
		return nil, fmt.Errorf("failed to list line stops: %w", err)
	}

	nearby := []*models.Stop{}
	for _, stop := range candidates {
		if stop.ID == reference.ID {
			continue
		}
		if maxDistanceKm != nil && math.Abs(stop.DistanceFromCity-reference.DistanceFromCity) > *maxDistanceKm {
			continue
		}
		nearby = append(nearby, stop)
	}
	return nearby, nil
}

// ClearAllResult reports how many stops a clear removed.
type ClearAllResult struct {
	Deleted int64 `json:"deleted"`
}

// ClearAllStops unconditionally removes every stop so a full re-import can
// run. Not atomic with concurrent readers.
func (s *StopService) ClearAllStops(ctx context.Context) (*ClearAllResult, error) {
	deleted, err := s.stops.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear stops: %w", err)
	}

	s.hub.NotifyStopsChanged()

	return &ClearAllResult{Deleted: deleted}, nil
}
