package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/repository"

	"github.com/google/uuid"
)

// UserService handles profile and visit-log business logic. The user
// identifier is an opaque per-device string the client generates; the
// service treats it purely as a key.
type UserService struct {
	users  repository.UserRepository
	stops  repository.StopRepository
	cafes  repository.CafeRepository
	visits repository.VisitRepository
	hub    *EventsHub
}

// NewUserService creates a new user service
func NewUserService(
	users repository.UserRepository,
	stops repository.StopRepository,
	cafes repository.CafeRepository,
	visits repository.VisitRepository,
	hub *EventsHub,
) *UserService {
	return &UserService{
		users:  users,
		stops:  stops,
		cafes:  cafes,
		visits: visits,
		hub:    hub,
	}
}

// GetOrCreateUser looks up the profile for userID, creating it with empty
// favorites and the given home stop when absent. An existing profile is
// returned unchanged even if a different homeStopID is supplied: first
// write wins. When homeStopID is nil the field is omitted from storage
// entirely, so "never set" stays distinguishable from any stored value.
func (s *UserService) GetOrCreateUser(ctx context.Context, userID string, homeStopID *string) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		UserID:     userID,
		HomeStopID: homeStopID,
		Favorites:  []string{},
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.users.CreateIfAbsent(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return stored, nil
}

// SetHomeStop explicitly changes the user's home stop, unlike the
// first-write-wins create path. The stop must resolve.
func (s *UserService) SetHomeStop(ctx context.Context, userID, stopID string) (*models.UserProfile, error) {
	stop, err := s.stops.GetByID(ctx, stopID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stop: %w", err)
	}
	if stop == nil {
		return nil, fmt.Errorf("%w: stop %s does not exist", ErrValidation, stopID)
	}

	if _, err := s.GetOrCreateUser(ctx, userID, nil); err != nil {
		return nil, err
	}
	if err := s.users.SetHomeStop(ctx, userID, stopID); err != nil {
		return nil, err
	}
	return s.users.GetByUserID(ctx, userID)
}

// AddFavorite adds a cafe to the user's favorites. Favorites are a set:
// adding a cafe already present is a no-op, and first-add order is kept
// for display. The cafe must resolve.
func (s *UserService) AddFavorite(ctx context.Context, userID, cafeID string) (*models.UserProfile, error) {
	cafe, err := s.cafes.GetByID(ctx, cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cafe: %w", err)
	}
	if cafe == nil {
		return nil, fmt.Errorf("%w: cafe %s does not exist", ErrValidation, cafeID)
	}

	profile, err := s.GetOrCreateUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	for _, id := range profile.Favorites {
		if id == cafeID {
			return profile, nil
		}
	}

	favorites := append(profile.Favorites, cafeID)
	if err := s.users.SetFavorites(ctx, userID, favorites); err != nil {
		return nil, err
	}

	s.hub.NotifyFavoritesChanged(userID)

	profile.Favorites = favorites
	return profile, nil
}

// RemoveFavorite removes a cafe from the user's favorites. Removing a cafe
// that is not favorited is a no-op.
func (s *UserService) RemoveFavorite(ctx context.Context, userID, cafeID string) (*models.UserProfile, error) {
	profile, err := s.GetOrCreateUser(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	favorites := []string{}
	removed := false
	for _, id := range profile.Favorites {
		if id == cafeID {
			removed = true
			continue
		}
		favorites = append(favorites, id)
	}
	if !removed {
		return profile, nil
	}

	if err := s.users.SetFavorites(ctx, userID, favorites); err != nil {
		return nil, err
	}

	s.hub.NotifyFavoritesChanged(userID)

	profile.Favorites = favorites
	return profile, nil
}

// RecordVisit appends one visit event to the user's log. The cafe must
// resolve; visits are never mutated or deleted.
func (s *UserService) RecordVisit(ctx context.Context, userID, cafeID string) (*models.Visit, error) {
	cafe, err := s.cafes.GetByID(ctx, cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cafe: %w", err)
	}
	if cafe == nil {
		return nil, fmt.Errorf("%w: cafe %s does not exist", ErrValidation, cafeID)
	}

	visit := &models.Visit{
		ID:        uuid.New().String(),
		UserID:    userID,
		CafeID:    cafeID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.visits.Append(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}
	return visit, nil
}

// ListVisits returns the user's visit history, newest first.
func (s *UserService) ListVisits(ctx context.Context, userID string) ([]*models.Visit, error) {
	return s.visits.ListByUser(ctx, userID)
}
