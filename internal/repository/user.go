package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUserRepository is the Postgres-backed UserRepository.
type pgUserRepository struct {
	db *pgxpool.Pool
}

// CreateIfAbsent inserts the profile unless one exists for its userId and
// returns whatever is stored afterwards. ON CONFLICT DO NOTHING makes the
// check-then-insert atomic, so a concurrent first call wins cleanly and the
// loser reads the winner's row.
func (r *pgUserRepository) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	query := `
		INSERT INTO users (user_id, home_stop_id, favorites, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	favorites := profile.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	_, err := r.db.Exec(ctx, query, profile.UserID, profile.HomeStopID, favorites, profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	stored, err := r.GetByUserID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("user profile missing after insert: %s", profile.UserID)
	}
	return stored, nil
}

// GetByUserID retrieves a profile, returning (nil, nil) when absent.
func (r *pgUserRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT user_id, home_stop_id, favorites, created_at
		FROM users
		WHERE user_id = $1
	`
	var profile models.UserProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.HomeStopID, &profile.Favorites, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}

// SetHomeStop updates the user's home stop.
func (r *pgUserRepository) SetHomeStop(ctx context.Context, userID, stopID string) error {
	query := `UPDATE users SET home_stop_id = $1 WHERE user_id = $2`
	if _, err := r.db.Exec(ctx, query, stopID, userID); err != nil {
		return fmt.Errorf("failed to set home stop: %w", err)
	}
	return nil
}

// SetFavorites replaces the user's favorites list.
func (r *pgUserRepository) SetFavorites(ctx context.Context, userID string, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	query := `UPDATE users SET favorites = $1 WHERE user_id = $2`
	if _, err := r.db.Exec(ctx, query, favorites, userID); err != nil {
		return fmt.Errorf("failed to set favorites: %w", err)
	}
	return nil
}

// pgVisitRepository is the Postgres-backed VisitRepository.
type pgVisitRepository struct {
	db *pgxpool.Pool
}

// Append records one visit event. Visits are never updated or deleted.
func (r *pgVisitRepository) Append(ctx context.Context, visit *models.Visit) error {
	query := `
		INSERT INTO visits (id, user_id, cafe_id, visited_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, query, visit.ID, visit.UserID, visit.CafeID, visit.Timestamp); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// ListByUser returns the user's visits newest-first.
func (r *pgVisitRepository) ListByUser(ctx context.Context, userID string) ([]*models.Visit, error) {
	query := `
		SELECT id, user_id, cafe_id, visited_at
		FROM visits
		WHERE user_id = $1
		ORDER BY visited_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	visits := []*models.Visit{}
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.UserID, &v.CafeID, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visits: %w", err)
	}
	return visits, nil
}
