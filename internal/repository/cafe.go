package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cafeColumns = `id, name, stop_id, stop_type, best_hours, food, price, ideal_work, amenities, opening_hours, created_by, created_at`

// pgCafeRepository is the Postgres-backed CafeRepository.
type pgCafeRepository struct {
	db *pgxpool.Pool
}

// Create inserts a cafe unconditionally; cross-reference checks against the
// stop happen in the service, which is the only writer touching both
// entities at once.
func (r *pgCafeRepository) Create(ctx context.Context, cafe *models.Cafe) error {
	bestHours, err := json.Marshal(cafe.BestHours)
	if err != nil {
		return fmt.Errorf("failed to encode best hours: %w", err)
	}
	openingHours, err := json.Marshal(cafe.OpeningHours)
	if err != nil {
		return fmt.Errorf("failed to encode opening hours: %w", err)
	}

	query := `
		INSERT INTO cafes (` + cafeColumns + `)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10::jsonb, $11, $12)
	`
	_, err = r.db.Exec(ctx, query,
		cafe.ID, cafe.Name, cafe.Location.StopID, string(cafe.Location.Type),
		string(bestHours), stringSlice(cafe.Food), string(cafe.Price),
		activityStrings(cafe.IdealWork), amenityStrings(cafe.Amenities),
		string(openingHours), cafe.CreatedBy, cafe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cafe: %w", err)
	}
	return nil
}

// GetByID retrieves a cafe, returning (nil, nil) when absent.
func (r *pgCafeRepository) GetByID(ctx context.Context, id string) (*models.Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes WHERE id = $1`
	cafe, err := scanCafe(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cafe: %w", err)
	}
	return cafe, nil
}

// List returns cafes matching every active filter clause.
func (r *pgCafeRepository) List(ctx context.Context, f models.CafeFilter) ([]*models.Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes`
	var conds []string
	var args []any
	if f.StopID != nil {
		args = append(args, *f.StopID)
		conds = append(conds, fmt.Sprintf("stop_id = $%d", len(args)))
	}
	if f.PriceAtMost != nil {
		args = append(args, tiersUpTo(*f.PriceAtMost))
		conds = append(conds, fmt.Sprintf("price = ANY($%d)", len(args)))
	}
	if len(f.RequiredAmenities) > 0 {
		args = append(args, amenityStrings(f.RequiredAmenities))
		conds = append(conds, fmt.Sprintf("amenities @> $%d", len(args)))
	}
	if len(f.IdealWork) > 0 {
		args = append(args, activityStrings(f.IdealWork))
		conds = append(conds, fmt.Sprintf("ideal_work && $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cafes: %w", err)
	}
	defer rows.Close()

	cafes := []*models.Cafe{}
	for rows.Next() {
		cafe, err := scanCafe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cafe: %w", err)
		}
		cafes = append(cafes, cafe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cafes: %w", err)
	}
	return cafes, nil
}

func scanCafe(row pgx.Row) (*models.Cafe, error) {
	var cafe models.Cafe
	var stopType, price string
	var bestHours, openingHours []byte
	var food, idealWork, amenities []string
	err := row.Scan(
		&cafe.ID, &cafe.Name, &cafe.Location.StopID, &stopType,
		&bestHours, &food, &price, &idealWork, &amenities,
		&openingHours, &cafe.CreatedBy, &cafe.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	cafe.Location.Type = models.StopType(stopType)
	cafe.Price = models.PriceTier(price)
	cafe.Food = food
	for _, a := range idealWork {
		cafe.IdealWork = append(cafe.IdealWork, models.WorkActivity(a))
	}
	for _, a := range amenities {
		cafe.Amenities = append(cafe.Amenities, models.Amenity(a))
	}
	if err := json.Unmarshal(bestHours, &cafe.BestHours); err != nil {
		return nil, fmt.Errorf("failed to decode best hours: %w", err)
	}
	if err := json.Unmarshal(openingHours, &cafe.OpeningHours); err != nil {
		return nil, fmt.Errorf("failed to decode opening hours: %w", err)
	}
	return &cafe, nil
}

// tiersUpTo lists every tier at most p, cheapest first.
func tiersUpTo(p models.PriceTier) []string {
	all := []models.PriceTier{models.PriceCheap, models.PriceModerate, models.PriceUpmarket}
	var tiers []string
	for _, tier := range all {
		if tier.LessOrEqual(p) {
			tiers = append(tiers, string(tier))
		}
	}
	return tiers
}

func stringSlice(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func amenityStrings(in []models.Amenity) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, string(a))
	}
	return out
}

func activityStrings(in []models.WorkActivity) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, string(a))
	}
	return out
}
