package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stopColumns = `id, name, type, city, line, distance_from_city, zone, lat, lng, accessibility, code, created_at`

// pgStopRepository is the Postgres-backed StopRepository.
type pgStopRepository struct {
	db *pgxpool.Pool
}

// CreateIfAbsent relies on the unique index on (name, line, city): the
// INSERT ... ON CONFLICT DO NOTHING either commits the new row or touches
// nothing, so concurrent importers cannot race a duplicate in.
func (r *pgStopRepository) CreateIfAbsent(ctx context.Context, stop *models.Stop) (string, bool, error) {
	var lat, lng *float64
	if stop.Coordinates != nil {
		lat, lng = &stop.Coordinates.Lat, &stop.Coordinates.Lng
	}

	query := `
		INSERT INTO stops (` + stopColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name, line, city) DO NOTHING
		RETURNING id
	`
	var id string
	err := r.db.QueryRow(ctx, query,
		stop.ID, stop.Name, string(stop.Type), stop.City, stop.Line,
		stop.DistanceFromCity, stop.Zone, lat, lng, stop.Accessibility,
		stop.Code, stop.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("failed to create stop: %w", err)
	}

	// Duplicate triple: return the existing identifier unchanged.
	sel := `SELECT id FROM stops WHERE name = $1 AND line = $2 AND city = $3`
	if err := r.db.QueryRow(ctx, sel, stop.Name, stop.Line, stop.City).Scan(&id); err != nil {
		return "", false, fmt.Errorf("failed to get existing stop: %w", err)
	}
	return id, false, nil
}

// GetByID retrieves a stop, returning (nil, nil) when absent.
func (r *pgStopRepository) GetByID(ctx context.Context, id string) (*models.Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM stops WHERE id = $1`
	stop, err := scanStop(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get stop: %w", err)
	}
	return stop, nil
}

// List returns stops matching every set filter field.
func (r *pgStopRepository) List(ctx context.Context, f models.StopFilter) ([]*models.Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM stops`
	var conds []string
	var args []any
	if f.Type != nil {
		args = append(args, string(*f.Type))
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.City != nil {
		args = append(args, *f.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if f.Line != nil {
		args = append(args, *f.Line)
		conds = append(conds, fmt.Sprintf("line = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	return r.queryStops(ctx, query, args...)
}

// likeEscaper neutralizes LIKE metacharacters so a search term is always a
// literal substring, matching the memory backend.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName matches the term case-insensitively anywhere in the name.
func (r *pgStopRepository) SearchByName(ctx context.Context, term string) ([]*models.Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM stops WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'`
	return r.queryStops(ctx, query, likeEscaper.Replace(term))
}

// ListByCityLine returns every stop on one line of one city.
func (r *pgStopRepository) ListByCityLine(ctx context.Context, city, line string) ([]*models.Stop, error) {
	query := `SELECT ` + stopColumns + ` FROM stops WHERE city = $1 AND line = $2`
	return r.queryStops(ctx, query, city, line)
}

// DeleteAll removes every stop. Concurrent readers may observe a partially
// cleared table; the operation backs the operator-only re-import path.
func (r *pgStopRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM stops`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear stops: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgStopRepository) queryStops(ctx context.Context, query string, args ...any) ([]*models.Stop, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	stops := []*models.Stop{}
	for rows.Next() {
		stop, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		stops = append(stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stops: %w", err)
	}
	return stops, nil
}

func scanStop(row pgx.Row) (*models.Stop, error) {
	var stop models.Stop
	var typ string
	var lat, lng *float64
	err := row.Scan(
		&stop.ID, &stop.Name, &typ, &stop.City, &stop.Line,
		&stop.DistanceFromCity, &stop.Zone, &lat, &lng,
		&stop.Accessibility, &stop.Code, &stop.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	stop.Type = models.StopType(typ)
	if lat != nil && lng != nil {
		stop.Coordinates = &models.Coordinates{Lat: *lat, Lng: *lng}
	}
	return &stop, nil
}
