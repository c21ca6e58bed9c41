package repository

import (
	"context"
	"fmt"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/config"
	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StopRepository handles storage operations for transit stops.
type StopRepository interface {
	// CreateIfAbsent inserts the stop unless one with the same
	// (name, line, city) triple exists. On a duplicate hit the existing
	// identifier is returned unchanged and no fields are merged.
	// The existence check and the insert are one atomic operation.
	CreateIfAbsent(ctx context.Context, stop *models.Stop) (id string, created bool, err error)
	// GetByID returns (nil, nil) when no stop has the identifier.
	GetByID(ctx context.Context, id string) (*models.Stop, error)
	List(ctx context.Context, f models.StopFilter) ([]*models.Stop, error)
	// SearchByName is a case-insensitive substring match; an empty term
	// matches everything.
	SearchByName(ctx context.Context, term string) ([]*models.Stop, error)
	ListByCityLine(ctx context.Context, city, line string) ([]*models.Stop, error)
	// DeleteAll removes every stop and returns the deleted count.
	DeleteAll(ctx context.Context) (int64, error)
}

// CafeRepository handles storage operations for cafes.
type CafeRepository interface {
	Create(ctx context.Context, cafe *models.Cafe) error
	// GetByID returns (nil, nil) when no cafe has the identifier.
	GetByID(ctx context.Context, id string) (*models.Cafe, error)
	List(ctx context.Context, f models.CafeFilter) ([]*models.Cafe, error)
}

// UserRepository handles storage operations for user profiles.
type UserRepository interface {
	// CreateIfAbsent inserts the profile unless one exists for its userId,
	// then returns the stored profile. An existing profile is never
	// overwritten (first write wins).
	CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
	// GetByUserID returns (nil, nil) when no profile exists for the id.
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	SetHomeStop(ctx context.Context, userID, stopID string) error
	SetFavorites(ctx context.Context, userID string, favorites []string) error
}

// VisitRepository handles the append-only visit log.
type VisitRepository interface {
	Append(ctx context.Context, visit *models.Visit) error
	// ListByUser returns the user's visits newest-first.
	ListByUser(ctx context.Context, userID string) ([]*models.Visit, error)
}

// Store bundles the repositories over one backing store.
type Store struct {
	Stops  StopRepository
	Cafes  CafeRepository
	Users  UserRepository
	Visits VisitRepository

	pool *pgxpool.Pool
}

// Close releases the underlying connection pool, if any.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// NewStore creates a Store for the configured database type.
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Type {
	case "", "postgres":
		return NewPostgresStore(ctx, cfg.DSN())
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// NewPostgresStore connects to Postgres with the given DSN or URL, verifies
// the connection and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Store{
		Stops:  &pgStopRepository{db: pool},
		Cafes:  &pgCafeRepository{db: pool},
		Users:  &pgUserRepository{db: pool},
		Visits: &pgVisitRepository{db: pool},
		pool:   pool,
	}, nil
}
