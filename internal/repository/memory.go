package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Gizmotronn/where-will-i-meet-you/internal/models"
)

// memDB is mutex-guarded in-memory storage shared by the memory
// repositories. It backs tests and local development without Postgres; the
// mutex gives each operation the same single-round-trip atomicity the
// Postgres statements have.
type memDB struct {
	mu sync.RWMutex

	stops      map[string]*models.Stop
	stopTriple map[string]string // (name, line, city) key -> stop id
	cafes      map[string]*models.Cafe
	users      map[string]*models.UserProfile
	visits     []*models.Visit
}

// NewMemoryStore creates a Store backed by process memory.
func NewMemoryStore() *Store {
	db := &memDB{
		stops:      make(map[string]*models.Stop),
		stopTriple: make(map[string]string),
		cafes:      make(map[string]*models.Cafe),
		users:      make(map[string]*models.UserProfile),
	}
	return &Store{
		Stops:  &memStopRepository{db: db},
		Cafes:  &memCafeRepository{db: db},
		Users:  &memUserRepository{db: db},
		Visits: &memVisitRepository{db: db},
	}
}

func tripleKey(name, line, city string) string {
	return name + "\x00" + line + "\x00" + city
}

// memStopRepository is the in-memory StopRepository.
type memStopRepository struct {
	db *memDB
}

func (r *memStopRepository) CreateIfAbsent(ctx context.Context, stop *models.Stop) (string, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := tripleKey(stop.Name, stop.Line, stop.City)
	if id, ok := r.db.stopTriple[key]; ok {
		return id, false, nil
	}
	copied := *stop
	r.db.stops[stop.ID] = &copied
	r.db.stopTriple[key] = stop.ID
	return stop.ID, true, nil
}

func (r *memStopRepository) GetByID(ctx context.Context, id string) (*models.Stop, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stop, ok := r.db.stops[id]
	if !ok {
		return nil, nil
	}
	copied := *stop
	return &copied, nil
}

func (r *memStopRepository) List(ctx context.Context, f models.StopFilter) ([]*models.Stop, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stops := []*models.Stop{}
	for _, stop := range r.db.stops {
		if f.Matches(stop) {
			copied := *stop
			stops = append(stops, &copied)
		}
	}
	return stops, nil
}

func (r *memStopRepository) SearchByName(ctx context.Context, term string) ([]*models.Stop, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	term = strings.ToLower(term)
	stops := []*models.Stop{}
	for _, stop := range r.db.stops {
		if strings.Contains(strings.ToLower(stop.Name), term) {
			copied := *stop
			stops = append(stops, &copied)
		}
	}
	return stops, nil
}

func (r *memStopRepository) ListByCityLine(ctx context.Context, city, line string) ([]*models.Stop, error) {
	return r.List(ctx, models.StopFilter{City: &city, Line: &line})
}

func (r *memStopRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	deleted := int64(len(r.db.stops))
	r.db.stops = make(map[string]*models.Stop)
	r.db.stopTriple = make(map[string]string)
	return deleted, nil
}

// memCafeRepository is the in-memory CafeRepository.
type memCafeRepository struct {
	db *memDB
}

func (r *memCafeRepository) Create(ctx context.Context, cafe *models.Cafe) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	copied := *cafe
	r.db.cafes[cafe.ID] = &copied
	return nil
}

func (r *memCafeRepository) GetByID(ctx context.Context, id string) (*models.Cafe, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	cafe, ok := r.db.cafes[id]
	if !ok {
		return nil, nil
	}
	copied := *cafe
	return &copied, nil
}

func (r *memCafeRepository) List(ctx context.Context, f models.CafeFilter) ([]*models.Cafe, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	cafes := []*models.Cafe{}
	for _, cafe := range r.db.cafes {
		if f.Matches(cafe) {
			copied := *cafe
			cafes = append(cafes, &copied)
		}
	}
	return cafes, nil
}

// memUserRepository is the in-memory UserRepository.
type memUserRepository struct {
	db *memDB
}

func (r *memUserRepository) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if existing, ok := r.db.users[profile.UserID]; ok {
		return copyProfile(existing), nil
	}
	copied := *profile
	if copied.Favorites == nil {
		copied.Favorites = []string{}
	}
	r.db.users[profile.UserID] = &copied
	return copyProfile(&copied), nil
}

func (r *memUserRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	profile, ok := r.db.users[userID]
	if !ok {
		return nil, nil
	}
	return copyProfile(profile), nil
}

func (r *memUserRepository) SetHomeStop(ctx context.Context, userID, stopID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if profile, ok := r.db.users[userID]; ok {
		id := stopID
		profile.HomeStopID = &id
	}
	return nil
}

func (r *memUserRepository) SetFavorites(ctx context.Context, userID string, favorites []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if profile, ok := r.db.users[userID]; ok {
		profile.Favorites = append([]string{}, favorites...)
	}
	return nil
}

func copyProfile(p *models.UserProfile) *models.UserProfile {
	copied := *p
	copied.Favorites = append([]string{}, p.Favorites...)
	if p.HomeStopID != nil {
		id := *p.HomeStopID
		copied.HomeStopID = &id
	}
	return &copied
}

// memVisitRepository is the in-memory VisitRepository.
type memVisitRepository struct {
	db *memDB
}

func (r *memVisitRepository) Append(ctx context.Context, visit *models.Visit) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	copied := *visit
	r.db.visits = append(r.db.visits, &copied)
	return nil
}

func (r *memVisitRepository) ListByUser(ctx context.Context, userID string) ([]*models.Visit, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	visits := []*models.Visit{}
	for i := len(r.db.visits) - 1; i >= 0; i-- {
		if r.db.visits[i].UserID == userID {
			copied := *r.db.visits[i]
			visits = append(visits, &copied)
		}
	}
	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].Timestamp.After(visits[j].Timestamp)
	})
	return visits, nil
}
