// Package memory is the process-local repository backend. It is meant for development and demos:
// nothing survives a restart, and it must not be mixed with the postgres backend in one deployment.
package memory

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/repository"
)

// Store holds one ordered list per entity. A single RWMutex guards all of them.
type Store struct {
	mu           sync.RWMutex
	categories   []models.Category
	menus        []models.Menu
	reservations []models.Reservation

	nextCategoryID    int
	nextMenuID        int
	nextReservationID int
}

var (
	sharedOnce  sync.Once
	sharedStore *Store
)

// Shared returns the process-wide store, seeding it on first use.
func Shared() *Store {
	sharedOnce.Do(func() {
		sharedStore = NewStore()
	})
	return sharedStore
}

// MaxID matches the int4 SERIAL range of the postgres backend, the widest id the GraphQL Int
// type can carry.
const MaxID = math.MaxInt32

var errIDsExhausted = errors.New("id sequence exhausted")

// allocate hands out *next and advances it. Callers hold the write lock.
func allocate(next *int, entity string) (int, error) {
	if *next > MaxID {
		return 0, repository.Storage("create "+entity, errIDsExhausted)
	}
	id := *next
	*next++
	return id, nil
}

// NewStore creates an isolated store seeded with the default fixtures.
func NewStore() *Store {
	s := &Store{
		categories:   models.SeedCategories(),
		menus:        models.SeedMenus(),
		reservations: models.SeedReservations(),
	}
	s.nextCategoryID = len(s.categories) + 1
	s.nextMenuID = len(s.menus) + 1
	s.nextReservationID = len(s.reservations) + 1
	return s
}

// NewEmptyStore creates a store with no rows; ids start at 1.
func NewEmptyStore() *Store {
	return &Store{nextCategoryID: 1, nextMenuID: 1, nextReservationID: 1}
}

// Repositories binds all three contracts to this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Categories:   &CategoryRepository{store: s},
		Menus:        &MenuRepository{store: s},
		Reservations: &ReservationRepository{store: s},
	}
}

// read and write run fn under the lock unless ctx is already done.
func (s *Store) read(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func copyReservation(r models.Reservation) models.Reservation {
	if r.SpecialRequest != nil {
		v := *r.SpecialRequest
		r.SpecialRequest = &v
	}
	return r
}
