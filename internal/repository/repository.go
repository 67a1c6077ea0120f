// Package repository declares the storage contracts the GraphQL layer resolves against.
//
// Every operation takes a context because any backend may perform I/O; callers treat all of
// them as potentially blocking even when the in-memory backend returns immediately.
package repository

import (
	"context"

	"github.com/eleven-am/bistro/internal/models"
)

// CategoryRepository stores categories. Update only touches Name and ImageURL.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category models.Category) (models.Category, error)
	Update(ctx context.Context, id int, category models.Category) (models.Category, error)
	Delete(ctx context.Context, id int) error
}

// MenuRepository stores menu items. Update only touches Name, Description and Price.
type MenuRepository interface {
	List(ctx context.Context) ([]models.Menu, error)
	GetByID(ctx context.Context, id int) (models.Menu, error)
	Create(ctx context.Context, menu models.Menu) (models.Menu, error)
	Update(ctx context.Context, id int, menu models.Menu) (models.Menu, error)
	Delete(ctx context.Context, id int) error
}

// ReservationRepository stores reservations. Update overwrites every field except the id.
type ReservationRepository interface {
	List(ctx context.Context) ([]models.Reservation, error)
	Create(ctx context.Context, reservation models.Reservation) (models.Reservation, error)
	Update(ctx context.Context, id int, reservation models.Reservation) (models.Reservation, error)
	Delete(ctx context.Context, id int) error
}

// Repositories is the set of contracts one deployment is wired with. All three must come from
// the same backend.
type Repositories struct {
	Categories   CategoryRepository
	Menus        MenuRepository
	Reservations ReservationRepository

	// Ping reports whether the backend is reachable. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// Healthy runs the backend ping, if any.
func (r Repositories) Healthy(ctx context.Context) error {
	if r.Ping == nil {
		return ctx.Err()
	}
	return r.Ping(ctx)
}

// ApplyCategoryUpdate copies the mutable category fields from src into dst.
func ApplyCategoryUpdate(dst *models.Category, src models.Category) {
	dst.Name = src.Name
	dst.ImageURL = src.ImageURL
}

// ApplyMenuUpdate copies the mutable menu fields from src into dst. ImageURL and CategoryID are
// left untouched.
func ApplyMenuUpdate(dst *models.Menu, src models.Menu) {
	dst.Name = src.Name
	dst.Description = src.Description
	dst.Price = src.Price
}

// ApplyReservationUpdate copies every reservation field except the id.
func ApplyReservationUpdate(dst *models.Reservation, src models.Reservation) {
	dst.CustomerName = src.CustomerName
	dst.PhoneNumber = src.PhoneNumber
	dst.PartySize = src.PartySize
	dst.SpecialRequest = src.SpecialRequest
	dst.ReservationDate = src.ReservationDate
}
