package memory

import (
	"context"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/repository"
)

// ReservationRepository implements repository.ReservationRepository over a Store.
type ReservationRepository struct {
	store *Store
}

func NewReservationRepository(store *Store) *ReservationRepository {
	return &ReservationRepository{store: store}
}

func (r *ReservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.store.read(ctx, func() error {
		out = make([]models.Reservation, 0, len(r.store.reservations))
		for _, res := range r.store.reservations {
			out = append(out, copyReservation(res))
		}
		return nil
	})
	return out, err
}

func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) (models.Reservation, error) {
	reservation = copyReservation(reservation)
	err := r.store.write(ctx, func() error {
		id, err := allocate(&r.store.nextReservationID, "reservation")
		if err != nil {
			return err
		}
		reservation.ID = id
		r.store.reservations = append(r.store.reservations, reservation)
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}
	return copyReservation(reservation), nil
}

func (r *ReservationRepository) Update(ctx context.Context, id int, reservation models.Reservation) (models.Reservation, error) {
	var updated models.Reservation
	err := r.store.write(ctx, func() error {
		for i := range r.store.reservations {
			if r.store.reservations[i].ID == id {
				repository.ApplyReservationUpdate(&r.store.reservations[i], copyReservation(reservation))
				updated = copyReservation(r.store.reservations[i])
				return nil
			}
		}
		return repository.NotFound("reservation", id)
	})
	return updated, err
}

func (r *ReservationRepository) Delete(ctx context.Context, id int) error {
	return r.store.write(ctx, func() error {
		for i := range r.store.reservations {
			if r.store.reservations[i].ID == id {
				r.store.reservations = append(r.store.reservations[:i], r.store.reservations[i+1:]...)
				return nil
			}
		}
		return repository.NotFound("reservation", id)
	})
}
