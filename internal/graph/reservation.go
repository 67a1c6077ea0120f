package graph

import (
	"context"

	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/repository"
)

const reservationQueryFields = `
	reservations: [Reservation!]
`

const reservationMutationFields = `
	addReservation(reservation: ReservationInput!): Reservation
`

type ReservationQuery struct {
	base *base
	repo repository.ReservationRepository
}

func (q *ReservationQuery) Reservations(ctx context.Context) (*[]*reservationResolver, error) {
	return resolve(ctx, q.base, "reservations", func(ctx context.Context) (*[]*reservationResolver, error) {
		reservations, err := q.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return reservationList(reservations), nil
	})
}

type ReservationMutation struct {
	base *base
	repo repository.ReservationRepository
}

func (m *ReservationMutation) AddReservation(ctx context.Context, args struct{ Reservation ReservationInput }) (*reservationResolver, error) {
	return resolve(ctx, m.base, "addReservation", func(ctx context.Context) (*reservationResolver, error) {
		created, err := m.repo.Create(ctx, args.Reservation.model())
		if err != nil {
			return nil, err
		}
		m.base.publish(ctx, "reservation", events.ActionCreated, created.ID)
		return &reservationResolver{r: created}, nil
	})
}
