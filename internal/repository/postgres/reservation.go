package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/orm"
)

// ReservationRepository implements repository.ReservationRepository on the reservations table.
type ReservationRepository struct {
	tm   *orm.TransactionManager
	rows *orm.Repository[models.Reservation]
}

func NewReservationRepository(tm *orm.TransactionManager, middleware ...orm.Middleware) (*ReservationRepository, error) {
	rows, err := orm.NewRepository[models.Reservation](tm.DB(), reservationsTable, middleware...)
	if err != nil {
		return nil, err
	}
	return &ReservationRepository{tm: tm, rows: rows}, nil
}

func (r *ReservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := r.rows.FindAll(ctx)
	if err != nil {
		return nil, translate("list", "reservation", 0, err)
	}
	return reservations, nil
}

func (r *ReservationRepository) Create(ctx context.Context, reservation models.Reservation) (models.Reservation, error) {
	created, err := r.rows.Insert(ctx, reservationValues(reservation))
	if err != nil {
		return models.Reservation{}, translate("create", "reservation", 0, err)
	}
	return *created, nil
}

func (r *ReservationRepository) Update(ctx context.Context, id int, reservation models.Reservation) (models.Reservation, error) {
	var updated *models.Reservation
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}

		var err error
		updated, err = rows.UpdateByID(ctx, id, reservationValues(reservation))
		return err
	})
	if err != nil {
		return models.Reservation{}, translate("update", "reservation", id, err)
	}
	return *updated, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int) error {
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}
		return rows.DeleteByID(ctx, id)
	})
	return translate("delete", "reservation", id, err)
}

func reservationValues(r models.Reservation) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":    r.CustomerName,
		"phone_number":     r.PhoneNumber,
		"party_size":       r.PartySize,
		"special_request":  r.SpecialRequest,
		"reservation_date": r.ReservationDate,
	}
}
