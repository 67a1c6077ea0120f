package models

import "time"

// Reservation is a table booking. No invariant is enforced on PartySize or ReservationDate.
type Reservation struct {
	_ struct{} `dbdef:"table:reservations"`

	ID              int       `db:"id" dbdef:"type:serial;primary_key"`
	CustomerName    string    `db:"customer_name" dbdef:"type:text;not_null;default:''"`
	PhoneNumber     string    `db:"phone_number" dbdef:"type:text;not_null;default:''"`
	PartySize       int       `db:"party_size" dbdef:"type:integer;not_null"`
	SpecialRequest  *string   `db:"special_request" dbdef:"type:text"`
	ReservationDate time.Time `db:"reservation_date" dbdef:"type:timestamptz;not_null"`
}

// ReservationColumns lists the columns selected for a reservation row, in table order.
var ReservationColumns = []string{"id", "customer_name", "phone_number", "party_size", "special_request", "reservation_date"}
