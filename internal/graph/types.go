package graph

import (
	"github.com/graph-gophers/graphql-go"

	"github.com/eleven-am/bistro/internal/models"
)

const scalarTypeDefs = `
scalar Time
`

const categoryTypeDefs = `
type Category {
	id: Int!
	name: String!
	imageUrl: String!
}

input CategoryInput {
	name: String
	imageUrl: String
}
`

const menuTypeDefs = `
type Menu {
	id: Int!
	name: String!
	description: String!
	price: Float!
	imageUrl: String!
	categoryId: Int!
}

input MenuInput {
	name: String
	description: String
	price: Float
	imageUrl: String
	categoryId: Int
}
`

const reservationTypeDefs = `
type Reservation {
	id: Int!
	customerName: String!
	phoneNumber: String!
	partySize: Int!
	specialRequest: String
	reservationDate: Time!
}

input ReservationInput {
	customerName: String
	phoneNumber: String
	partySize: Int
	specialRequest: String
	reservationDate: Time
}
`

// Ids fit in Int: postgres ids are int4 SERIAL and the memory store stops at memory.MaxID.
// Party sizes arrive through Int arguments, so they never exceed int32 either.

type categoryResolver struct {
	c models.Category
}

func (r *categoryResolver) ID() int32        { return int32(r.c.ID) }
func (r *categoryResolver) Name() string     { return r.c.Name }
func (r *categoryResolver) ImageURL() string { return r.c.ImageURL }

type menuResolver struct {
	m models.Menu
}

func (r *menuResolver) ID() int32           { return int32(r.m.ID) }
func (r *menuResolver) Name() string        { return r.m.Name }
func (r *menuResolver) Description() string { return r.m.Description }
func (r *menuResolver) Price() float64      { return r.m.Price }
func (r *menuResolver) ImageURL() string    { return r.m.ImageURL }
func (r *menuResolver) CategoryID() int32   { return int32(r.m.CategoryID) }

type reservationResolver struct {
	r models.Reservation
}

func (r *reservationResolver) ID() int32                    { return int32(r.r.ID) }
func (r *reservationResolver) CustomerName() string         { return r.r.CustomerName }
func (r *reservationResolver) PhoneNumber() string          { return r.r.PhoneNumber }
func (r *reservationResolver) PartySize() int32             { return int32(r.r.PartySize) }
func (r *reservationResolver) SpecialRequest() *string      { return r.r.SpecialRequest }
func (r *reservationResolver) ReservationDate() graphql.Time { return graphql.Time{Time: r.r.ReservationDate} }

// Input objects. Omitted fields become zero values, matching the update semantics of the
// repositories.

type CategoryInput struct {
	Name     *string
	ImageURL *string
}

func (in CategoryInput) model() models.Category {
	return models.Category{
		Name:     deref(in.Name),
		ImageURL: deref(in.ImageURL),
	}
}

type MenuInput struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
	CategoryID  *int32
}

func (in MenuInput) model() models.Menu {
	return models.Menu{
		Name:        deref(in.Name),
		Description: deref(in.Description),
		Price:       deref(in.Price),
		ImageURL:    deref(in.ImageURL),
		CategoryID:  int(deref(in.CategoryID)),
	}
}

type ReservationInput struct {
	CustomerName    *string
	PhoneNumber     *string
	PartySize       *int32
	SpecialRequest  *string
	ReservationDate *graphql.Time
}

func (in ReservationInput) model() models.Reservation {
	res := models.Reservation{
		CustomerName:   deref(in.CustomerName),
		PhoneNumber:    deref(in.PhoneNumber),
		PartySize:      int(deref(in.PartySize)),
		SpecialRequest: in.SpecialRequest,
	}
	if in.ReservationDate != nil {
		res.ReservationDate = in.ReservationDate.Time
	}
	return res
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func categoryList(categories []models.Category) *[]*categoryResolver {
	out := make([]*categoryResolver, len(categories))
	for i := range categories {
		out[i] = &categoryResolver{c: categories[i]}
	}
	return &out
}

func menuList(menus []models.Menu) *[]*menuResolver {
	out := make([]*menuResolver, len(menus))
	for i := range menus {
		out[i] = &menuResolver{m: menus[i]}
	}
	return &out
}

func reservationList(reservations []models.Reservation) *[]*reservationResolver {
	out := make([]*reservationResolver, len(reservations))
	for i := range reservations {
		out[i] = &reservationResolver{r: reservations[i]}
	}
	return &out
}
