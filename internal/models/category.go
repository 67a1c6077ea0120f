package models

// Category groups menu items on the card (appetizers, mains, ...)
type Category struct {
	_ struct{} `dbdef:"table:categories"`

	ID       int    `db:"id" dbdef:"type:serial;primary_key"`
	Name     string `db:"name" dbdef:"type:text;not_null;default:''"`
	ImageURL string `db:"image_url" dbdef:"type:text;not_null;default:''"`

	// Relationships
	Menus []Menu `db:"-" orm:"has_many:Menu,foreign_key:category_id"`
}

// CategoryColumns lists the columns selected for a category row, in table order.
var CategoryColumns = []string{"id", "name", "image_url"}
