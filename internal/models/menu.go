package models

// Menu is a single dish on the card. Price is non-negative by convention only.
type Menu struct {
	_ struct{} `dbdef:"table:menus;index:ix_menus_category_id,category_id"`

	ID          int     `db:"id" dbdef:"type:serial;primary_key"`
	Name        string  `db:"name" dbdef:"type:text;not_null;default:''"`
	Description string  `db:"description" dbdef:"type:text;not_null;default:''"`
	Price       float64 `db:"price" dbdef:"type:double precision;not_null"`
	ImageURL    string  `db:"image_url" dbdef:"type:text;not_null;default:''"`
	CategoryID  int     `db:"category_id" dbdef:"type:integer;not_null;foreign_key:categories.id;on_delete:CASCADE"`

	// Relationships
	Category *Category `db:"-" orm:"belongs_to:Category,foreign_key:category_id"`
}

// MenuColumns lists the columns selected for a menu row, in table order.
var MenuColumns = []string{"id", "name", "description", "price", "image_url", "category_id"}
