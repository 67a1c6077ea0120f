package models

import "time"

// The seed rows mirror the ones inserted by the initial migration. The in-memory backend and the
// tests start from them, so a fresh store of either kind hands out id 4 next.

func SeedCategories() []Category {
	return []Category{
		{ID: 1, Name: "Appetizers", ImageURL: "https://example.com/categories/appetizers.jpg"},
		{ID: 2, Name: "Main Course", ImageURL: "https://example.com/categories/main-course.jpg"},
		{ID: 3, Name: "Desserts", ImageURL: "https://example.com/categories/desserts.jpg"},
	}
}

func SeedMenus() []Menu {
	return []Menu{
		{ID: 1, CategoryID: 1, Name: "Chicken Wings", Description: "Spicy chicken wings served with blue cheese dip.", ImageURL: "https://example.com/menus/chicken-wings.jpg", Price: 9.99},
		{ID: 2, CategoryID: 2, Name: "Steak", Description: "Grilled steak with mashed potatoes and vegetables.", ImageURL: "https://example.com/menus/steak.jpg", Price: 24.5},
		{ID: 3, CategoryID: 3, Name: "Chocolate Cake", Description: "Decadent chocolate cake with a scoop of vanilla ice cream.", ImageURL: "https://example.com/menus/chocolate-cake.jpg", Price: 6.95},
	}
}

func SeedReservations() []Reservation {
	return []Reservation{
		{ID: 1, CustomerName: "John Doe", PhoneNumber: "555-123-4567", PartySize: 2, SpecialRequest: strPtr("No nuts in the dishes, please."), ReservationDate: time.Date(2024, 12, 27, 21, 44, 55, 0, time.UTC)},
		{ID: 2, CustomerName: "Jane Smith", PhoneNumber: "555-987-6543", PartySize: 4, SpecialRequest: strPtr("Gluten-free options required."), ReservationDate: time.Date(2024, 12, 30, 21, 44, 55, 0, time.UTC)},
		{ID: 3, CustomerName: "Michael Johnson", PhoneNumber: "555-789-0123", PartySize: 6, SpecialRequest: strPtr("Celebrating a birthday."), ReservationDate: time.Date(2025, 1, 3, 21, 44, 55, 0, time.UTC)},
	}
}

func strPtr(s string) *string {
	return &s
}
