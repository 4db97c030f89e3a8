package model

import "time"

type ShoppingList struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingListItem struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Bought    bool      `json:"bought"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversion holds what the user enters when turning a shopping-list item
// into an inventory record.
type Conversion struct {
	Price      Money
	Category   string
	ExpiryDate time.Time
}
