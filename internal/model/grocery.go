package model

import "time"

type Grocery struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Name          string     `json:"name"`
	Quantity      float64    `json:"quantity"`
	Unit          string     `json:"unit"`
	Price         Money      `json:"price"`
	Category      string     `json:"category"`
	PurchasedDate time.Time  `json:"purchased_date"`
	ExpiryDate    time.Time  `json:"expiry_date"`
	IsWasted      bool       `json:"is_wasted"`
	WastedDate    *time.Time `json:"wasted_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

// GroceryInput carries the fields of a new grocery record.
type GroceryInput struct {
	Name          string
	PurchasedDate time.Time
	ExpiryDate    time.Time
	Price         Money
	Quantity      float64
	Unit          string
	Category      string
	IsWasted      bool
}

// GroceryUpdate carries the mutable fields of an existing grocery record.
// Category and the wasted state are deliberately absent.
type GroceryUpdate struct {
	Name          string
	ExpiryDate    time.Time
	Price         Money
	PurchasedDate time.Time
	Quantity      float64
	Unit          string
}
