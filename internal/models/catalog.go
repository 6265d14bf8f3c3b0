package models

import (
	"time"
)

// CatalogCondiment is a condiment offered for a catalog product
type CatalogCondiment struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Product is a catalog entry as returned by the catalog lookup
type Product struct {
	ID          string             `json:"id"`
	ChefID      uint64             `json:"chef_id"`
	Name        string             `json:"name"`
	Price       float64            `json:"price"`
	IsAvailable bool               `json:"is_available"`
	Condiments  []CatalogCondiment `json:"condiments"`
}

// CartItem is one line of a customer cart
type CartItem struct {
	ID           uint64
	CustomerID   uint64
	ProductID    string
	Quantity     int
	CondimentIDs []string
	AddedAt      time.Time
}
