package domain

import (
	"errors"
	"time"
)

// ErrNotFound is wrapped by every "no such record" error in the system.
var ErrNotFound = errors.New("not found")

// Product represents a product in the catalog
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Image       string    `json:"image" db:"image"`
	Category    string    `json:"category" db:"category"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductFields is the sanitized, storable form of the six user-editable
// product fields.
type ProductFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// Fields returns the user-editable part of p.
func (p *Product) Fields() ProductFields {
	return ProductFields{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
	}
}

// Category summarizes one category value found in the catalog
type Category struct {
	Name         string `json:"name" db:"category"`
	ProductCount int    `json:"product_count" db:"product_count"`
}
