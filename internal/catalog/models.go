package catalog

import (
	"time"

	"github.com/shophub/ecommerce-api/internal/apierr"
)

var ErrNotFound = apierr.NotFound("Product not found")

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"product_name"`
	Description string    `json:"product_description"`
	PriceCents  int       `json:"price_cents"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Image       string    `json:"image"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Update carries a partial product update; nil fields are left as-is.
type Update struct {
	Name        *string
	Description *string
	PriceCents  *int
	Category    *string
	Status      *Status
	Image       *string
	Rating      *float64
}
