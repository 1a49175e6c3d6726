package orders

import (
	"time"

	"github.com/shophub/ecommerce-api/internal/apierr"
)

var (
	ErrNotFound       = apierr.NotFound("Order not found")
	ErrEmptyCart      = apierr.BadRequest("Cart is empty.")
	ErrStatusConflict = apierr.Conflict("payment status already settled")
)

type Order struct {
	ID            string        `json:"id"`
	ExternalID    string        `json:"external_id"`
	UserID        string        `json:"user_id"`
	AddressID     string        `json:"address"`
	PaymentMode   PaymentMode   `json:"payment_mode"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentRef    string        `json:"payment_ref,omitempty"`
	Items         []Item        `json:"items"`
	TotalCents    int           `json:"total_cents"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Item captures the price at purchase time; later catalog price changes
// do not rewrite history.
type Item struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int    `json:"price_cents"`
}
