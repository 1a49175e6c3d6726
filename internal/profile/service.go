// Package profile assembles the aggregated user snapshot the frontends
// render: the user record with cart entries hydrated from the catalog,
// resolved addresses, and order history.
package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/users"
)

// Cache matches redisx.DetailsCache. Writes carry a sequence stamp;
// stale writes lose. Nil Cache disables caching (demo mode).
type Cache interface {
	Get(ctx context.Context, email string) ([]byte, bool)
	Set(ctx context.Context, email string, seq int64, body []byte) error
	Invalidate(ctx context.Context, email string, seq int64) error
	InvalidateCatalog(ctx context.Context) error
}

type Service struct {
	Users   users.Repository
	Catalog catalog.Repository
	Orders  orders.Repository
	Cache   Cache
}

type CartEntry struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

type OrderLine struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Image          string `json:"image"`
	Quantity       int    `json:"quantity"`
	PriceCents     int    `json:"price_cents"`   // price at purchase time
	CurrentPrice   int    `json:"current_price"` // catalog price now
	ProductMissing bool   `json:"product_missing,omitempty"`
}

type OrderDetail struct {
	ID            string               `json:"id"`
	PaymentStatus orders.PaymentStatus `json:"payment_status"`
	PaymentMode   orders.PaymentMode   `json:"payment_mode"`
	TotalCents    int                  `json:"total_cents"`
	Items         []OrderLine          `json:"items"`
	AddressName   string               `json:"address_name,omitempty"`
	AddressCity   string               `json:"address_city,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type Details struct {
	ID           string          `json:"id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	ProfileImage string          `json:"profile_image"`
	Roles        []string        `json:"roles"`
	CartItems    []CartEntry     `json:"cart_items"`
	Addresses    []users.Address `json:"address"`
	Orders       []OrderDetail   `json:"orders"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Details returns the aggregated snapshot as raw JSON, served from the
// cache when fresh.
func (s *Service) Details(ctx context.Context, email string) (json.RawMessage, error) {
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, email); ok {
			return b, nil
		}
	}
	// Stamp before reading: a mutation that lands after this point
	// invalidates with a newer sequence and wins the cache race.
	seq := time.Now().UnixNano()

	d, err := s.build(ctx, email)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		_ = s.Cache.Set(ctx, email, seq, b)
	}
	return b, nil
}

// Invalidate marks the cached snapshot stale. Called after every
// mutating operation so views observe the change on next read.
func (s *Service) Invalidate(ctx context.Context, email string) {
	if s.Cache != nil {
		_ = s.Cache.Invalidate(ctx, email, time.Now().UnixNano())
	}
}

// InvalidateCatalog marks every cached snapshot stale. Called after
// product mutations, which can appear in any user's cart or history.
func (s *Service) InvalidateCatalog(ctx context.Context) {
	if s.Cache != nil {
		_ = s.Cache.InvalidateCatalog(ctx)
	}
}

func (s *Service) build(ctx context.Context, email string) (*Details, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	d := &Details{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Roles:        u.Roles,
		CartItems:    []CartEntry{},
		Addresses:    []users.Address{},
		Orders:       []OrderDetail{},
		CreatedAt:    u.CreatedAt,
	}

	for _, ci := range u.CartItems {
		p, err := s.Catalog.ByID(ctx, ci.ProductID)
		if err != nil {
			// product vanished from the catalog; skip the entry
			continue
		}
		d.CartItems = append(d.CartItems, CartEntry{Product: *p, Quantity: ci.Quantity})
	}

	addrs, err := s.Users.Addresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	d.Addresses = addrs
	byAddr := make(map[string]*users.Address, len(addrs))
	for i := range addrs {
		byAddr[addrs[i].ID] = &addrs[i]
	}

	history, err := s.Orders.ByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for _, o := range history {
		od := OrderDetail{
			ID:            o.ID,
			PaymentStatus: o.PaymentStatus,
			PaymentMode:   o.PaymentMode,
			TotalCents:    o.TotalCents,
			CreatedAt:     o.CreatedAt,
		}
		for _, it := range o.Items {
			line := OrderLine{
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
				PriceCents: it.PriceCents,
			}
			if p, err := s.Catalog.ByID(ctx, it.ProductID); err == nil {
				line.ProductName = p.Name
				line.Image = p.Image
				line.CurrentPrice = p.PriceCents
			} else {
				line.ProductMissing = true
			}
			od.Items = append(od.Items, line)
		}
		if a, ok := byAddr[o.AddressID]; ok {
			od.AddressName = a.Name
			od.AddressCity = a.City
		}
		d.Orders = append(d.Orders, od)
	}
	return d, nil
}
