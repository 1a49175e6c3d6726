package orders

import (
	"context"

	"github.com/shophub/ecommerce-api/internal/apierr"
	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/events"
	"github.com/shophub/ecommerce-api/internal/users"
)

// IdemCache is an optional fast path in front of the repository's
// external-id check; the database stays the source of truth.
type IdemCache interface {
	KnownExternalID(ctx context.Context, externalID string) (orderID string, ok bool)
	RememberExternalID(ctx context.Context, externalID, orderID string)
}

type Service struct {
	Repo     Repository
	Users    users.Repository
	Catalog  catalog.Repository
	Idem     IdemCache // nil in demo mode
	Events   events.Publisher
	Producer string
}

// CreateInput is the validated checkout request. ExternalID is the
// client-generated idempotency key; retrying with the same key returns
// the original order.
type CreateInput struct {
	ExternalID    string
	AddressID     string
	PaymentMode   PaymentMode
	PaymentStatus PaymentStatus
}

func (s *Service) validate(ctx context.Context, userID string, in *CreateInput) (*users.User, error) {
	if in.ExternalID == "" {
		return nil, apierr.BadRequest("external_id is required")
	}
	if !in.PaymentMode.Valid() {
		return nil, apierr.BadRequest("payment_mode must be COD or ONLINE")
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = StatusPending
	}
	if !in.PaymentStatus.Valid() {
		return nil, apierr.BadRequest("invalid payment_status")
	}
	// Cash on delivery is never pre-paid.
	if in.PaymentMode == ModeCOD {
		in.PaymentStatus = StatusPending
	}

	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	addr, err := s.Users.Address(ctx, in.AddressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID {
		return nil, users.ErrAddressNotFound
	}
	return u, nil
}

// fastPath resolves a replayed external id to its original order, via
// the cache when present and the repository otherwise.
func (s *Service) fastPath(ctx context.Context, externalID string) *Order {
	if s.Idem != nil {
		if orderID, ok := s.Idem.KnownExternalID(ctx, externalID); ok {
			if o, err := s.Repo.ByID(ctx, orderID); err == nil {
				return o
			}
		}
	}
	if o, err := s.Repo.ByExternalID(ctx, externalID); err == nil {
		return o
	}
	return nil
}

// Create places a single-product order.
func (s *Service) Create(ctx context.Context, userID, productID string, qty int, in CreateInput) (*Order, bool, error) {
	if qty < 1 {
		qty = 1
	}
	u, err := s.validate(ctx, userID, &in)
	if err != nil {
		return nil, false, err
	}
	if o := s.fastPath(ctx, in.ExternalID); o != nil {
		return o, true, nil
	}

	p, err := s.Catalog.ByID(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	items := []Item{{ProductID: p.ID, Quantity: qty, PriceCents: p.PriceCents}}
	return s.place(ctx, u, items, in)
}

// CreateFromCart places one order for the whole cart and clears the cart
// on success.
func (s *Service) CreateFromCart(ctx context.Context, userID string, in CreateInput) (*Order, bool, error) {
	u, err := s.validate(ctx, userID, &in)
	if err != nil {
		return nil, false, err
	}
	// Replay wins before the empty-cart check: the first submission
	// cleared the cart, so a retry must still find its order.
	if o := s.fastPath(ctx, in.ExternalID); o != nil {
		return o, true, nil
	}
	if len(u.CartItems) == 0 {
		return nil, false, ErrEmptyCart
	}

	items := make([]Item, 0, len(u.CartItems))
	for _, ci := range u.CartItems {
		p, err := s.Catalog.ByID(ctx, ci.ProductID)
		if err != nil {
			return nil, false, err
		}
		items = append(items, Item{ProductID: p.ID, Quantity: ci.Quantity, PriceCents: p.PriceCents})
	}

	o, existed, err := s.place(ctx, u, items, in)
	if err != nil {
		return nil, false, err
	}
	if !existed {
		if err := s.Users.ClearCart(ctx, userID); err != nil {
			return nil, false, err
		}
	}
	return o, existed, nil
}

func (s *Service) place(ctx context.Context, u *users.User, items []Item, in CreateInput) (*Order, bool, error) {
	total := 0
	for _, it := range items {
		total += it.PriceCents * it.Quantity
	}
	o := &Order{
		ExternalID:    in.ExternalID,
		UserID:        u.ID,
		AddressID:     in.AddressID,
		PaymentMode:   in.PaymentMode,
		PaymentStatus: in.PaymentStatus,
		Items:         items,
		TotalCents:    total,
	}
	o, existed, err := s.Repo.Create(ctx, o)
	if err != nil {
		return nil, false, err
	}
	if existed {
		return o, true, nil
	}

	if s.Idem != nil {
		s.Idem.RememberExternalID(ctx, o.ExternalID, o.ID)
	}
	evItems := make([]events.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		evItems = append(evItems, events.OrderItem{ProductID: it.ProductID, Qty: it.Quantity, PriceCents: it.PriceCents})
	}
	events.Emit(s.Events, s.Producer, events.TypeOrderCreated, o.ID, events.OrderCreatedPayload{
		OrderID:      o.ID,
		ExternalID:   o.ExternalID,
		UserID:       o.UserID,
		Email:        u.Email,
		CustomerName: u.FirstName + " " + u.LastName,
		Items:        evItems,
		TotalCents:   o.TotalCents,
		PaymentMode:  string(o.PaymentMode),
	})
	return o, false, nil
}

// VerifyPayment simulates the payment gateway callback: it settles a
// pending order as paid. Only the order's owner may settle it.
func (s *Service) VerifyPayment(ctx context.Context, userID, orderID, paymentRef string) (*Order, error) {
	o, err := s.Repo.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apierr.Forbidden("order belongs to another user")
	}
	if !CanTransition(o.PaymentStatus, StatusSuccess) {
		return nil, ErrStatusConflict
	}
	if err := s.Repo.SetPaymentStatus(ctx, orderID, o.PaymentStatus, StatusSuccess, paymentRef); err != nil {
		return nil, err
	}
	return s.Repo.ByID(ctx, orderID)
}

func (s *Service) All(ctx context.Context) ([]Order, error) {
	return s.Repo.All(ctx)
}
