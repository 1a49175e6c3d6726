// Package demostore is the demo-mode backend: one durable JSON file
// standing in for Postgres, Redis, and Kafka. It mirrors the browser
// local-storage shim the storefront demo ran on, keeping demo user
// records (with nested cart items), the catalog, addresses, orders, the
// active session tokens, and the first-run flag under named keys in a
// single document.
//
// Every mutation takes the store lock and persists atomically
// (write-temp-then-rename), so the read-modify-write races of the
// original shim cannot lose updates here.
package demostore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/users"
)

type userRecord struct {
	users.User
	// The credential is persisted in demo mode only; users.User hides it
	// from JSON everywhere else.
	Password string `json:"password"`
}

type document struct {
	Users        []userRecord      `json:"demo_users"`
	Products     []catalog.Product `json:"products"`
	Addresses    []users.Address   `json:"addresses"`
	Orders       []orders.Order    `json:"orders"`
	Sessions     map[string]string `json:"sessions"`
	WelcomeShown bool              `json:"welcome_shown"`
}

type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the store from path, seeding the static demo catalog and
// admin account on first run.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &s.doc); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		s.doc = seedDocument()
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if s.doc.Sessions == nil {
		s.doc.Sessions = map[string]string{}
	}
	for i := range s.doc.Users {
		s.doc.Users[i].PasswordHash = s.doc.Users[i].Password
	}
	return s, nil
}

// FirstRun reports whether the welcome notice has been shown yet, and
// marks it shown.
func (s *Store) FirstRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.WelcomeShown {
		return false
	}
	s.doc.WelcomeShown = true
	_ = s.persistLocked()
	return true
}

func (s *Store) persistLocked() error {
	for i := range s.doc.Users {
		s.doc.Users[i].Password = s.doc.Users[i].PasswordHash
	}
	b, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func cloneUser(rec *userRecord) *users.User {
	u := rec.User
	u.Roles = append([]string(nil), rec.Roles...)
	u.CartItems = append([]users.CartItem(nil), rec.CartItems...)
	u.AddressIDs = append([]string(nil), rec.AddressIDs...)
	return &u
}

func (s *Store) findUser(pred func(*userRecord) bool) *userRecord {
	for i := range s.doc.Users {
		if pred(&s.doc.Users[i]) {
			return &s.doc.Users[i]
		}
	}
	return nil
}

// Users returns the store's users.Repository facet.
func (s *Store) Users() users.Repository { return &userStore{s} }

// Catalog returns the store's catalog.Repository facet.
func (s *Store) Catalog() catalog.Repository { return &catalogStore{s} }

// Orders returns the store's orders.Repository facet.
func (s *Store) Orders() orders.Repository { return &orderStore{s} }

// Store itself is the users.SessionStore.

func (s *Store) SaveSession(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Sessions[userID] = token
	return s.persistLocked()
}

func (s *Store) ActiveSession(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Sessions[userID], nil
}

func (s *Store) ClearSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Sessions, userID)
	return s.persistLocked()
}

type userStore struct{ s *Store }

func (r *userStore) Create(ctx context.Context, u *users.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if len(u.Roles) == 0 {
		u.Roles = []string{users.RoleUser}
	}
	r.s.doc.Users = append(r.s.doc.Users, userRecord{User: *u})
	return r.s.persistLocked()
}

func (r *userStore) ByEmail(ctx context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.Email == email })
	if rec == nil {
		return nil, users.ErrNotFound
	}
	return cloneUser(rec), nil
}

func (r *userStore) ByID(ctx context.Context, id string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == id })
	if rec == nil {
		return nil, users.ErrNotFound
	}
	return cloneUser(rec), nil
}

func (r *userStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.findUser(func(u *userRecord) bool { return u.Email == email }) != nil, nil
}

func (r *userStore) UpdateProfile(ctx context.Context, userID string, firstName, lastName, profileImage *string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == userID })
	if rec == nil {
		return nil, users.ErrNotFound
	}
	if firstName != nil && *firstName != "" {
		rec.FirstName = *firstName
	}
	if lastName != nil && *lastName != "" {
		rec.LastName = *lastName
	}
	if profileImage != nil {
		rec.ProfileImage = *profileImage
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := r.s.persistLocked(); err != nil {
		return nil, err
	}
	return cloneUser(rec), nil
}

func (r *userStore) All(ctx context.Context) ([]users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]users.User, 0, len(r.s.doc.Users))
	for i := range r.s.doc.Users {
		out = append(out, *cloneUser(&r.s.doc.Users[i]))
	}
	return out, nil
}

func (r *userStore) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Users {
		if r.s.doc.Users[i].ID == userID {
			r.s.doc.Users = append(r.s.doc.Users[:i], r.s.doc.Users[i+1:]...)
			delete(r.s.doc.Sessions, userID)
			return r.s.persistLocked()
		}
	}
	return users.ErrNotFound
}

func (r *userStore) AddCartItem(ctx context.Context, userID, productID string, qty int) ([]users.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == userID })
	if rec == nil {
		return nil, users.ErrNotFound
	}
	merged := false
	for i := range rec.CartItems {
		if rec.CartItems[i].ProductID == productID {
			rec.CartItems[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		rec.CartItems = append(rec.CartItems, users.CartItem{ProductID: productID, Quantity: qty})
	}
	if err := r.s.persistLocked(); err != nil {
		return nil, err
	}
	return append([]users.CartItem(nil), rec.CartItems...), nil
}

func (r *userStore) SetCartQuantity(ctx context.Context, userID, productID string, qty int) ([]users.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == userID })
	if rec == nil {
		return nil, users.ErrNotFound
	}
	for i := range rec.CartItems {
		if rec.CartItems[i].ProductID == productID {
			rec.CartItems[i].Quantity = qty
			if err := r.s.persistLocked(); err != nil {
				return nil, err
			}
			return append([]users.CartItem(nil), rec.CartItems...), nil
		}
	}
	return nil, users.ErrNotInCart
}

func (r *userStore) RemoveCartItem(ctx context.Context, userID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == userID })
	if rec == nil {
		return users.ErrNotFound
	}
	for i := range rec.CartItems {
		if rec.CartItems[i].ProductID == productID {
			rec.CartItems = append(rec.CartItems[:i], rec.CartItems[i+1:]...)
			return r.s.persistLocked()
		}
	}
	return nil
}

func (r *userStore) ClearCart(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == userID })
	if rec == nil {
		return users.ErrNotFound
	}
	rec.CartItems = nil
	return r.s.persistLocked()
}

func (r *userStore) AddAddress(ctx context.Context, a *users.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec := r.s.findUser(func(u *userRecord) bool { return u.ID == a.UserID })
	if rec == nil {
		return users.ErrNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	r.s.doc.Addresses = append(r.s.doc.Addresses, *a)
	rec.AddressIDs = append(rec.AddressIDs, a.ID)
	return r.s.persistLocked()
}

func (r *userStore) Addresses(ctx context.Context, userID string) ([]users.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []users.Address
	for _, a := range r.s.doc.Addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *userStore) Address(ctx context.Context, id string) (*users.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.doc.Addresses {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, users.ErrAddressNotFound
}

type catalogStore struct{ s *Store }

func (r *catalogStore) All(ctx context.Context) ([]catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]catalog.Product(nil), r.s.doc.Products...), nil
}

func (r *catalogStore) ByID(ctx context.Context, id string) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.doc.Products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r *catalogStore) Search(ctx context.Context, keyword string) ([]catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kw := strings.ToLower(keyword)
	var out []catalog.Product
	for _, p := range r.s.doc.Products {
		if strings.Contains(strings.ToLower(p.Name), kw) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *catalogStore) Insert(ctx context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.doc.Products = append(r.s.doc.Products, *p)
	return r.s.persistLocked()
}

func (r *catalogStore) Update(ctx context.Context, id string, upd catalog.Update) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Products {
		p := &r.s.doc.Products[i]
		if p.ID != id {
			continue
		}
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.PriceCents != nil {
			p.PriceCents = *upd.PriceCents
		}
		if upd.Category != nil {
			p.Category = *upd.Category
		}
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.Image != nil {
			p.Image = *upd.Image
		}
		if upd.Rating != nil {
			p.Rating = *upd.Rating
		}
		p.UpdatedAt = time.Now().UTC()
		if err := r.s.persistLocked(); err != nil {
			return nil, err
		}
		out := *p
		return &out, nil
	}
	return nil, catalog.ErrNotFound
}

func (r *catalogStore) Delete(ctx context.Context, id string) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Products {
		if r.s.doc.Products[i].ID == id {
			p := r.s.doc.Products[i]
			r.s.doc.Products = append(r.s.doc.Products[:i], r.s.doc.Products[i+1:]...)
			if err := r.s.persistLocked(); err != nil {
				return nil, err
			}
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

type orderStore struct{ s *Store }

func cloneOrder(o *orders.Order) *orders.Order {
	out := *o
	out.Items = append([]orders.Item(nil), o.Items...)
	return &out
}

func (r *orderStore) Create(ctx context.Context, o *orders.Order) (*orders.Order, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Orders {
		if r.s.doc.Orders[i].ExternalID == o.ExternalID {
			return cloneOrder(&r.s.doc.Orders[i]), true, nil
		}
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	r.s.doc.Orders = append(r.s.doc.Orders, *cloneOrder(o))
	if err := r.s.persistLocked(); err != nil {
		return nil, false, err
	}
	return o, false, nil
}

func (r *orderStore) ByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Orders {
		if r.s.doc.Orders[i].ExternalID == externalID {
			return cloneOrder(&r.s.doc.Orders[i]), nil
		}
	}
	return nil, orders.ErrNotFound
}

func (r *orderStore) ByID(ctx context.Context, id string) (*orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Orders {
		if r.s.doc.Orders[i].ID == id {
			return cloneOrder(&r.s.doc.Orders[i]), nil
		}
	}
	return nil, orders.ErrNotFound
}

func (r *orderStore) ByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []orders.Order
	for i := range r.s.doc.Orders {
		if r.s.doc.Orders[i].UserID == userID {
			out = append(out, *cloneOrder(&r.s.doc.Orders[i]))
		}
	}
	return out, nil
}

func (r *orderStore) All(ctx context.Context) ([]orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]orders.Order, 0, len(r.s.doc.Orders))
	for i := range r.s.doc.Orders {
		out = append(out, *cloneOrder(&r.s.doc.Orders[i]))
	}
	return out, nil
}

func (r *orderStore) SetPaymentStatus(ctx context.Context, orderID string, from, to orders.PaymentStatus, paymentRef string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.doc.Orders {
		o := &r.s.doc.Orders[i]
		if o.ID != orderID {
			continue
		}
		if o.PaymentStatus != from {
			return orders.ErrStatusConflict
		}
		o.PaymentStatus = to
		o.PaymentRef = paymentRef
		o.UpdatedAt = time.Now().UTC()
		return r.s.persistLocked()
	}
	return orders.ErrNotFound
}
