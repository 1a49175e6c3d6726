package demostore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/users"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestOpenSeedsCatalogAndAdmin(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	ps, err := s.Catalog().All(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ps)

	admin, err := s.Users().ByEmail(ctx, SeedAdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, auth.CheckPassword(admin.PasswordHash, SeedAdminPassword))

	assert.True(t, s.FirstRun())
	assert.False(t, s.FirstRun())
}

func TestReloadRestoresState(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	u := &users.User{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users().Create(ctx, u))

	ps, err := s.Catalog().All(ctx)
	require.NoError(t, err)
	_, err = s.Users().AddCartItem(ctx, u.ID, ps[0].ID, 2)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession(ctx, u.ID, "tok-1"))

	// second handle on the same file sees everything the first wrote
	s2, err := Open(path)
	require.NoError(t, err)

	got, err := s2.Users().ByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "x", got.PasswordHash)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, ps[0].ID, got.CartItems[0].ProductID)
	assert.Equal(t, 2, got.CartItems[0].Quantity)

	tok, err := s2.ActiveSession(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestSessionLifecycle(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	tok, err := s.ActiveSession(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SaveSession(ctx, "u-1", "tok-a"))
	tok, err = s.ActiveSession(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-a", tok)

	require.NoError(t, s.ClearSession(ctx, "u-1"))
	tok, err = s.ActiveSession(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestCartMergeAndRemove(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	u := &users.User{Email: "cart@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users().Create(ctx, u))

	items, err := s.Users().AddCartItem(ctx, u.ID, "p-1", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// same product merges instead of appending
	items, err = s.Users().AddCartItem(ctx, u.ID, "p-1", 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	_, err = s.Users().SetCartQuantity(ctx, u.ID, "p-2", 1)
	assert.ErrorIs(t, err, users.ErrNotInCart)

	// removing an absent product is a no-op
	require.NoError(t, s.Users().RemoveCartItem(ctx, u.ID, "p-2"))
	require.NoError(t, s.Users().RemoveCartItem(ctx, u.ID, "p-1"))
	got, err := s.Users().ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CartItems)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	ps, err := s.Catalog().Search(ctx, "WIRELESS")
	require.NoError(t, err)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.Contains(t, p.Name, "Wireless")
	}

	none, err := s.Catalog().Search(ctx, "no-such-product")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderCreateIdempotent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	o := &orders.Order{
		ExternalID:    "ext-1",
		UserID:        "u-1",
		PaymentMode:   orders.ModeCOD,
		PaymentStatus: orders.StatusPending,
		Items:         []orders.Item{{ProductID: "p-1", Quantity: 1, PriceCents: 999}},
		TotalCents:    999,
	}
	first, existed, err := s.Orders().Create(ctx, o)
	require.NoError(t, err)
	assert.False(t, existed)

	retry := &orders.Order{ExternalID: "ext-1", UserID: "u-1"}
	second, existed, err := s.Orders().Create(ctx, retry)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, first.ID, second.ID)

	all, err := s.Orders().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetPaymentStatusGuardsCurrentState(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	o := &orders.Order{ExternalID: "ext-2", UserID: "u-1", PaymentStatus: orders.StatusPending}
	_, _, err := s.Orders().Create(ctx, o)
	require.NoError(t, err)

	require.NoError(t, s.Orders().SetPaymentStatus(ctx, o.ID, orders.StatusPending, orders.StatusSuccess, "pay-1"))

	err = s.Orders().SetPaymentStatus(ctx, o.ID, orders.StatusPending, orders.StatusFailed, "pay-2")
	assert.ErrorIs(t, err, orders.ErrStatusConflict)

	got, err := s.Orders().ByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusSuccess, got.PaymentStatus)
	assert.Equal(t, "pay-1", got.PaymentRef)
}
