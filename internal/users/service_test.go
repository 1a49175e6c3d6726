package users_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/ecommerce-api/internal/apierr"
	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/demostore"
	"github.com/shophub/ecommerce-api/internal/events"
	"github.com/shophub/ecommerce-api/internal/users"
)

func newService(t *testing.T) (*users.Service, *demostore.Store) {
	t.Helper()
	store, err := demostore.Open(filepath.Join(t.TempDir(), "demo.json"))
	require.NoError(t, err)
	svc := &users.Service{
		Repo:     store.Users(),
		Catalog:  store.Catalog(),
		Sessions: store,
		Tokens:   auth.NewManager("test-secret", time.Hour),
		Events:   events.Discard{},
		Producer: "test",
	}
	return svc, store
}

func register(t *testing.T, svc *users.Service, email string) *users.Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "Jane", "Doe", email, "hunter22"))
	sess, err := svc.Login(ctx, email, "hunter22")
	require.NoError(t, err)
	return sess
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, "jane@example.com", sess.User.Email)
	assert.Equal(t, []string{users.RoleUser}, sess.User.Roles)

	claims, err := svc.Tokens.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	active, err := store.ActiveSession(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, active)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Jane", "Doe", "  Jane@Example.COM ", "hunter22"))

	sess, err := svc.Login(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", sess.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Jane", "Doe", "jane@example.com", "hunter22"))
	err := svc.Register(ctx, "Janet", "Doe", "jane@example.com", "other-pass")
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	assert.Equal(t, 409, apierr.StatusOf(err))
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Jane", "Doe", "jane@example.com", "hunter22"))
	u, err := store.Users().ByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	// unknown email and wrong password report the same error
	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	active, err := store.ActiveSession(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAdminLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.AdminLogin(ctx, demostore.SeedAdminEmail, demostore.SeedAdminPassword)
	require.NoError(t, err)
	assert.True(t, sess.User.IsAdmin())

	require.NoError(t, svc.Register(ctx, "Jane", "Doe", "jane@example.com", "hunter22"))
	_, err = svc.AdminLogin(ctx, "jane@example.com", "hunter22")
	assert.ErrorIs(t, err, users.ErrNotAdmin)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	require.NoError(t, svc.Logout(ctx, sess.User.ID))

	active, err := store.ActiveSession(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAddToCart(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	ps, err := store.Catalog().All(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ps), 2)

	items, err := svc.AddToCart(ctx, sess.User.ID, ps[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ps[0].ID, items[0].ProductID)

	// a second product grows the cart, the same product merges
	items, err = svc.AddToCart(ctx, sess.User.ID, ps[1].ID, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = svc.AddToCart(ctx, sess.User.ID, ps[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	ps, err := store.Catalog().All(ctx)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, sess.User.ID, ps[0].ID, 0)
	assert.Equal(t, 400, apierr.StatusOf(err))

	_, err = svc.AddToCart(ctx, sess.User.ID, "no-such-product", 1)
	assert.Equal(t, 404, apierr.StatusOf(err))

	u, err := store.Users().ByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Empty(t, u.CartItems)
}

func TestUpdateCartQuantity(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	ps, err := store.Catalog().All(ctx)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, sess.User.ID, ps[0].ID, 2)
	require.NoError(t, err)

	items, err := svc.UpdateCartQuantity(ctx, sess.User.ID, ps[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	// rejected update leaves the cart untouched
	_, err = svc.UpdateCartQuantity(ctx, sess.User.ID, ps[0].ID, 0)
	assert.Equal(t, 400, apierr.StatusOf(err))
	u, err := store.Users().ByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, u.CartItems[0].Quantity)

	_, err = svc.UpdateCartQuantity(ctx, sess.User.ID, ps[1].ID, 1)
	assert.ErrorIs(t, err, users.ErrNotInCart)
}

func TestRemoveCartItem(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	ps, err := store.Catalog().All(ctx)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, sess.User.ID, ps[0].ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveCartItem(ctx, sess.User.ID, ps[0].ID))
	// removing again is not an error
	require.NoError(t, svc.RemoveCartItem(ctx, sess.User.ID, ps[0].ID))

	u, err := store.Users().ByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Empty(t, u.CartItems)
}

// memSessions stands apart from the user repository, the way the Redis
// session store does in production.
type memSessions struct{ m map[string]string }

func (s *memSessions) SaveSession(ctx context.Context, userID, token string) error {
	s.m[userID] = token
	return nil
}

func (s *memSessions) ActiveSession(ctx context.Context, userID string) (string, error) {
	return s.m[userID], nil
}

func (s *memSessions) ClearSession(ctx context.Context, userID string) error {
	delete(s.m, userID)
	return nil
}

func TestDeleteUserRevokesSession(t *testing.T) {
	svc, _ := newService(t)
	sessions := &memSessions{m: map[string]string{}}
	svc.Sessions = sessions
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	active, err := sessions.ActiveSession(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotEmpty(t, active)

	require.NoError(t, svc.DeleteUser(ctx, sess.User.ID))

	active, err = sessions.ActiveSession(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAddAddress(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sess := register(t, svc, "jane@example.com")
	a, err := svc.AddAddress(ctx, sess.User.ID, &users.Address{
		Name:        "Jane Doe",
		PhoneNumber: "9999999999",
		PinCode:     "560001",
		HouseNo:     "12",
		Area:        "MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "India", a.Country)

	u, err := store.Users().ByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, u.AddressIDs)

	_, err = svc.AddAddress(ctx, "no-such-user", &users.Address{Name: "X"})
	assert.ErrorIs(t, err, users.ErrNotFound)
}
