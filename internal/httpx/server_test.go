package httpx_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/demostore"
	"github.com/shophub/ecommerce-api/internal/events"
	"github.com/shophub/ecommerce-api/internal/httpx"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/profile"
	"github.com/shophub/ecommerce-api/internal/users"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := demostore.Open(filepath.Join(t.TempDir(), "demo.json"))
	require.NoError(t, err)

	tokens := auth.NewManager("test-secret", time.Hour)
	userSvc := &users.Service{
		Repo:     store.Users(),
		Catalog:  store.Catalog(),
		Sessions: store,
		Tokens:   tokens,
		Events:   events.Discard{},
		Producer: "test",
	}
	orderSvc := &orders.Service{
		Repo:     store.Orders(),
		Users:    store.Users(),
		Catalog:  store.Catalog(),
		Events:   events.Discard{},
		Producer: "test",
	}
	profileSvc := &profile.Service{
		Users:   store.Users(),
		Catalog: store.Catalog(),
		Orders:  store.Orders(),
	}

	r := httpx.NewRouter()
	httpx.Mount(r,
		&httpx.PublicHandler{Users: userSvc, Catalog: store.Catalog()},
		&httpx.UserHandler{Users: userSvc, Orders: orderSvc, Profile: profileSvc},
		&httpx.AdminHandler{Users: userSvc, Catalog: store.Catalog(), Orders: orderSvc, Profile: profileSvc},
		&httpx.AuthMiddleware{Tokens: tokens, Sessions: store, Users: store.Users()},
	)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, httpx.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env httpx.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	resp, env := do(t, http.MethodPost, srv.URL+"/api/v1/public/login", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var sess users.Session
	require.NoError(t, json.Unmarshal(b, &sess))
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

func signup(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/public/register", "",
		map[string]string{"first_name": "Jane", "last_name": "Doe", "email": email, "password": "hunter22"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return login(t, srv, email, "hunter22")
}

func firstProductID(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, env := do(t, http.MethodGet, srv.URL+"/api/v1/public/get-all-products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var ps []catalog.Product
	require.NoError(t, json.Unmarshal(b, &ps))
	require.NotEmpty(t, ps)
	return ps[0].ID
}

func TestPublicCatalog(t *testing.T) {
	srv := newServer(t)

	id := firstProductID(t, srv)

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/public/product/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := do(t, http.MethodGet, srv.URL+"/api/v1/public/product/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", env.ErrorMessage)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/public/search?keyword=watch", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterLoginAndDetails(t *testing.T) {
	srv := newServer(t)
	token := signup(t, srv, "jane@example.com")

	resp, env := do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var d profile.Details
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Empty(t, d.CartItems)
}

func TestDuplicateRegistration(t *testing.T) {
	srv := newServer(t)
	signup(t, srv, "jane@example.com")

	resp, env := do(t, http.MethodPost, srv.URL+"/api/v1/public/register", "",
		map[string]string{"first_name": "Janet", "email": "jane@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "User with email already exists.", env.ErrorMessage)
}

func TestCheckoutFlow(t *testing.T) {
	srv := newServer(t)
	token := signup(t, srv, "jane@example.com")
	pid := firstProductID(t, srv)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/user/add-to-cart/"+pid, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/v1/user/add-address", token, map[string]string{
		"name": "Jane Doe", "phone_number": "9999999999", "pin_code": "560001",
		"house_no": "12", "area": "MG Road", "city": "Bengaluru", "state": "Karnataka",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the address id comes back on the user details snapshot
	resp, env := do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var d profile.Details
	require.NoError(t, json.Unmarshal(b, &d))
	require.Len(t, d.Addresses, 1)
	require.Len(t, d.CartItems, 1)

	order := map[string]any{
		"external_id":  "ext-http-1",
		"payment_mode": "COD",
		"address":      d.Addresses[0].ID,
	}
	resp, env = do(t, http.MethodPost, srv.URL+"/api/v1/user/create-order/cart", token, order)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// a retry with the same external id replays the original order even
	// though the first call already cleared the cart
	resp, env = do(t, http.MethodPost, srv.URL+"/api/v1/user/create-order/cart", token, order)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err = json.Marshal(env.Data)
	require.NoError(t, err)
	d = profile.Details{}
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Empty(t, d.CartItems)
	require.Len(t, d.Orders, 1)
	assert.Equal(t, orders.StatusPending, d.Orders[0].PaymentStatus)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	srv := newServer(t)
	token := signup(t, srv, "jane@example.com")

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := do(t, http.MethodGet, srv.URL+"/api/v1/user/user-details", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "session expired", env.ErrorMessage)
}

func TestAdminSurface(t *testing.T) {
	srv := newServer(t)

	// a regular user is kept out
	userToken := signup(t, srv, "jane@example.com")
	resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/admin/get-all-users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := do(t, http.MethodPost, srv.URL+"/api/v1/public/admin-login", "",
		map[string]string{"email": demostore.SeedAdminEmail, "password": demostore.SeedAdminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var sess users.Session
	require.NoError(t, json.Unmarshal(b, &sess))

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/v1/admin/get-all-users", sess.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = do(t, http.MethodPost, srv.URL+"/api/v1/admin/add-product", sess.Token, map[string]any{
		"product_name": "Desk Lamp", "category": "Home", "price_cents": 1999,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err = json.Marshal(env.Data)
	require.NoError(t, err)
	var p catalog.Product
	require.NoError(t, json.Unmarshal(b, &p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, catalog.StatusInStock, p.Status)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/v1/admin/delete/"+p.ID, sess.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
