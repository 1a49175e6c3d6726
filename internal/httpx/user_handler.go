package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/profile"
	"github.com/shophub/ecommerce-api/internal/users"
)

type UserHandler struct {
	Users   *users.Service
	Orders  *orders.Service
	Profile *profile.Service
}

func (h *UserHandler) Register(r chi.Router) {
	r.Get("/user-details", h.userDetails)
	r.Post("/add-to-cart/{id}", h.addToCart)
	r.Put("/update-cart/{id}", h.updateCart)
	r.Post("/delete-cart/{id}", h.deleteCart)
	r.Post("/create-order/{id}", h.createOrder)
	r.Post("/create-order/cart", h.createOrderFromCart)
	r.Post("/add-address", h.addAddress)
	r.Put("/update-profile", h.updateProfile)
}

func (h *UserHandler) userDetails(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	details, err := h.Profile.Details(r.Context(), p.Email)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "User details fetched", details)
}

type cartReq struct {
	Quantity int `json:"quantity"`
}

func (h *UserHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	qty := 1
	if r.ContentLength > 0 {
		var req cartReq
		if err := decode(r, &req); err != nil {
			respondErr(w, err)
			return
		}
		if req.Quantity > 0 {
			qty = req.Quantity
		}
	}
	items, err := h.Users.AddToCart(r.Context(), p.UserID, chi.URLParam(r, "id"), qty)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Successfully added to cart", map[string]any{"cart_items": items})
}

func (h *UserHandler) updateCart(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req cartReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	items, err := h.Users.UpdateCartQuantity(r.Context(), p.UserID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Cart quantity updated", map[string]any{"cart_items": items})
}

func (h *UserHandler) deleteCart(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	if err := h.Users.RemoveCartItem(r.Context(), p.UserID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Item removed from cart", nil)
}

type orderReq struct {
	ExternalID    string `json:"external_id"`
	PaymentMode   string `json:"payment_mode"`
	PaymentStatus string `json:"payment_status"`
	Address       string `json:"address"`
	Quantity      int    `json:"quantity"`
}

func (r orderReq) input() orders.CreateInput {
	return orders.CreateInput{
		ExternalID:    r.ExternalID,
		AddressID:     r.Address,
		PaymentMode:   orders.PaymentMode(r.PaymentMode),
		PaymentStatus: orders.PaymentStatus(r.PaymentStatus),
	}
}

type orderResp struct {
	Order      *orders.Order `json:"order"`
	Idempotent bool          `json:"idempotent"`
}

func (h *UserHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req orderReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	o, existed, err := h.Orders.Create(r.Context(), p.UserID, chi.URLParam(r, "id"), req.Quantity, req.input())
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Order created successfully", orderResp{Order: o, Idempotent: existed})
}

func (h *UserHandler) createOrderFromCart(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req orderReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	o, existed, err := h.Orders.CreateFromCart(r.Context(), p.UserID, req.input())
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Order created from cart successfully", orderResp{Order: o, Idempotent: existed})
}

type addressReq struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	PinCode     string `json:"pin_code"`
	HouseNo     string `json:"house_no"`
	Area        string `json:"area"`
	Landmark    string `json:"landmark"`
	City        string `json:"city"`
	State       string `json:"state"`
}

func (h *UserHandler) addAddress(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req addressReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.Name == "" || req.PhoneNumber == "" || req.PinCode == "" ||
		req.HouseNo == "" || req.Area == "" || req.City == "" || req.State == "" {
		badRequest(w, "missing required address fields")
		return
	}
	a, err := h.Users.AddAddress(r.Context(), p.UserID, &users.Address{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		PinCode:     req.PinCode,
		HouseNo:     req.HouseNo,
		Area:        req.Area,
		Landmark:    req.Landmark,
		City:        req.City,
		State:       req.State,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Address added successfully", a)
}

type profileReq struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	ProfileImage *string `json:"profile_image"`
}

func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req profileReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	u, err := h.Users.UpdateProfile(r.Context(), p.UserID, req.FirstName, req.LastName, req.ProfileImage)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Profile updated successfully", u)
}

type verifyReq struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

// verifyPayment simulates the payment gateway callback.
func (h *UserHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	var req verifyReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.OrderID == "" {
		badRequest(w, "order_id is required")
		return
	}
	o, err := h.Orders.VerifyPayment(r.Context(), p.UserID, req.OrderID, req.PaymentRef)
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Payment verified", o)
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r.Context())
	if err := h.Users.Logout(r.Context(), p.UserID); err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.Invalidate(r.Context(), p.Email)
	respondOK(w, "Logged out successfully", nil)
}
