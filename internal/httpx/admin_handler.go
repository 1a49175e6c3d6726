package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/orders"
	"github.com/shophub/ecommerce-api/internal/profile"
	"github.com/shophub/ecommerce-api/internal/users"
)

type AdminHandler struct {
	Users   *users.Service
	Catalog catalog.Repository
	Orders  *orders.Service
	Profile *profile.Service
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/get-all-users", h.listUsers)
	r.Get("/get-all-products", h.listProducts)
	r.Get("/get-all-order", h.listOrders)
	r.Post("/add-product", h.addProduct)
	r.Put("/update-product/{id}", h.updateProduct)
	r.Delete("/delete/{id}", h.deleteProduct)
	r.Post("/delete-user/{id}", h.deleteUser)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.Users.Users(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Users fetched", us)
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.All(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Products fetched", ps)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	os, err := h.Orders.All(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Orders fetched", os)
}

type productReq struct {
	Name        string         `json:"product_name"`
	Description string         `json:"product_description"`
	PriceCents  int            `json:"price_cents"`
	Category    string         `json:"category"`
	Status      catalog.Status `json:"status"`
	Image       string         `json:"image"`
	Rating      float64        `json:"rating"`
}

func (h *AdminHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.Name == "" || req.Category == "" || req.PriceCents <= 0 {
		badRequest(w, "product_name, category and a positive price_cents are required")
		return
	}
	if req.Status == "" {
		req.Status = catalog.StatusInStock
	}
	if !req.Status.Valid() {
		badRequest(w, "invalid status")
		return
	}
	p := &catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Status:      req.Status,
		Image:       req.Image,
		Rating:      req.Rating,
	}
	if err := h.Catalog.Insert(r.Context(), p); err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.InvalidateCatalog(r.Context())
	respondOK(w, "Product added successfully", p)
}

type productUpdateReq struct {
	Name        *string         `json:"product_name"`
	Description *string         `json:"product_description"`
	PriceCents  *int            `json:"price_cents"`
	Category    *string         `json:"category"`
	Status      *catalog.Status `json:"status"`
	Image       *string         `json:"image"`
	Rating      *float64        `json:"rating"`
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productUpdateReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		badRequest(w, "invalid status")
		return
	}
	if req.PriceCents != nil && *req.PriceCents <= 0 {
		badRequest(w, "price_cents must be positive")
		return
	}
	p, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), catalog.Update{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Status:      req.Status,
		Image:       req.Image,
		Rating:      req.Rating,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	// cached user snapshots embed product names and prices
	h.Profile.InvalidateCatalog(r.Context())
	respondOK(w, "Product updated successfully", p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	h.Profile.InvalidateCatalog(r.Context())
	respondOK(w, "Product deleted successfully", p)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "User deleted successfully", nil)
}
