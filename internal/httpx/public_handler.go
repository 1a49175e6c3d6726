package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/ecommerce-api/internal/catalog"
	"github.com/shophub/ecommerce-api/internal/users"
)

type PublicHandler struct {
	Users   *users.Service
	Catalog catalog.Repository
}

func (h *PublicHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/admin-login", h.adminLogin)
	r.Get("/get-all-products", h.listProducts)
	r.Get("/product/{id}", h.getProduct)
	r.Get("/search", h.search)
}

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *PublicHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		badRequest(w, "first_name, email and password are required")
		return
	}
	if err := h.Users.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "User registered successfully", nil)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *PublicHandler) login(w http.ResponseWriter, r *http.Request) {
	h.loginWith(w, r, h.Users.Login)
}

func (h *PublicHandler) adminLogin(w http.ResponseWriter, r *http.Request) {
	h.loginWith(w, r, h.Users.AdminLogin)
}

func (h *PublicHandler) loginWith(w http.ResponseWriter, r *http.Request,
	login func(ctx context.Context, email, password string) (*users.Session, error)) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(w, "email and password are required")
		return
	}
	session, err := login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Login successful", session)
}

func (h *PublicHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.All(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Products fetched", ps)
}

func (h *PublicHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Product fetched", p)
}

func (h *PublicHandler) search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		badRequest(w, "keyword is required")
		return
	}
	ps, err := h.Catalog.Search(r.Context(), keyword)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondOK(w, "Search results", ps)
}
