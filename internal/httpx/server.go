package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Mount wires the API surface under /api/v1.
func Mount(r *chi.Mux, pub *PublicHandler, usr *UserHandler, adm *AdminHandler, am *AuthMiddleware) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/public", pub.Register)
		r.Group(func(r chi.Router) {
			r.Use(am.Require)
			r.Post("/auth/logout", usr.logout)
			r.Route("/user", usr.Register)
			r.Post("/payment/verify", usr.verifyPayment)
			r.Route("/admin", func(r chi.Router) {
				r.Use(am.RequireAdmin)
				adm.Register(r)
			})
		})
	})
}
