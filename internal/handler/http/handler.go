package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/guard"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/product"
	"github.com/vasiliy-maslov/storefront/internal/session"
	"github.com/vasiliy-maslov/storefront/internal/user"
)

// SessionStore is the session as the views see it.
type SessionStore interface {
	guard.SessionState
	Login(ctx context.Context, req user.LoginRequest) (*session.Session, error)
	Register(ctx context.Context, req user.RegisterRequest) (*session.Session, error)
	Logout()
	Current() *session.Session
}

type Catalog interface {
	ListAvailableProducts(ctx context.Context) ([]product.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
}

type Users interface {
	ListUsers(ctx context.Context) ([]user.User, error)
}

type CartStore interface {
	AddItem(p product.Product, qty int) error
	UpdateQuantity(productID int64, qty int)
	RemoveItem(productID int64)
	Clear()
	Lines() []cart.Line
	IsEmpty() bool
	Count() int
	Subtotal() decimal.Decimal
}

type StorefrontHandler struct {
	session SessionStore
	catalog Catalog
	users   Users
	cart    CartStore
	orders  order.Service
}

func NewStorefrontHandler(s SessionStore, catalog Catalog, users Users, c CartStore, orders order.Service) *StorefrontHandler {
	return &StorefrontHandler{
		session: s,
		catalog: catalog,
		users:   users,
		cart:    c,
		orders:  orders,
	}
}

// NewRouter wires the middleware stack and every view route.
func NewRouter(h *StorefrontHandler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	h.RegisterRoutes(router)
	return router
}

func (h *StorefrontHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.handleHealth)
	router.Get("/session", h.handleSession)
	router.Get("/login", h.handleLoginPage)
	router.Post("/login", h.handleLogin)
	router.Post("/register", h.handleRegister)
	router.Post("/logout", h.handleLogout)

	router.Group(func(r chi.Router) {
		r.Use(guard.Require(h.session, ""))

		r.Get("/", h.handleHome)
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)

		r.Get("/cart", h.handleGetCart)
		r.Post("/cart/items", h.handleAddCartItem)
		r.Put("/cart/items/{productId}", h.handleUpdateCartItem)
		r.Delete("/cart/items/{productId}", h.handleRemoveCartItem)
		r.Delete("/cart", h.handleClearCart)

		r.Post("/checkout", h.handleCheckout)
		r.Get("/orders", h.handleListMyOrders)
		r.Get("/orders/number/{orderNumber}", h.handleGetOrderByNumber)
		r.Get("/orders/{id}", h.handleGetOrder)
		r.Post("/orders/{id}/cancel", h.handleCancelOrder)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(guard.Require(h.session, user.RoleAdmin))

		r.Get("/orders", h.handleListAllOrders)
		r.Put("/orders/{id}/status", h.handleUpdateOrderStatus)
		r.Get("/users", h.handleListUsers)
	})
}

func (h *StorefrontHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
