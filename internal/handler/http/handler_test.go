package http

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/client"
	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/session"
	"github.com/vasiliy-maslov/storefront/internal/storage"
	"github.com/vasiliy-maslov/storefront/internal/token"
	"github.com/vasiliy-maslov/storefront/internal/user"
)

type app struct {
	router   http.Handler
	session  *session.Store
	storage  *storage.Memory
	cart     *cart.Store
	upstream *httptest.Server
}

// newApp wires the real stores and gateway client against a fake API.
func newApp(t *testing.T, api chi.Router) *app {
	t.Helper()

	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	st := storage.NewMemory()
	apiClient := client.New(config.API{BaseURL: upstream.URL + "/api/v1", Timeout: 5 * time.Second})
	sessions := session.NewStore(st, apiClient)
	apiClient.UseSession(sessions)
	sessions.Restore()

	carts := cart.NewStore()
	orders := order.NewService(apiClient, carts, sessions)
	h := NewStorefrontHandler(sessions, apiClient, apiClient, carts, orders)

	return &app{
		router:   NewRouter(h),
		session:  sessions,
		storage:  st,
		cart:     carts,
		upstream: upstream,
	}
}

func (a *app) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *app) login(t *testing.T) {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/login", `{"email":"ann@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func signToken(t *testing.T, role user.Role) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ann@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return raw
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

// fakeAPI answers login for the given role and serves an active product 1
// and an inactive product 2.
func fakeAPI(t *testing.T, role user.Role) chi.Router {
	t.Helper()
	raw := signToken(t, role)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"token":%q,"type":"Bearer","id":12,"name":"Ann","email":"ann@example.com","role":%q}`, raw, role))
	})
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "2" {
			writeJSON(w, http.StatusOK, `{"id":2,"name":"Old Mouse","price":9.90,"stock":5,"active":false}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":1,"name":"Keyboard","price":49.90,"stock":3,"active":true}`)
	})
	return r
}

func TestRouter_Guard(t *testing.T) {
	a := newApp(t, fakeAPI(t, user.RoleUser))

	rr := a.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(t, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = a.do(t, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	a.login(t)

	rr = a.do(t, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = a.do(t, http.MethodGet, "/admin/users", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestRouter_PendingWhileRestoring(t *testing.T) {
	st := storage.NewMemory()
	sessions := session.NewStore(st, client.NewWithHTTPClient("http://127.0.0.1:0", http.DefaultClient))
	h := NewStorefrontHandler(sessions, nil, nil, cart.NewStore(), nil)
	router := NewRouter(h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"loading"}`, rr.Body.String())
}

func TestStorefront_AdminLogin(t *testing.T) {
	api := fakeAPI(t, user.RoleAdmin)
	api.Get("/api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":12,"name":"Ann","email":"ann@example.com","role":"ADMIN"}]`)
	})
	a := newApp(t, api)

	a.login(t)

	rr := a.do(t, http.MethodGet, "/session", "")
	assert.JSONEq(t, `{"loading":false,"authenticated":true,"user":{"id":12,"name":"Ann","email":"ann@example.com","role":"ADMIN"}}`, rr.Body.String())

	rr = a.do(t, http.MethodGet, "/admin/users", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var users []user.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, user.RoleAdmin, users[0].Role)
}

func TestStorefront_LoginRejected(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid email or password"}`)
	})
	a := newApp(t, r)

	rr := a.do(t, http.MethodPost, "/login", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, rr.Body.String())

	rr = a.do(t, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email"`)
}

func TestStorefront_CartClampsToStock(t *testing.T) {
	a := newApp(t, fakeAPI(t, user.RoleUser))
	a.login(t)

	rr := a.do(t, http.MethodPost, "/cart/items", `{"productId":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = a.do(t, http.MethodPost, "/cart/items", `{"productId":1,"quantity":5}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var got CartResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "149.70", got.Subtotal)
	assert.True(t, got.CanCheckout)

	rr = a.do(t, http.MethodPut, "/cart/items/1", `{"quantity":0}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Count)

	rr = a.do(t, http.MethodPost, "/cart/items", fmt.Sprintf(`{"productId":1,"quantity":%d}`, math.MaxInt))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Count)

	rr = a.do(t, http.MethodPost, "/cart/items", `{"productId":2,"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Old Mouse is not available"}`, rr.Body.String())
	assert.Equal(t, 3, a.cart.Count())

	rr = a.do(t, http.MethodPut, "/cart/items/abc", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(t, http.MethodDelete, "/cart", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 0, got.Count)
	assert.False(t, got.CanCheckout)
}

func TestStorefront_Checkout(t *testing.T) {
	tests := []struct {
		name         string
		address      string
		createStatus int
		createBody   string
		wantStatus   int
		wantCalls    int32
		wantCart     int
		wantLoggedIn bool
	}{
		{
			name:         "success",
			address:      "221B Baker Street, London",
			createStatus: http.StatusCreated,
			createBody:   `{"id":100,"orderNumber":"ORD-100","userId":12,"status":"PENDING","totalAmount":99.80}`,
			wantStatus:   http.StatusCreated,
			wantCalls:    1,
			wantCart:     0,
			wantLoggedIn: true,
		},
		{
			name:         "short_address_stays_local",
			address:      "Baker St.",
			wantStatus:   http.StatusBadRequest,
			wantCalls:    0,
			wantCart:     2,
			wantLoggedIn: true,
		},
		{
			name:         "insufficient_stock",
			address:      "221B Baker Street, London",
			createStatus: http.StatusBadRequest,
			createBody:   `{"message":"Insufficient stock for product: Keyboard"}`,
			wantStatus:   http.StatusBadRequest,
			wantCalls:    1,
			wantCart:     2,
			wantLoggedIn: true,
		},
		{
			name:         "empty_create_response",
			address:      "221B Baker Street, London",
			createStatus: http.StatusCreated,
			createBody:   "",
			wantStatus:   http.StatusInternalServerError,
			wantCalls:    1,
			wantCart:     2,
			wantLoggedIn: true,
		},
		{
			name:         "unauthorized_logs_out",
			address:      "221B Baker Street, London",
			createStatus: http.StatusUnauthorized,
			createBody:   `{"message":"Token expired"}`,
			wantStatus:   http.StatusSeeOther,
			wantCalls:    1,
			wantCart:     2,
			wantLoggedIn: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			api := fakeAPI(t, user.RoleUser)
			api.Post("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.createStatus, tt.createBody)
			})
			a := newApp(t, api)
			a.login(t)

			rr := a.do(t, http.MethodPost, "/cart/items", `{"productId":1,"quantity":2}`)
			require.Equal(t, http.StatusOK, rr.Code)

			rr = a.do(t, http.MethodPost, "/checkout", fmt.Sprintf(`{"shippingAddress":%q}`, tt.address))

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCalls, calls.Load())
			assert.Equal(t, tt.wantCart, a.cart.Count())
			assert.Equal(t, tt.wantLoggedIn, a.session.IsAuthenticated())

			_, hasToken, err := a.storage.Get(session.TokenKey)
			require.NoError(t, err)
			_, hasUser, err := a.storage.Get(session.UserKey)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLoggedIn, hasToken)
			assert.Equal(t, tt.wantLoggedIn, hasUser)

			switch tt.name {
			case "success":
				assert.Equal(t, "/orders/100", rr.Header().Get("Location"))
			case "insufficient_stock":
				assert.JSONEq(t, tt.createBody, rr.Body.String())
			case "unauthorized_logs_out":
				assert.Equal(t, "/login", rr.Header().Get("Location"))
			}
		})
	}
}

func TestStorefront_OrderDetailsCanCancel(t *testing.T) {
	var cancelled atomic.Int32
	api := fakeAPI(t, user.RoleUser)
	api.Get("/api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		status := order.StatusShipped
		if chi.URLParam(r, "id") == "8" {
			status = order.StatusPending
			if cancelled.Load() > 0 {
				status = order.StatusCancelled
			}
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"id":%s,"orderNumber":"ORD-%s","userId":12,"status":%q,"totalAmount":10}`, chi.URLParam(r, "id"), chi.URLParam(r, "id"), status))
	})
	api.Delete("/api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		cancelled.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	a := newApp(t, api)
	a.login(t)

	rr := a.do(t, http.MethodGet, "/orders/7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var shipped OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &shipped))
	assert.Equal(t, order.StatusShipped, shipped.Status)
	assert.False(t, shipped.CanCancel)

	rr = a.do(t, http.MethodPost, "/orders/7/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, int32(0), cancelled.Load())

	rr = a.do(t, http.MethodPost, "/orders/8/cancel", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var after OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &after))
	assert.Equal(t, order.StatusCancelled, after.Status)
	assert.False(t, after.CanCancel)
	assert.Equal(t, int32(1), cancelled.Load())
}

func TestStorefront_NetworkError(t *testing.T) {
	a := newApp(t, fakeAPI(t, user.RoleUser))
	a.login(t)

	a.upstream.Close()

	rr := a.do(t, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"Network error. Please check your connection."}`, rr.Body.String())
	assert.True(t, a.session.IsAuthenticated())
}

func TestStorefront_Logout(t *testing.T) {
	a := newApp(t, fakeAPI(t, user.RoleUser))
	a.login(t)

	rr := a.do(t, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, a.session.IsAuthenticated())

	rr = a.do(t, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}
