package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/storefront/internal/order"
)

// OrderResponse is an order as the details page shows it.
type OrderResponse struct {
	order.Order
	CanCancel bool `json:"canCancel"`
}

func newOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{Order: *o, CanCancel: order.CanCancel(o.Status)}
}

func newOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

type AdminOrdersResponse struct {
	Orders   []OrderResponse     `json:"orders"`
	Statuses []order.OrderStatus `json:"statuses"`
}

func (h *StorefrontHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in order.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	created, err := h.orders.PlaceOrder(r.Context(), in)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/orders/%d", created.ID))
	respondWithJSON(w, http.StatusCreated, newOrderResponse(created))
}

func (h *StorefrontHandler) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMyOrders(r.Context())
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newOrderResponses(orders))
}

func (h *StorefrontHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *StorefrontHandler) handleGetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrderByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *StorefrontHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	// показываем заказ уже в новом статусе
	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *StorefrontHandler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAllOrders(r.Context())
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, AdminOrdersResponse{
		Orders:   newOrderResponses(orders),
		Statuses: order.Statuses,
	})
}

func (h *StorefrontHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	var req order.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newOrderResponse(o))
}
