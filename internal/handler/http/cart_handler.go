package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/product"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items       []cart.Line `json:"items"`
	Count       int         `json:"count"`
	Subtotal    string      `json:"subtotal"`
	CanCheckout bool        `json:"canCheckout"`
}

func (h *StorefrontHandler) cartResponse() CartResponse {
	return CartResponse{
		Items:       h.cart.Lines(),
		Count:       h.cart.Count(),
		Subtotal:    h.cart.Subtotal().StringFixed(2),
		CanCheckout: !h.cart.IsEmpty(),
	}
}

func (h *StorefrontHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		products []product.Product
		err      error
	)
	if category != "" {
		products, err = h.catalog.ListProductsByCategory(r.Context(), category)
	} else {
		products, err = h.catalog.ListAvailableProducts(r.Context())
	}
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *StorefrontHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *StorefrontHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cartResponse())
}

// handleAddCartItem берёт свежие данные товара из API перед добавлением
func (h *StorefrontHandler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	if err := validation.Struct(req, nil); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	// в корзину попадают только товары из витрины
	if !p.Active {
		log.Info().Int64("product_id", p.ID).Msg("Inactive product not added to cart")
		respondWithAPIError(w, r, apierr.Validation(p.Name+" is not available"))
		return
	}

	if err := h.cart.AddItem(*p, req.Quantity); err != nil {
		log.Info().Err(err).Int64("product_id", p.ID).Msg("Item not added to cart")
		respondWithAPIError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.cartResponse())
}

func (h *StorefrontHandler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productId")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	var req UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	h.cart.UpdateQuantity(productID, req.Quantity)
	respondWithJSON(w, http.StatusOK, h.cartResponse())
}

func (h *StorefrontHandler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productId")
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	h.cart.RemoveItem(productID)
	respondWithJSON(w, http.StatusOK, h.cartResponse())
}

func (h *StorefrontHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondWithJSON(w, http.StatusOK, h.cartResponse())
}
