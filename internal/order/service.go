package order

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/guard"
	"github.com/vasiliy-maslov/storefront/internal/user"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

const (
	msgAddressTooShort = "address too short"
	msgCartEmpty       = "cart is empty"
	msgNotLoggedIn     = "Please log in to continue."
	msgCannotCancel    = "order can no longer be cancelled"
)

// API is the part of the gateway client the order flow calls.
type API interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
	CancelOrder(ctx context.Context, id int64) error
}

// Cart is what checkout needs from the cart store.
type Cart interface {
	Lines() []cart.Line
	IsEmpty() bool
	Clear()
}

// Session gives the logged-in user, or nil.
type Session interface {
	User() *user.User
}

type Service interface {
	PlaceOrder(ctx context.Context, in CheckoutInput) (*Order, error)
	CancelOrder(ctx context.Context, id int64) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListMyOrders(ctx context.Context) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
}

type service struct {
	api     API
	cart    Cart
	session Session
}

func NewService(api API, c Cart, s Session) Service {
	return &service{
		api:     api,
		cart:    c,
		session: s,
	}
}

func (s *service) currentUser() (*user.User, error) {
	u := s.session.User()
	if u == nil {
		return nil, &apierr.Error{Kind: apierr.KindAuth, Message: msgNotLoggedIn, Redirect: guard.LoginPath}
	}
	return u, nil
}

// PlaceOrder turns the cart into an order. All local checks run before any
// network call; the cart is only cleared once the API accepted the order.
// There is no idempotency key, so submitting twice creates two orders.
func (s *service) PlaceOrder(ctx context.Context, in CheckoutInput) (*Order, error) {
	err := validation.Struct(in, map[string]string{
		"ShippingAddress.min": msgAddressTooShort,
	})
	if err != nil {
		return nil, err
	}

	if s.cart.IsEmpty() {
		return nil, apierr.Validation(msgCartEmpty)
	}

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	lines := s.cart.Lines()
	req := CreateOrderRequest{
		UserID:          u.ID,
		Items:           make([]ItemRequest, 0, len(lines)),
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
	}
	for _, l := range lines {
		req.Items = append(req.Items, ItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	created, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Int("items", len(req.Items)).Msg("service: failed to create order")
		return nil, err
	}

	s.cart.Clear()

	log.Info().Int64("order_id", created.ID).Str("order_number", created.OrderNumber).Int64("user_id", u.ID).Msg("service: order placed")

	return created, nil
}

// CancelOrder refuses locally when the order is past the point of
// cancellation; the API has the final word otherwise.
func (s *service) CancelOrder(ctx context.Context, id int64) error {
	o, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	if !CanCancel(o.Status) {
		log.Info().Int64("order_id", id).Stringer("status", o.Status).Msg("service: cancel refused")
		return apierr.Validation(msgCannotCancel)
	}

	if err := s.api.CancelOrder(ctx, id); err != nil {
		log.Warn().Err(err).Int64("order_id", id).Msg("service: failed to cancel order")
		return err
	}

	log.Info().Int64("order_id", id).Msg("service: order cancelled")
	return nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.api.GetOrder(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	if orderNumber == "" {
		return nil, apierr.Validation("order number is required")
	}
	return s.api.GetOrderByNumber(ctx, orderNumber)
}

func (s *service) ListMyOrders(ctx context.Context) ([]Order, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.api.ListOrdersByUser(ctx, u.ID)
}

func (s *service) ListAllOrders(ctx context.Context) ([]Order, error) {
	return s.api.ListOrders(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, apierr.Validation(fmt.Sprintf("unknown order status %q", status))
	}

	o, err := s.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", id).Stringer("new_status", status).Msg("service: failed to update order status")
		return nil, err
	}

	log.Info().Int64("order_id", id).Stringer("new_status", status).Msg("service: order status updated")
	return o, nil
}
