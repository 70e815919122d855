package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vasiliy-maslov/storefront/internal/order"
)

func (c *Client) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	path := "/orders/order-number/" + url.PathEscape(orderNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListOrdersByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/user/%d", userID), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders returns every order; the API only allows it for admins.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status order.OrderStatus) (*order.Order, error) {
	var o order.Order
	path := fmt.Sprintf("/orders/%d/status", id)
	if err := c.do(ctx, http.MethodPut, path, order.UpdateStatusRequest{Status: status}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
}
