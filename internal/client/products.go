package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vasiliy-maslov/storefront/internal/product"
)

func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListAvailableProducts returns only the active products.
func (c *Client) ListAvailableProducts(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/products/available", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListProductsByCategory(ctx context.Context, category string) ([]product.Product, error) {
	var products []product.Product
	path := "/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
