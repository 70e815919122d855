package client

import (
	"context"
	"net/http"

	"github.com/vasiliy-maslov/storefront/internal/user"
)

func (c *Client) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	var resp user.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	var resp user.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
