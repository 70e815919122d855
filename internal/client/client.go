// Package client is the single way out to the order-management API. Every call
// gets the current bearer token attached and every failure comes back as an
// *apierr.Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/guard"
)

const RequestIDHeader = "X-Request-ID"

// Session is what the client needs from the session store: the token to send
// and a way to drop the session when the API rejects it.
type Session interface {
	Token() string
	Logout()
}

type Client struct {
	httpClient *http.Client
	baseURL    string

	mu      sync.RWMutex
	session Session
}

func New(cfg config.API) *Client {
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// UseSession binds the session whose token is attached to outgoing calls.
func (c *Client) UseSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) currentSession() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return apierr.Unknown(fmt.Errorf("client: marshal %s %s: %w", method, path, err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apierr.Unknown(fmt.Errorf("client: new request %s %s: %w", method, path, err))
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := newRequestID()
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	session := c.currentSession()
	if session != nil {
		if tok := session.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("client: request failed")
		return apierr.Network(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Str("path", path).Msg("client: failed to read response body")
		return apierr.Network(err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("client: request done")

	if resp.StatusCode == http.StatusUnauthorized {
		if session != nil {
			session.Logout()
		}
		log.Info().Str("request_id", requestID).Str("path", path).Msg("client: unauthorized, session dropped")

		e := apierr.API(resp.StatusCode, payload, apierr.MsgSession)
		e.Kind = apierr.KindAuth
		e.Redirect = guard.LoginPath
		return e
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Str("request_id", requestID).Str("path", path).Int("status", resp.StatusCode).Msg("client: api rejected request")
		return apierr.API(resp.StatusCode, payload, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	// ответ без тела там, где ждём сущность, считаем ошибкой API
	if len(bytes.TrimSpace(payload)) == 0 {
		log.Warn().Str("request_id", requestID).Str("path", path).Int("status", resp.StatusCode).Msg("client: empty response body")
		return apierr.Unknown(fmt.Errorf("client: empty response body for %s %s", method, path))
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return apierr.Unknown(fmt.Errorf("client: decode %s %s: %w", method, path, err))
	}

	return nil
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
