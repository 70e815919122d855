// Package token reads the claims of the bearer token issued by the order API.
//
// The signature is never checked here: the API verifies every request, and the
// claims are only used to decide what the storefront shows.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformed = errors.New("token: malformed")

// Claims are the fields the API puts into its tokens. Subject is the user's email.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims

	// exp at full precision; jwt.NumericDate keeps whole seconds only
	exp *time.Time
}

// Expiry returns the expiry and whether the token carries one.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.exp != nil {
		return *c.exp, true
	}
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

var parser = jwt.NewParser()

// Decode parses the payload segment of raw.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, parts, err := parser.ParseUnverified(raw, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	exp, err := preciseExpiry(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims.exp = exp

	return claims, nil
}

func preciseExpiry(payload string) (*time.Time, error) {
	b, err := parser.DecodeSegment(payload)
	if err != nil {
		return nil, err
	}

	var body struct {
		Exp *float64 `json:"exp"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, err
	}
	if body.Exp == nil {
		return nil, nil
	}

	sec, frac := math.Modf(*body.Exp)
	t := time.Unix(int64(sec), int64(frac*1e9))
	return &t, nil
}

// IsExpired reports whether raw is unusable right now.
func IsExpired(raw string) bool {
	return IsExpiredAt(raw, time.Now())
}

// IsExpiredAt is true when raw cannot be decoded or its exp is at or before now.
// A token without exp never expires on the client side.
func IsExpiredAt(raw string, now time.Time) bool {
	claims, err := Decode(raw)
	if err != nil {
		return true
	}
	exp, ok := claims.Expiry()
	if !ok {
		return false
	}
	return !exp.After(now)
}
