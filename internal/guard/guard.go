// Package guard decides whether a view may be shown for the current session.
package guard

import (
	"encoding/json"
	"net/http"

	"github.com/vasiliy-maslov/storefront/internal/user"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// SessionState is the part of the session store the guard reads.
type SessionState interface {
	Loading() bool
	IsAuthenticated() bool
	HasRole(role user.Role) bool
}

type Decision int

const (
	Allow Decision = iota
	Pending
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decide is a pure function of the session at the time of the call.
// An empty requiredRole means any authenticated user.
func Decide(s SessionState, requiredRole user.Role) Decision {
	if s.Loading() {
		return Pending
	}
	if !s.IsAuthenticated() {
		return RedirectLogin
	}
	if requiredRole != "" && !s.HasRole(requiredRole) {
		return RedirectHome
	}
	return Allow
}

// Renderer is anything that can show a protected view, a redirect, or a
// neutral pending indicator.
type Renderer interface {
	Protected()
	Redirect(to string)
	Pending()
}

func Apply(s SessionState, requiredRole user.Role, r Renderer) Decision {
	d := Decide(s, requiredRole)
	switch d {
	case Pending:
		r.Pending()
	case RedirectLogin:
		r.Redirect(LoginPath)
	case RedirectHome:
		r.Redirect(HomePath)
	default:
		r.Protected()
	}
	return d
}

type httpRenderer struct {
	w    http.ResponseWriter
	r    *http.Request
	next http.Handler
}

func (h httpRenderer) Protected() {
	h.next.ServeHTTP(h.w, h.r)
}

func (h httpRenderer) Redirect(to string) {
	http.Redirect(h.w, h.r, to, http.StatusSeeOther)
}

func (h httpRenderer) Pending() {
	h.w.Header().Set("Content-Type", "application/json")
	h.w.Header().Set("Retry-After", "1")
	h.w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(h.w).Encode(map[string]string{"status": "loading"})
}

// Require is chi middleware gating the routes below it.
func Require(s SessionState, requiredRole user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Apply(s, requiredRole, httpRenderer{w: w, r: r, next: next})
		})
	}
}
