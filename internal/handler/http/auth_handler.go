package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/guard"
	"github.com/vasiliy-maslov/storefront/internal/user"
)

// RegisterForm is the registration page payload. ConfirmPassword never
// leaves the view.
type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

func (f RegisterForm) request() user.RegisterRequest {
	return user.RegisterRequest{
		Name:            f.Name,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		Phone:           f.Phone,
		Address:         f.Address,
	}
}

type SessionResponse struct {
	Loading       bool       `json:"loading"`
	Authenticated bool       `json:"authenticated"`
	User          *user.User `json:"user,omitempty"`
}

func (h *StorefrontHandler) sessionResponse() SessionResponse {
	resp := SessionResponse{
		Loading:       h.session.Loading(),
		Authenticated: h.session.IsAuthenticated(),
	}
	if cur := h.session.Current(); cur != nil {
		u := cur.User
		resp.User = &u
	}
	return resp
}

func (h *StorefrontHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *StorefrontHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session.IsAuthenticated() {
		http.Redirect(w, r, guard.HomePath, http.StatusSeeOther)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"view": "login"})
}

func (h *StorefrontHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req user.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Error().Err(err).Msg("Failed to decode login request")
		respondWithAPIError(w, r, err)
		return
	}

	if _, err := h.session.Login(r.Context(), req); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *StorefrontHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		log.Error().Err(err).Msg("Failed to decode register request")
		respondWithAPIError(w, r, err)
		return
	}

	if _, err := h.session.Register(r.Context(), form.request()); err != nil {
		respondWithAPIError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, h.sessionResponse())
}

func (h *StorefrontHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

func (h *StorefrontHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session":   h.sessionResponse(),
		"cartCount": h.cart.Count(),
	})
}

func (h *StorefrontHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithAPIError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}
