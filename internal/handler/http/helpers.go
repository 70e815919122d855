package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError отправляет JSON ошибку
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondWithAPIError renders any error coming out of the stores, the order
// flow or the gateway client.
func respondWithAPIError(w http.ResponseWriter, r *http.Request, err error) {
	e := apierr.As(err)

	switch e.Kind {
	case apierr.KindValidation:
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   e.Message,
			Details: validation.Details(e.Err),
		})
	case apierr.KindAuth:
		if e.Redirect != "" {
			http.Redirect(w, r, e.Redirect, http.StatusSeeOther)
			return
		}
		respondWithError(w, http.StatusUnauthorized, e.Message)
	case apierr.KindAPI:
		// тело ошибки от API отдаём как есть
		if len(e.Payload) > 0 && json.Valid(e.Payload) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(e.Status)
			_, _ = w.Write(e.Payload)
			return
		}
		respondWithError(w, e.Status, e.Message)
	case apierr.KindNetwork:
		respondWithError(w, http.StatusBadGateway, e.Message)
	default:
		log.Error().Err(e.Err).Str("path", r.URL.Path).Msg("Unexpected error")
		respondWithError(w, http.StatusInternalServerError, e.Message)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apierr.Validation(fmt.Sprintf("Invalid request payload: %v", err))
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Warn().Str(name, raw).Msg("Failed to parse id parameter from URL")
		return 0, apierr.Validation(fmt.Sprintf("Invalid %s parameter", name))
	}
	return id, nil
}
