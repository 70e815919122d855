// Package apierr holds the closed set of error kinds the storefront shows to
// its callers. Anything coming back from the network is normalized into one of
// these at the gateway, so views only switch on Kind.
package apierr

import (
	"encoding/json"
	"errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindAPI
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAPI:
		return "api"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

const (
	MsgNetwork    = "Network error. Please check your connection."
	MsgUnexpected = "An unexpected error occurred."
	MsgSession    = "Session expired. Please log in again."
)

// Error is the normalized error. Message is always safe to show as is.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status for KindAPI and KindAuth.
	Status int
	// Payload is the upstream error body, untouched.
	Payload json.RawMessage
	// Redirect is set when the caller must navigate somewhere (login after a 401).
	Redirect string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so errors.Is(err, apierr.ErrValidation) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrAPI        = &Error{Kind: KindAPI}
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrUnknown    = &Error{Kind: KindUnknown}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Auth(msg string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: cause}
}

func Network(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgNetwork, Err: cause}
}

func Unknown(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: MsgUnexpected, Err: cause}
}

// API builds an error from a non-2xx response. The message comes from the
// payload's "message" (or "error") field, falling back to fallback.
func API(status int, payload []byte, fallback string) *Error {
	msg := messageFromPayload(payload)
	if msg == "" {
		msg = fallback
	}
	return &Error{
		Kind:    KindAPI,
		Message: msg,
		Status:  status,
		Payload: json.RawMessage(payload),
	}
}

func messageFromPayload(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// KindOf reports the kind of err. Untagged errors are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the text to display for err, or fallback if there is none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// As unwraps err into *Error, normalizing untagged errors to KindUnknown.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unknown(err)
}
