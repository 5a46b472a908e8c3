package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"cleanhome-backend/internal/domain/lifecycle"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// clientIP prefers the first X-Forwarded-For hop set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func uuidVar(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// writeBookingError maps the errors shared by every booking-touching use
// case. It reports false when err is not one of them.
func writeBookingError(w http.ResponseWriter, err error) bool {
	var rejected *lifecycle.RejectedTransition
	switch {
	case errors.As(err, &rejected):
		response.Conflict(w, rejected.Error(), map[string]string{
			"event":          string(rejected.Event),
			"status":         string(rejected.From.Status),
			"payment_status": string(rejected.From.PaymentStatus),
		})
	case errors.Is(err, lifecycle.ErrUnreachableStatus):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You are not allowed to access this booking")
	case errors.Is(err, usecase.ErrPaymentInFlight):
		response.Conflict(w, "Booking has a payment in progress, wait for the gateway result", nil)
	default:
		return false
	}
	return true
}

// decodeOptional decodes a JSON body that may be left empty. Only a
// malformed body is answered with 400.
func decodeOptional(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	return true
}
