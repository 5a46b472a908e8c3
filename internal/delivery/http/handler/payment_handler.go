package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/delivery/http/middleware"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/response"
	"cleanhome-backend/pkg/validator"

	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	log            *logrus.Logger
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(log *logrus.Logger, paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		log:            log,
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

// CreatePayment opens a new gateway attempt for an existing booking.
// @Summary Create VNPay payment URL
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Create Payment Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/vnpay/create [post]
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payment, err := h.paymentUsecase.CreatePaymentURL(r.Context(), actor, &req, clientIP(r))
	if err != nil {
		switch {
		case writeBookingError(w, err):
		case errors.Is(err, usecase.ErrReferenceExhausted):
			response.ServiceUnavailable(w, "Could not allocate a payment reference, try again")
		default:
			response.InternalServerError(w, "Failed to create payment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Payment URL created successfully", payment)
}

// Return is where the gateway sends the customer's browser. It always
// answers with a redirect to the frontend.
// @Summary VNPay return URL
// @Tags Payments
// @Success 302
// @Router /payments/vnpay/return [get]
func (h *PaymentHandler) Return(w http.ResponseWriter, r *http.Request) {
	target := h.paymentUsecase.HandleReturn(r.Context(), r.URL.Query())
	http.Redirect(w, r, target, http.StatusFound)
}

// Notify handles the server-to-server IPN. The gateway only reads the
// RspCode/Message body, so it is written without the response envelope.
// @Summary VNPay IPN
// @Tags Payments
// @Produce json
// @Success 200 {object} dto.IPNResponse
// @Router /payments/vnpay/notify [get]
// @Router /payments/vnpay/notify [post]
func (h *PaymentHandler) Notify(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.log.Warnf("Failed to parse IPN form: %+v", err)
		} else if len(r.PostForm) > 0 {
			params = url.Values(r.PostForm)
		}
	}

	ack := h.paymentUsecase.HandleNotification(r.Context(), params)
	response.Ack(w, ack)
}

// @Summary List payment attempts for a booking
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Response
// @Router /payments/bookings/{id}/transactions [get]
func (h *PaymentHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	bookingID, ok := uuidVar(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	transactions, err := h.paymentUsecase.GetTransactions(r.Context(), actor, bookingID)
	if err != nil {
		if !writeBookingError(w, err) {
			response.InternalServerError(w, "Failed to get transactions")
		}
		return
	}

	response.Success(w, http.StatusOK, "Transactions retrieved successfully", transactions)
}
