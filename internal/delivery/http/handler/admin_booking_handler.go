package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/delivery/http/middleware"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/response"
	"cleanhome-backend/pkg/validator"

	"github.com/google/uuid"
)

type AdminBookingHandler struct {
	adminBookingUsecase usecase.AdminBookingUsecase
	validator           *validator.CustomValidator
}

func NewAdminBookingHandler(adminBookingUsecase usecase.AdminBookingUsecase, validator *validator.CustomValidator) *AdminBookingHandler {
	return &AdminBookingHandler{
		adminBookingUsecase: adminBookingUsecase,
		validator:           validator,
	}
}

// ListBookings handles the back office booking list
// @Summary List bookings
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Booking status"
// @Param payment_status query string false "Payment status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /admin/bookings [get]
func (h *AdminBookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	query := dto.BookingListQuery{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		Page:          page,
		Limit:         limit,
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.adminBookingUsecase.ListBookings(r.Context(), actor, &query)
	if err != nil {
		if !writeBookingError(w, err) {
			response.InternalServerError(w, "Failed to list bookings")
		}
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Bookings retrieved successfully", result.Bookings,
		response.NewMeta(result.Page, result.Limit, result.Total))
}

// @Summary Update booking status
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdateBookingStatusRequest true "Update Status Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/bookings/{id}/status [put]
func (h *AdminBookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.UpdateBookingStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.adminBookingUsecase.UpdateStatus(r.Context(), actor, bookingID, &req)
	if err != nil {
		if !writeBookingError(w, err) {
			response.InternalServerError(w, "Failed to update booking status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking status updated successfully", booking)
}

// UpdatePaymentStatus records cash collection, refunds and resets.
// @Summary Update booking payment status
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.UpdatePaymentStatusRequest true "Update Payment Status Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/bookings/{id}/payment-status [put]
func (h *AdminBookingHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.adminBookingUsecase.UpdatePaymentStatus(r.Context(), actor, bookingID, &req)
	if err != nil {
		if !writeBookingError(w, err) {
			response.InternalServerError(w, "Failed to update payment status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Payment status updated successfully", booking)
}

// @Summary Assign a staff member
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.AssignStaffRequest true "Assign Staff Request"
// @Success 200 {object} response.Response
// @Router /admin/bookings/{id}/assign-staff [put]
func (h *AdminBookingHandler) AssignStaff(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.AssignStaffRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.adminBookingUsecase.AssignStaff(r.Context(), actor, bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrStaffNotFound):
			response.BadRequest(w, "Staff member not found or inactive")
		case writeBookingError(w, err):
		default:
			response.InternalServerError(w, "Failed to assign staff")
		}
		return
	}

	response.Success(w, http.StatusOK, "Staff assigned successfully", booking)
}

// AssignMultipleStaff replaces the whole staff set of a booking.
// @Summary Assign several staff members
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.AssignMultipleStaffRequest true "Assign Multiple Staff Request"
// @Success 200 {object} response.Response
// @Router /admin/bookings/{id}/assign-multiple-staff [put]
func (h *AdminBookingHandler) AssignMultipleStaff(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.AssignMultipleStaffRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.adminBookingUsecase.AssignMultipleStaff(r.Context(), actor, bookingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrStaffNotFound):
			response.BadRequest(w, "One or more staff members not found or inactive")
		case errors.Is(err, usecase.ErrNoStaffGiven):
			response.BadRequest(w, err.Error())
		case writeBookingError(w, err):
		default:
			response.InternalServerError(w, "Failed to assign staff")
		}
		return
	}

	response.Success(w, http.StatusOK, "Staff assigned successfully", result)
}

// @Summary Cancel a booking as admin
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.CancelBookingRequest false "Cancel Booking Request"
// @Success 200 {object} response.Response
// @Router /admin/bookings/{id}/cancel [put]
func (h *AdminBookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, bookingID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.CancelBookingRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.adminBookingUsecase.CancelBooking(r.Context(), actor, bookingID, req.Reason)
	if err != nil {
		if !writeBookingError(w, err) {
			response.InternalServerError(w, "Failed to cancel booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *AdminBookingHandler) target(w http.ResponseWriter, r *http.Request) (actor entity.Actor, bookingID uuid.UUID, ok bool) {
	actor, ok = middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return actor, bookingID, false
	}

	bookingID, ok = uuidVar(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid booking ID")
		return actor, bookingID, false
	}
	return actor, bookingID, true
}

func (h *AdminBookingHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}
