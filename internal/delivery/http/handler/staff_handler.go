package handler

import (
	"errors"
	"net/http"

	"cleanhome-backend/internal/delivery/http/middleware"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/response"
)

type StaffHandler struct {
	staffStatsUsecase usecase.StaffStatsUsecase
}

func NewStaffHandler(staffStatsUsecase usecase.StaffStatsUsecase) *StaffHandler {
	return &StaffHandler{
		staffStatsUsecase: staffStatsUsecase,
	}
}

// GetStats returns the workload summary of one staff member.
// @Summary Staff statistics
// @Tags Staff
// @Security BearerAuth
// @Produce json
// @Param id path string true "Staff user ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /staff/{id}/stats [get]
func (h *StaffHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	staffID, ok := uuidVar(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid staff ID")
		return
	}

	stats, err := h.staffStatsUsecase.Aggregate(r.Context(), actor, staffID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrForbidden):
			response.Forbidden(w, "You can only view your own statistics")
		default:
			response.InternalServerError(w, "Failed to get staff statistics")
		}
		return
	}

	response.Success(w, http.StatusOK, "Staff statistics retrieved successfully", stats)
}

// @Summary List staff with statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/staff [get]
func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	staff, err := h.staffStatsUsecase.ListStaff(r.Context(), actor)
	if err != nil {
		if errors.Is(err, usecase.ErrForbidden) {
			response.Forbidden(w, "")
			return
		}
		response.InternalServerError(w, "Failed to list staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff retrieved successfully", staff)
}
