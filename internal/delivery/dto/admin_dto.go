package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_progress completed cancelled rescheduled"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=paid refunded failed unpaid"`
}

type AssignStaffRequest struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
}

type AssignMultipleStaffRequest struct {
	StaffIDs []uuid.UUID `json:"staff_ids" validate:"required,min=1,max=10,dive,required"`
	Notes    string      `json:"notes" validate:"omitempty,max=500"`
}

type BookingListQuery struct {
	Status        string `validate:"omitempty,oneof=pending confirmed in_progress completed cancelled rescheduled"`
	PaymentStatus string `validate:"omitempty,oneof=unpaid pending paid refunded failed"`
	Page          int    `validate:"gte=1"`
	Limit         int    `validate:"gte=1,lte=100"`
}

// Response DTOs

type StaffAssignmentResponse struct {
	StaffID    uuid.UUID  `json:"staff_id"`
	FullName   string     `json:"full_name,omitempty"`
	AssignedBy *uuid.UUID `json:"assigned_by,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type BookingAssignmentResponse struct {
	Booking     *BookingResponse          `json:"booking"`
	Assignments []StaffAssignmentResponse `json:"assignments"`
}

type PagedBookingsResponse struct {
	Bookings []BookingResponse
	Page     int
	Limit    int
	Total    int64
}
