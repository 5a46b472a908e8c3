package dto

import "github.com/google/uuid"

type StaffStatsResponse struct {
	StaffID           uuid.UUID `json:"staff_id"`
	TotalBookings     int       `json:"total_bookings"`
	CompletedBookings int64     `json:"completed_bookings"`
	AssignedServices  []string  `json:"assigned_services"`
}

type StaffSummaryResponse struct {
	User  UserResponse       `json:"user"`
	Stats StaffStatsResponse `json:"stats"`
}

type StaffListResponse struct {
	Staff []StaffSummaryResponse `json:"staff"`
	Total int                    `json:"total"`
}
