package converter

import (
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	items := make([]dto.BookingItemResponse, 0, len(booking.Items))
	for _, item := range booking.Items {
		items = append(items, dto.BookingItemResponse{
			ID:          item.ID,
			ServiceID:   item.ServiceID,
			ServiceName: item.Service.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	return &dto.BookingResponse{
		ID:              booking.ID,
		BookingCode:     booking.BookingCode,
		UserID:          booking.UserID,
		StaffID:         booking.StaffID,
		BookingDate:     booking.BookingDate.Format("2006-01-02"),
		BookingTime:     booking.BookingTime,
		CustomerAddress: booking.CustomerAddress,
		Notes:           booking.Notes,
		Subtotal:        booking.Subtotal,
		Discount:        booking.Discount,
		Tax:             booking.Tax,
		TotalPrice:      booking.TotalPrice,
		Status:          string(booking.Status),
		PaymentStatus:   string(booking.PaymentStatus),
		PaymentMethod:   string(booking.PaymentMethod),
		CancelReason:    booking.CancelReason,
		CancelledBy:     booking.CancelledBy,
		CancelledAt:     booking.CancelledAt,
		CompletedAt:     booking.CompletedAt,
		Items:           items,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}

func StaffAssignmentsToResponses(assignments []entity.StaffAssignment) []dto.StaffAssignmentResponse {
	responses := make([]dto.StaffAssignmentResponse, len(assignments))
	for i, a := range assignments {
		responses[i] = dto.StaffAssignmentResponse{
			StaffID:    a.StaffID,
			FullName:   a.Staff.FullName,
			AssignedBy: a.AssignedBy,
			Notes:      a.Notes,
			CreatedAt:  a.CreatedAt,
		}
	}
	return responses
}
