package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type BookingItemRequest struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1,max=20"`
}

type CreateBookingRequest struct {
	BookingDate     string               `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime     string               `json:"booking_time" validate:"required,datetime=15:04"`
	CustomerAddress string               `json:"customer_address" validate:"required,min=5,max=500"`
	Notes           string               `json:"notes" validate:"omitempty,max=1000"`
	PaymentMethod   string               `json:"payment_method" validate:"required,oneof=cash vnpay"`
	BankCode        string               `json:"bank_code" validate:"omitempty,max=20"`
	Items           []BookingItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Response DTOs

type BookingItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ServiceID   uuid.UUID       `json:"service_id"`
	ServiceName string          `json:"service_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type BookingResponse struct {
	ID              uuid.UUID             `json:"id"`
	BookingCode     string                `json:"booking_code"`
	UserID          uuid.UUID             `json:"user_id"`
	StaffID         *uuid.UUID            `json:"staff_id,omitempty"`
	BookingDate     string                `json:"booking_date"`
	BookingTime     string                `json:"booking_time"`
	CustomerAddress string                `json:"customer_address"`
	Notes           string                `json:"notes,omitempty"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Discount        decimal.Decimal       `json:"discount"`
	Tax             decimal.Decimal       `json:"tax"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentMethod   string                `json:"payment_method"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	CancelledBy     *uuid.UUID            `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	Items           []BookingItemResponse `json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type CreateBookingResponse struct {
	Booking *BookingResponse    `json:"booking"`
	Payment *PaymentURLResponse `json:"payment,omitempty"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
