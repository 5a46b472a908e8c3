package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusInProgress  BookingStatus = "in_progress"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRescheduled BookingStatus = "rescheduled"
)

// PaymentStatus represents how far the money side of a booking has progressed
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodVNPay PaymentMethod = "vnpay"
)

// BookingTimeLayout is the wall-clock format of Booking.BookingTime.
const BookingTimeLayout = "15:04"

// Booking represents one cleaning service order
type Booking struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingCode     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	StaffID         *uuid.UUID      `gorm:"type:uuid;index" json:"staff_id,omitempty"`
	BookingDate     time.Time       `gorm:"type:date;not null;index" json:"booking_date"`
	BookingTime     string          `gorm:"type:varchar(5);not null" json:"booking_time"`
	CustomerAddress string          `gorm:"type:text;not null" json:"customer_address"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	CancelReason    string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledBy     *uuid.UUID      `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User  User          `gorm:"foreignKey:UserID" json:"-"`
	Staff *User         `gorm:"foreignKey:StaffID" json:"-"`
	Items []BookingItem `gorm:"foreignKey:BookingID" json:"items,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ScheduledAt combines BookingDate and BookingTime in loc.
func (b *Booking) ScheduledAt(loc *time.Location) (time.Time, error) {
	clock, err := time.ParseInLocation(BookingTimeLayout, b.BookingTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := b.BookingDate.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// TotalsConsistent checks the monetary invariant: every field non-negative
// and total = subtotal - discount + tax.
func (b *Booking) TotalsConsistent() bool {
	for _, v := range []decimal.Decimal{b.Subtotal, b.Discount, b.Tax, b.TotalPrice} {
		if v.IsNegative() {
			return false
		}
	}
	return b.Subtotal.Sub(b.Discount).Add(b.Tax).Equal(b.TotalPrice)
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Page          int
	Limit         int
}

func (f BookingFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
