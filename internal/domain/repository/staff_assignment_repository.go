package repository

import (
	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffAssignmentRepository interface {
	ReplaceForBooking(db *gorm.DB, bookingID uuid.UUID, assignments []entity.StaffAssignment) error
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.StaffAssignment, error)
	FindBookingIDsByStaffID(db *gorm.DB, staffID uuid.UUID) ([]uuid.UUID, error)
	IsAssigned(db *gorm.DB, bookingID, staffID uuid.UUID) (bool, error)
}
