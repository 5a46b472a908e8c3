package repository

import (
	"cleanhome-backend/internal/domain/entity"
	domainRepo "cleanhome-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type staffAssignmentRepository struct{}

func NewStaffAssignmentRepository() domainRepo.StaffAssignmentRepository {
	return &staffAssignmentRepository{}
}

// ReplaceForBooking deletes the booking's assignments and inserts the new
// set. Callers pass a transaction so the swap is atomic.
func (r *staffAssignmentRepository) ReplaceForBooking(db *gorm.DB, bookingID uuid.UUID, assignments []entity.StaffAssignment) error {
	if err := db.Where("booking_id = ?", bookingID).Delete(&entity.StaffAssignment{}).Error; err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	for i := range assignments {
		assignments[i].BookingID = bookingID
	}
	return db.Omit("Staff").Create(&assignments).Error
}

func (r *staffAssignmentRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.StaffAssignment, error) {
	var assignments []entity.StaffAssignment
	err := db.Preload("Staff").Where("booking_id = ?", bookingID).Order("created_at").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *staffAssignmentRepository) FindBookingIDsByStaffID(db *gorm.DB, staffID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&entity.StaffAssignment{}).Where("staff_id = ?", staffID).Pluck("booking_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *staffAssignmentRepository) IsAssigned(db *gorm.DB, bookingID, staffID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&entity.StaffAssignment{}).
		Where("booking_id = ? AND staff_id = ?", bookingID, staffID).
		Count(&count).Error
	return count > 0, err
}
