package repository

import (
	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByCode(db *gorm.DB, code string) (*entity.Booking, error)
	ExistsByCode(db *gorm.DB, code string) (bool, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error)
	FindAll(db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, int64, error)
	Update(db *gorm.DB, id uuid.UUID, columns map[string]interface{}) error
	FindIDsByStaffID(db *gorm.DB, staffID uuid.UUID) ([]uuid.UUID, error)
	CountByIDsAndStatus(db *gorm.DB, ids []uuid.UUID, status entity.BookingStatus) (int64, error)
}

type BookingItemRepository interface {
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.BookingItem, error)
	FindServiceNamesByBookingIDs(db *gorm.DB, bookingIDs []uuid.UUID) ([]string, error)
}
