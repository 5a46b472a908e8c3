package repository

import (
	"cleanhome-backend/internal/domain/entity"
	domainRepo "cleanhome-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingItemRepository struct{}

func NewBookingItemRepository() domainRepo.BookingItemRepository {
	return &bookingItemRepository{}
}

func (r *bookingItemRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.BookingItem, error) {
	var items []entity.BookingItem
	err := db.Preload("Service").Where("booking_id = ?", bookingID).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindServiceNamesByBookingIDs resolves distinct service names through the
// line items of the given bookings in a single query.
func (r *bookingItemRepository) FindServiceNamesByBookingIDs(db *gorm.DB, bookingIDs []uuid.UUID) ([]string, error) {
	names := []string{}
	if len(bookingIDs) == 0 {
		return names, nil
	}
	err := db.Model(&entity.BookingItem{}).
		Distinct("services.name").
		Joins("JOIN services ON services.id = booking_items.service_id").
		Where("booking_items.booking_id IN ?", bookingIDs).
		Order("services.name").
		Pluck("services.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
