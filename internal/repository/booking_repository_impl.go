package repository

import (
	"errors"

	"cleanhome-backend/internal/domain/entity"
	domainRepo "cleanhome-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Items.Service").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row until the surrounding transaction
// ends.
func (r *bookingRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByCode(db *gorm.DB, code string) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Where("booking_code = ?", code).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ExistsByCode(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&entity.Booking{}).Where("booking_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Preload("Items.Service").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindAll(db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, int64, error) {
	var bookings []entity.Booking
	var total int64

	query := db.Model(&entity.Booking{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items.Service").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) Update(db *gorm.DB, id uuid.UUID, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return db.Model(&entity.Booking{}).Where("id = ?", id).Updates(columns).Error
}

// FindIDsByStaffID returns bookings assigned through the legacy single-staff
// column.
func (r *bookingRepository) FindIDsByStaffID(db *gorm.DB, staffID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&entity.Booking{}).Where("staff_id = ?", staffID).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *bookingRepository) CountByIDsAndStatus(db *gorm.DB, ids []uuid.UUID, status entity.BookingStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.Model(&entity.Booking{}).
		Where("id IN ? AND status = ?", ids, status).
		Count(&count).Error
	return count, err
}
