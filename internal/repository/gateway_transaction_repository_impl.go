package repository

import (
	"errors"

	"cleanhome-backend/internal/domain/entity"
	domainRepo "cleanhome-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gatewayTransactionRepository struct{}

func NewGatewayTransactionRepository() domainRepo.GatewayTransactionRepository {
	return &gatewayTransactionRepository{}
}

func (r *gatewayTransactionRepository) Create(db *gorm.DB, txn *entity.GatewayTransaction) error {
	return db.Create(txn).Error
}

func (r *gatewayTransactionRepository) FindByReference(db *gorm.DB, reference string) (*entity.GatewayTransaction, error) {
	var txn entity.GatewayTransaction
	err := db.Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *gatewayTransactionRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.GatewayTransaction, error) {
	var txns []entity.GatewayTransaction
	err := db.Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *gatewayTransactionRepository) FindPendingByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.GatewayTransaction, error) {
	var txns []entity.GatewayTransaction
	err := db.Where("booking_id = ? AND outcome = ?", bookingID, entity.GatewayOutcomePending).
		Order("created_at").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ApplyOutcome is the idempotency gate. The conditional UPDATE is the
// compare-and-swap: only one caller can observe RowsAffected == 1 for a
// given reference.
func (r *gatewayTransactionRepository) ApplyOutcome(db *gorm.DB, reference string, update entity.OutcomeUpdate) (bool, error) {
	result := db.Model(&entity.GatewayTransaction{}).
		Where("reference = ? AND outcome = ?", reference, entity.GatewayOutcomePending).
		Updates(update.Columns())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
