package repository

import (
	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GatewayTransactionRepository interface {
	Create(db *gorm.DB, txn *entity.GatewayTransaction) error
	FindByReference(db *gorm.DB, reference string) (*entity.GatewayTransaction, error)
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.GatewayTransaction, error)
	FindPendingByBookingID(db *gorm.DB, bookingID uuid.UUID) ([]entity.GatewayTransaction, error)
	// ApplyOutcome moves a pending entry to a terminal outcome. appliedNow is
	// false when the entry was already terminal or does not exist.
	ApplyOutcome(db *gorm.DB, reference string, update entity.OutcomeUpdate) (appliedNow bool, err error)
}
