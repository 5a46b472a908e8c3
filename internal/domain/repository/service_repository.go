package repository

import (
	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(db *gorm.DB, service *entity.Service) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	FindByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.Service, error)
	FindActive(db *gorm.DB) ([]entity.Service, error)
}
