package repository

import (
	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByRole(db *gorm.DB, roleID int) ([]entity.User, error)
	FindActiveByIDsAndRole(db *gorm.DB, ids []uuid.UUID, roleID int) ([]entity.User, error)
	UpdatePassword(db *gorm.DB, id uuid.UUID, passwordHash string) error
}
