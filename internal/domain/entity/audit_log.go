package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserLogin            = "user.login"
	AuditActionUserLogout           = "user.logout"
	AuditActionUserRegister         = "user.register"
	AuditActionPasswordReset        = "user.password_reset"
	AuditActionServiceCreate        = "service.create"
	AuditActionBookingCreate        = "booking.create"
	AuditActionBookingStatus        = "booking.status"
	AuditActionBookingPaymentStatus = "booking.payment_status"
	AuditActionBookingCancel        = "booking.cancel"
	AuditActionBookingAssignStaff   = "booking.assign_staff"
	AuditActionPaymentCreate        = "payment.create"
	AuditActionPaymentReconcile     = "payment.reconcile"
	AuditActionPaymentMismatch      = "payment.amount_mismatch"
	AuditActionPaymentConflict      = "payment.conflict"
)
