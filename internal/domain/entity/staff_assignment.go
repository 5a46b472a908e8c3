package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffAssignment links one staff member to one booking.
type StaffAssignment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_booking_staff_pair" json:"booking_id"`
	StaffID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_booking_staff_pair;index" json:"staff_id"`
	AssignedBy *uuid.UUID `gorm:"type:uuid" json:"assigned_by,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Staff User `gorm:"foreignKey:StaffID" json:"-"`
}

func (StaffAssignment) TableName() string {
	return "booking_staff"
}

func (a *StaffAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UnionBookingIDs merges booking ID sets without duplicates, keeping
// first-seen order.
func UnionBookingIDs(sets ...[]uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	union := make([]uuid.UUID, 0)
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			union = append(union, id)
		}
	}
	return union
}

// DedupIDs removes repeated IDs and uuid.Nil, keeping order.
func DedupIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range UnionBookingIDs(ids) {
		if id != uuid.Nil {
			out = append(out, id)
		}
	}
	return out
}
