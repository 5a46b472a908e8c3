package entity

import "github.com/google/uuid"

// Actor is the authenticated caller, passed explicitly to use cases that
// need to decide what it may touch.
type Actor struct {
	UserID uuid.UUID
	RoleID int
}

func (a Actor) IsAdmin() bool {
	return a.RoleID == RoleIDAdmin
}

func (a Actor) IsStaff() bool {
	return a.RoleID == RoleIDStaff
}

func (a Actor) IsCustomer() bool {
	return a.RoleID == RoleIDCustomer
}

// CanViewBooking allows admins, the owner, and staff assigned through either
// assignment mechanism.
func (a Actor) CanViewBooking(b *Booking, assigned bool) bool {
	switch {
	case a.IsAdmin():
		return true
	case b.IsOwnedBy(a.UserID):
		return true
	case a.IsStaff():
		if b.StaffID != nil && *b.StaffID == a.UserID {
			return true
		}
		return assigned
	}
	return false
}

// CanPayFor allows the owner or an admin to start a payment attempt.
func (a Actor) CanPayFor(b *Booking) bool {
	return a.IsAdmin() || b.IsOwnedBy(a.UserID)
}

// CanViewStaffStats allows admins any staff and staff only themselves.
func (a Actor) CanViewStaffStats(staffID uuid.UUID) bool {
	return a.IsAdmin() || (a.IsStaff() && a.UserID == staffID)
}
