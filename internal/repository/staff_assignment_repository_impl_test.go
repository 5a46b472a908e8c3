package repository

import (
	"testing"

	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffAssignmentRepository_ReplaceForBooking(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStaffAssignmentRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	a := testutil.SeedUser(t, db, entity.RoleIDStaff, "a@example.com")
	b := testutil.SeedUser(t, db, entity.RoleIDStaff, "b@example.com")
	c := testutil.SeedUser(t, db, entity.RoleIDStaff, "c2@example.com")
	booking := testutil.SeedBooking(t, db, customer.ID, nil)

	require.NoError(t, repo.ReplaceForBooking(db, booking.ID, []entity.StaffAssignment{{StaffID: a.ID}, {StaffID: b.ID}}))
	require.NoError(t, repo.ReplaceForBooking(db, booking.ID, []entity.StaffAssignment{{StaffID: b.ID}, {StaffID: c.ID}}))

	assignments, err := repo.FindByBookingID(db, booking.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	got := []uuid.UUID{assignments[0].StaffID, assignments[1].StaffID}
	assert.ElementsMatch(t, []uuid.UUID{b.ID, c.ID}, got)

	assigned, err := repo.IsAssigned(db, booking.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	assigned, err = repo.IsAssigned(db, booking.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, assigned)
}

func TestStaffAssignmentRepository_ReplaceRollsBackOnDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStaffAssignmentRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	a := testutil.SeedUser(t, db, entity.RoleIDStaff, "a@example.com")
	booking := testutil.SeedBooking(t, db, customer.ID, nil)
	require.NoError(t, repo.ReplaceForBooking(db, booking.ID, []entity.StaffAssignment{{StaffID: a.ID}}))

	tx := db.Begin()
	err := repo.ReplaceForBooking(tx, booking.ID, []entity.StaffAssignment{{StaffID: a.ID}, {StaffID: a.ID}})
	require.Error(t, err)
	tx.Rollback()

	assignments, err := repo.FindByBookingID(db, booking.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, a.ID, assignments[0].StaffID)
}

func TestStaffAssignmentRepository_FindBookingIDsByStaffID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStaffAssignmentRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	staff := testutil.SeedUser(t, db, entity.RoleIDStaff, "s@example.com")
	b1 := testutil.SeedBooking(t, db, customer.ID, nil)
	b2 := testutil.SeedBooking(t, db, customer.ID, nil)
	testutil.SeedAssignment(t, db, b1.ID, staff.ID)
	testutil.SeedAssignment(t, db, b2.ID, staff.ID)

	ids, err := repo.FindBookingIDsByStaffID(db, staff.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b1.ID, b2.ID}, ids)

	ids, err = repo.FindBookingIDsByStaffID(db, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
