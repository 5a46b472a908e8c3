package usecase

import (
	"context"
	"testing"

	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffStatsUsecase_CountsEachBookingOnce(t *testing.T) {
	f := newFixture(t)
	staff := testutil.SeedUser(t, f.db, entity.RoleIDStaff, "staff@example.com")
	owner := testutil.SeedUser(t, f.db, entity.RoleIDCustomer, "owner@example.com")
	deep := testutil.SeedService(t, f.db, "Deep cleaning", 200000)
	sofa := testutil.SeedService(t, f.db, "Sofa cleaning", 150000)

	// Two legacy links, two table links, one booking linked both ways.
	testutil.SeedBooking(t, f.db, owner.ID, []*entity.Service{deep}, testutil.WithStaff(staff.ID),
		testutil.WithStatus(entity.BookingStatusCompleted, entity.PaymentStatusPaid))
	both := testutil.SeedBooking(t, f.db, owner.ID, []*entity.Service{deep, sofa}, testutil.WithStaff(staff.ID))
	tableOnly := testutil.SeedBooking(t, f.db, owner.ID, []*entity.Service{sofa},
		testutil.WithStatus(entity.BookingStatusCompleted, entity.PaymentStatusPaid))
	testutil.SeedAssignment(t, f.db, both.ID, staff.ID)
	testutil.SeedAssignment(t, f.db, tableOnly.ID, staff.ID)
	testutil.SeedBooking(t, f.db, owner.ID, []*entity.Service{deep})

	stats, err := f.stats.Aggregate(context.Background(), actorOf(staff), staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, stats.StaffID)
	assert.Equal(t, 3, stats.TotalBookings)
	assert.Equal(t, int64(2), stats.CompletedBookings)
	assert.ElementsMatch(t, []string{"Deep cleaning", "Sofa cleaning"}, stats.AssignedServices)
}

func TestStaffStatsUsecase_NoAssignments(t *testing.T) {
	f := newFixture(t)
	staff := testutil.SeedUser(t, f.db, entity.RoleIDStaff, "staff@example.com")

	stats, err := f.stats.Aggregate(context.Background(), actorOf(staff), staff.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBookings)
	assert.Zero(t, stats.CompletedBookings)
	assert.Empty(t, stats.AssignedServices)
	assert.NotNil(t, stats.AssignedServices)
}

func TestStaffStatsUsecase_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := testutil.SeedUser(t, f.db, entity.RoleIDStaff, "staff@example.com")
	colleague := testutil.SeedUser(t, f.db, entity.RoleIDStaff, "colleague@example.com")
	admin := testutil.SeedUser(t, f.db, entity.RoleIDAdmin, "admin@example.com")

	_, err := f.stats.Aggregate(ctx, actorOf(colleague), staff.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.stats.Aggregate(ctx, actorOf(admin), staff.ID)
	assert.NoError(t, err)

	list, err := f.stats.ListStaff(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	_, err = f.stats.ListStaff(ctx, actorOf(staff))
	assert.ErrorIs(t, err, ErrForbidden)
}
