package repository

import (
	"testing"

	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_FindByIDPreloadsItems(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	deep := testutil.SeedService(t, db, "Deep cleaning", 150000)
	sofa := testutil.SeedService(t, db, "Sofa cleaning", 50000)
	booking := testutil.SeedBooking(t, db, customer.ID, []*entity.Service{deep, sofa})

	found, err := repo.FindByID(db, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Items, 2)
	assert.NotEmpty(t, found.Items[0].Service.Name)
	assert.True(t, found.TotalPrice.Equal(booking.TotalPrice))

	missing, err := repo.FindByID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookingRepository_FindAllFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	testutil.SeedBooking(t, db, customer.ID, nil)
	testutil.SeedBooking(t, db, customer.ID, nil, testutil.WithStatus(entity.BookingStatusCompleted, entity.PaymentStatusPaid))
	testutil.SeedBooking(t, db, customer.ID, nil, testutil.WithStatus(entity.BookingStatusCompleted, entity.PaymentStatusUnpaid))

	bookings, total, err := repo.FindAll(db, entity.BookingFilter{Status: entity.BookingStatusCompleted, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bookings, 2)

	bookings, total, err = repo.FindAll(db, entity.BookingFilter{PaymentStatus: entity.PaymentStatusPaid, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, bookings, 1)

	bookings, total, err = repo.FindAll(db, entity.BookingFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, bookings, 1)
}

func TestBookingRepository_UpdateAndCount(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	staff := testutil.SeedUser(t, db, entity.RoleIDStaff, "s@example.com")
	b1 := testutil.SeedBooking(t, db, customer.ID, nil, testutil.WithStaff(staff.ID))
	b2 := testutil.SeedBooking(t, db, customer.ID, nil, testutil.WithStaff(staff.ID))

	require.NoError(t, repo.Update(db, b1.ID, map[string]interface{}{"status": entity.BookingStatusCompleted}))

	ids, err := repo.FindIDsByStaffID(db, staff.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b1.ID, b2.ID}, ids)

	count, err := repo.CountByIDsAndStatus(db, ids, entity.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountByIDsAndStatus(db, nil, entity.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := repo.ExistsByCode(db, b2.BookingCode)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBookingItemRepository_FindServiceNames(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingItemRepository()

	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "c@example.com")
	deep := testutil.SeedService(t, db, "Deep cleaning", 150000)
	sofa := testutil.SeedService(t, db, "Sofa cleaning", 50000)
	b1 := testutil.SeedBooking(t, db, customer.ID, []*entity.Service{deep, sofa})
	b2 := testutil.SeedBooking(t, db, customer.ID, []*entity.Service{deep})

	names, err := repo.FindServiceNamesByBookingIDs(db, []uuid.UUID{b1.ID, b2.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Deep cleaning", "Sofa cleaning"}, names)

	names, err = repo.FindServiceNamesByBookingIDs(db, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
