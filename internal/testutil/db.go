// Package testutil builds throwaway sqlite databases with the production
// schema and seeds the rows tests commonly need.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"cleanhome-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.Role{},
		&entity.User{},
		&entity.Service{},
		&entity.Booking{},
		&entity.BookingItem{},
		&entity.GatewayTransaction{},
		&entity.StaffAssignment{},
		&entity.AuditLog{},
	}
}

// NewDB opens a private in-memory database for t. A single connection keeps
// the shared-cache database alive and serializes writers the way row locks
// would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	require.NoError(t, db.Create([]entity.Role{
		{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin},
		{ID: entity.RoleIDStaff, RoleName: entity.RoleStaff},
		{ID: entity.RoleIDCustomer, RoleName: entity.RoleCustomer},
	}).Error)

	return db
}

// NewLogger returns a logger that only prints errors.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func SeedUser(t *testing.T, db *gorm.DB, roleID int, email string) *entity.User {
	t.Helper()
	user := &entity.User{
		RoleID:   roleID,
		Email:    email,
		Password: "x",
		FullName: strings.Split(email, "@")[0],
		Status:   entity.UserStatusActive,
	}
	require.NoError(t, db.Omit("Role").Create(user).Error)
	return user
}

func SeedService(t *testing.T, db *gorm.DB, name string, price int64) *entity.Service {
	t.Helper()
	service := &entity.Service{
		Name:            name,
		Price:           decimal.NewFromInt(price),
		DurationMinutes: 60,
		Status:          entity.ServiceStatusActive,
	}
	require.NoError(t, db.Create(service).Error)
	return service
}

// BookingOption adjusts a seeded booking before insert.
type BookingOption func(*entity.Booking)

func WithStatus(status entity.BookingStatus, payment entity.PaymentStatus) BookingOption {
	return func(b *entity.Booking) {
		b.Status = status
		b.PaymentStatus = payment
	}
}

func WithStaff(staffID uuid.UUID) BookingOption {
	return func(b *entity.Booking) { b.StaffID = &staffID }
}

func WithCode(code string) BookingOption {
	return func(b *entity.Booking) { b.BookingCode = code }
}

func WithMethod(method entity.PaymentMethod) BookingOption {
	return func(b *entity.Booking) { b.PaymentMethod = method }
}

// SeedBooking inserts a booking for owner with one line item per service.
func SeedBooking(t *testing.T, db *gorm.DB, owner uuid.UUID, services []*entity.Service, opts ...BookingOption) *entity.Booking {
	t.Helper()

	total := decimal.Zero
	items := make([]entity.BookingItem, 0, len(services))
	for _, s := range services {
		items = append(items, entity.BookingItem{
			ServiceID: s.ID,
			Quantity:  1,
			UnitPrice: s.Price,
			Subtotal:  s.Price,
		})
		total = total.Add(s.Price)
	}

	booking := &entity.Booking{
		BookingCode:     "CH" + strings.ToUpper(uuid.NewString()[:11]),
		UserID:          owner,
		BookingDate:     time.Now().AddDate(0, 0, 3).Truncate(24 * time.Hour),
		BookingTime:     "09:00",
		CustomerAddress: "12 Nguyen Hue, District 1",
		Subtotal:        total,
		Discount:        decimal.Zero,
		Tax:             decimal.Zero,
		TotalPrice:      total,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaymentMethod:   entity.PaymentMethodCash,
		Items:           items,
	}
	for _, opt := range opts {
		opt(booking)
	}
	require.NoError(t, db.Omit("User", "Staff").Create(booking).Error)
	return booking
}

func SeedAssignment(t *testing.T, db *gorm.DB, bookingID, staffID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Omit("Staff").Create(&entity.StaffAssignment{BookingID: bookingID, StaffID: staffID}).Error)
}
