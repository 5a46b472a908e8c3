package repository

import (
	"sync"
	"testing"
	"time"

	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLedgerEntry(t *testing.T, db *gorm.DB, reference string) *entity.GatewayTransaction {
	t.Helper()
	customer := testutil.SeedUser(t, db, entity.RoleIDCustomer, "buyer@example.com")
	booking := testutil.SeedBooking(t, db, customer.ID, nil)

	txn := &entity.GatewayTransaction{
		Reference: reference,
		BookingID: booking.ID,
		UserID:    customer.ID,
		Amount:    decimal.NewFromInt(200000),
		Currency:  entity.CurrencyVND,
		Outcome:   entity.GatewayOutcomePending,
	}
	require.NoError(t, NewGatewayTransactionRepository().Create(db, txn))
	return txn
}

func TestGatewayTransactionRepository_ApplyOutcomeOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()
	txn := seedLedgerEntry(t, db, "CH000001_20250101120000")

	update := entity.OutcomeUpdate{
		Outcome:           entity.GatewayOutcomeSuccess,
		ResponseCode:      "00",
		TransactionStatus: "00",
		TransactionNo:     "14000001",
		BankCode:          "NCB",
		ProcessedAt:       time.Now(),
	}

	applied, err := repo.ApplyOutcome(db, txn.Reference, update)
	require.NoError(t, err)
	assert.True(t, applied)

	update.Outcome = entity.GatewayOutcomeFailed
	update.ResponseCode = "24"
	applied, err = repo.ApplyOutcome(db, txn.Reference, update)
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := repo.FindByReference(db, txn.Reference)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.GatewayOutcomeSuccess, stored.Outcome)
	assert.Equal(t, "00", stored.ResponseCode)
	assert.Equal(t, "14000001", stored.TransactionNo)
	assert.NotNil(t, stored.ProcessedAt)
}

func TestGatewayTransactionRepository_ApplyOutcomeUnknownReference(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()

	applied, err := repo.ApplyOutcome(db, "missing", entity.OutcomeUpdate{Outcome: entity.GatewayOutcomeSuccess})
	require.NoError(t, err)
	assert.False(t, applied)

	found, err := repo.FindByReference(db, "missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGatewayTransactionRepository_ConcurrentApplyOutcome(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()
	txn := seedLedgerEntry(t, db, "CH000002_20250101120000")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ApplyOutcome(db, txn.Reference, entity.OutcomeUpdate{
				Outcome:     entity.GatewayOutcomeSuccess,
				ProcessedAt: time.Now(),
			})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
}

func TestGatewayTransactionRepository_DuplicateReference(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()
	txn := seedLedgerEntry(t, db, "CH000003_20250101120000")

	dup := &entity.GatewayTransaction{
		Reference: txn.Reference,
		BookingID: txn.BookingID,
		UserID:    txn.UserID,
		Amount:    txn.Amount,
	}
	assert.Error(t, repo.Create(db, dup))
}

func TestGatewayTransactionRepository_FindPendingByBookingID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()
	first := seedLedgerEntry(t, db, "CH000004_20250101120000")

	second := &entity.GatewayTransaction{
		Reference: "CH000004_20250101120500",
		BookingID: first.BookingID,
		UserID:    first.UserID,
		Amount:    first.Amount,
		Outcome:   entity.GatewayOutcomePending,
	}
	require.NoError(t, repo.Create(db, second))

	_, err := repo.ApplyOutcome(db, first.Reference, entity.OutcomeUpdate{Outcome: entity.GatewayOutcomeFailed, ProcessedAt: time.Now()})
	require.NoError(t, err)

	pending, err := repo.FindPendingByBookingID(db, first.BookingID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.Reference, pending[0].Reference)

	all, err := repo.FindByBookingID(db, first.BookingID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGatewayTransactionRepository_OneSuccessPerBooking(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGatewayTransactionRepository()
	first := seedLedgerEntry(t, db, "CH000005_20250101120000")

	second := &entity.GatewayTransaction{
		Reference: "CH000005_20250101120500",
		BookingID: first.BookingID,
		UserID:    first.UserID,
		Amount:    first.Amount,
		Outcome:   entity.GatewayOutcomePending,
	}
	require.NoError(t, repo.Create(db, second))

	success := entity.OutcomeUpdate{Outcome: entity.GatewayOutcomeSuccess, ProcessedAt: time.Now()}
	applied, err := repo.ApplyOutcome(db, first.Reference, success)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = repo.ApplyOutcome(db, second.Reference, success)
	assert.Error(t, err)

	stored, err := repo.FindByReference(db, second.Reference)
	require.NoError(t, err)
	assert.Equal(t, entity.GatewayOutcomePending, stored.Outcome)
}
