package lifecycle

import (
	"testing"
	"time"

	"cleanhome-backend/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func st(status entity.BookingStatus, payment entity.PaymentStatus) State {
	return State{Status: status, PaymentStatus: payment}
}

func TestTransition_Accepted(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
		want  State
	}{
		{"confirm pending", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventConfirm, st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid)},
		{"confirm rescheduled", st(entity.BookingStatusRescheduled, entity.PaymentStatusUnpaid), EventConfirm, st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid)},
		{"assign staff confirms pending", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventAssignStaff, st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid)},
		{"assign staff keeps in progress", st(entity.BookingStatusInProgress, entity.PaymentStatusPaid), EventAssignStaff, st(entity.BookingStatusInProgress, entity.PaymentStatusPaid)},
		{"start", st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid), EventStart, st(entity.BookingStatusInProgress, entity.PaymentStatusUnpaid)},
		{"complete", st(entity.BookingStatusInProgress, entity.PaymentStatusUnpaid), EventComplete, st(entity.BookingStatusCompleted, entity.PaymentStatusUnpaid)},
		{"reschedule", st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid), EventReschedule, st(entity.BookingStatusRescheduled, entity.PaymentStatusUnpaid)},
		{"cancel pending", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventCancel, st(entity.BookingStatusCancelled, entity.PaymentStatusUnpaid)},
		{"cancel in progress", st(entity.BookingStatusInProgress, entity.PaymentStatusFailed), EventCancel, st(entity.BookingStatusCancelled, entity.PaymentStatusFailed)},
		{"cancel paid confirmed", st(entity.BookingStatusConfirmed, entity.PaymentStatusPaid), EventCancel, st(entity.BookingStatusCancelled, entity.PaymentStatusPaid)},
		{"payment started", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventPaymentStarted, st(entity.BookingStatusPending, entity.PaymentStatusPending)},
		{"payment retried after failure", st(entity.BookingStatusPending, entity.PaymentStatusFailed), EventPaymentStarted, st(entity.BookingStatusPending, entity.PaymentStatusPending)},
		{"cash paid on completed", st(entity.BookingStatusCompleted, entity.PaymentStatusUnpaid), EventCashPaid, st(entity.BookingStatusCompleted, entity.PaymentStatusPaid)},
		{"gateway paid confirms pending", st(entity.BookingStatusPending, entity.PaymentStatusPending), EventGatewayPaid, st(entity.BookingStatusConfirmed, entity.PaymentStatusPaid)},
		{"gateway paid keeps in progress", st(entity.BookingStatusInProgress, entity.PaymentStatusPending), EventGatewayPaid, st(entity.BookingStatusInProgress, entity.PaymentStatusPaid)},
		{"payment failed from pending", st(entity.BookingStatusPending, entity.PaymentStatusPending), EventPaymentFailed, st(entity.BookingStatusPending, entity.PaymentStatusFailed)},
		{"payment failed from unpaid", st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid), EventPaymentFailed, st(entity.BookingStatusConfirmed, entity.PaymentStatusFailed)},
		{"payment reset", st(entity.BookingStatusPending, entity.PaymentStatusFailed), EventPaymentReset, st(entity.BookingStatusPending, entity.PaymentStatusUnpaid)},
		{"refund", st(entity.BookingStatusCompleted, entity.PaymentStatusPaid), EventRefund, st(entity.BookingStatusCompleted, entity.PaymentStatusRefunded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := Transition(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.from, change.From)
			assert.Equal(t, tt.want, change.To)
			assert.Equal(t, tt.event, change.Event)
		})
	}
}

func TestTransition_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
	}{
		{"cancel completed", st(entity.BookingStatusCompleted, entity.PaymentStatusPaid), EventCancel},
		{"cancel cancelled", st(entity.BookingStatusCancelled, entity.PaymentStatusUnpaid), EventCancel},
		{"cancel with payment in flight", st(entity.BookingStatusPending, entity.PaymentStatusPending), EventCancel},
		{"confirm cancelled", st(entity.BookingStatusCancelled, entity.PaymentStatusUnpaid), EventConfirm},
		{"confirm in progress", st(entity.BookingStatusInProgress, entity.PaymentStatusUnpaid), EventConfirm},
		{"assign staff to cancelled", st(entity.BookingStatusCancelled, entity.PaymentStatusUnpaid), EventAssignStaff},
		{"start pending", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventStart},
		{"complete pending", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventComplete},
		{"reschedule completed", st(entity.BookingStatusCompleted, entity.PaymentStatusUnpaid), EventReschedule},
		{"cash paid before completion", st(entity.BookingStatusConfirmed, entity.PaymentStatusUnpaid), EventCashPaid},
		{"cash paid twice", st(entity.BookingStatusCompleted, entity.PaymentStatusPaid), EventCashPaid},
		{"gateway paid twice", st(entity.BookingStatusConfirmed, entity.PaymentStatusPaid), EventGatewayPaid},
		{"payment started when paid", st(entity.BookingStatusConfirmed, entity.PaymentStatusPaid), EventPaymentStarted},
		{"payment started when cancelled", st(entity.BookingStatusCancelled, entity.PaymentStatusUnpaid), EventPaymentStarted},
		{"payment failed after paid", st(entity.BookingStatusConfirmed, entity.PaymentStatusPaid), EventPaymentFailed},
		{"reset unpaid", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), EventPaymentReset},
		{"refund unpaid", st(entity.BookingStatusCompleted, entity.PaymentStatusUnpaid), EventRefund},
		{"unknown event", st(entity.BookingStatusPending, entity.PaymentStatusUnpaid), Event("teleport")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transition(tt.from, tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRejected)

			var rejected *RejectedTransition
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.event, rejected.Event)
			assert.Equal(t, tt.from, rejected.From)
			assert.NotEmpty(t, rejected.Reason)
		})
	}
}

func TestGatewayPaid_AcceptedRegardlessOfStatus(t *testing.T) {
	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusConfirmed,
		entity.BookingStatusInProgress,
		entity.BookingStatusCompleted,
		entity.BookingStatusRescheduled,
	} {
		change, err := Transition(st(status, entity.PaymentStatusPending), EventGatewayPaid)
		require.NoError(t, err, status)
		assert.Equal(t, entity.PaymentStatusPaid, change.To.PaymentStatus)
	}
}

func TestChange_Columns(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	change, err := Transition(st(entity.BookingStatusPending, entity.PaymentStatusPending), EventGatewayPaid)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"status":         entity.BookingStatusConfirmed,
		"payment_status": entity.PaymentStatusPaid,
	}, change.Columns(now))

	change, err = Transition(st(entity.BookingStatusInProgress, entity.PaymentStatusUnpaid), EventComplete)
	require.NoError(t, err)
	cols := change.Columns(now)
	assert.Equal(t, entity.BookingStatusCompleted, cols["status"])
	assert.Equal(t, now, cols["completed_at"])
	assert.NotContains(t, cols, "payment_status")

	change, err = Transition(st(entity.BookingStatusInProgress, entity.PaymentStatusPaid), EventAssignStaff)
	require.NoError(t, err)
	assert.True(t, change.IsNoop())
	assert.Empty(t, change.Columns(now))
}

func TestChange_ApplyTo(t *testing.T) {
	now := time.Now()
	b := &entity.Booking{Status: entity.BookingStatusConfirmed, PaymentStatus: entity.PaymentStatusUnpaid}

	change, err := Transition(StateOf(b), EventCancel)
	require.NoError(t, err)
	change.ApplyTo(b, now)

	assert.Equal(t, entity.BookingStatusCancelled, b.Status)
	require.NotNil(t, b.CancelledAt)
	assert.Equal(t, now, *b.CancelledAt)
}

func TestEventForStatus(t *testing.T) {
	ev, err := EventForStatus(entity.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, EventComplete, ev)

	_, err = EventForStatus(entity.BookingStatusPending)
	assert.ErrorIs(t, err, ErrUnreachableStatus)
}

func TestEventForPaymentStatus(t *testing.T) {
	ev, err := EventForPaymentStatus(entity.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, EventCashPaid, ev)

	_, err = EventForPaymentStatus(entity.PaymentStatusPending)
	assert.ErrorIs(t, err, ErrUnreachableStatus)
}
