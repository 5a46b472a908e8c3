// Package lifecycle holds the booking state machine. Every change to a
// booking's status or payment status is computed here and persisted by the
// caller.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"cleanhome-backend/internal/domain/entity"
)

type Event string

const (
	EventConfirm        Event = "confirm"
	EventAssignStaff    Event = "assign_staff"
	EventStart          Event = "start"
	EventComplete       Event = "complete"
	EventReschedule     Event = "reschedule"
	EventCancel         Event = "cancel"
	EventPaymentStarted Event = "payment_started"
	EventCashPaid       Event = "cash_paid"
	EventGatewayPaid    Event = "gateway_paid"
	EventPaymentFailed  Event = "payment_failed"
	EventPaymentReset   Event = "payment_reset"
	EventRefund         Event = "refund"
)

// ErrRejected is wrapped by every RejectedTransition.
var ErrRejected = errors.New("transition rejected")

// State is the status pair a transition reads.
type State struct {
	Status        entity.BookingStatus
	PaymentStatus entity.PaymentStatus
}

func StateOf(b *entity.Booking) State {
	return State{Status: b.Status, PaymentStatus: b.PaymentStatus}
}

// RejectedTransition reports a guard violation. The booking must be left
// untouched.
type RejectedTransition struct {
	Event  Event
	From   State
	Reason string
}

func (e *RejectedTransition) Error() string {
	return fmt.Sprintf("cannot apply %s to booking in %s/%s: %s", e.Event, e.From.Status, e.From.PaymentStatus, e.Reason)
}

func (e *RejectedTransition) Unwrap() error {
	return ErrRejected
}

// Change is the result of an accepted transition.
type Change struct {
	Event Event
	From  State
	To    State
}

func (c Change) StatusChanged() bool {
	return c.From.Status != c.To.Status
}

func (c Change) PaymentStatusChanged() bool {
	return c.From.PaymentStatus != c.To.PaymentStatus
}

// IsNoop reports an accepted event that leaves both fields as they were.
func (c Change) IsNoop() bool {
	return !c.StatusChanged() && !c.PaymentStatusChanged()
}

// Columns yields the gorm update map for the change. Timestamps for terminal
// statuses are stamped with now.
func (c Change) Columns(now time.Time) map[string]interface{} {
	cols := make(map[string]interface{})
	if c.StatusChanged() {
		cols["status"] = c.To.Status
		switch c.To.Status {
		case entity.BookingStatusCompleted:
			cols["completed_at"] = now
		case entity.BookingStatusCancelled:
			cols["cancelled_at"] = now
		}
	}
	if c.PaymentStatusChanged() {
		cols["payment_status"] = c.To.PaymentStatus
	}
	return cols
}

// ApplyTo copies the new state onto b, mirroring Columns.
func (c Change) ApplyTo(b *entity.Booking, now time.Time) {
	if c.StatusChanged() {
		b.Status = c.To.Status
		switch c.To.Status {
		case entity.BookingStatusCompleted:
			b.CompletedAt = &now
		case entity.BookingStatusCancelled:
			b.CancelledAt = &now
		}
	}
	b.PaymentStatus = c.To.PaymentStatus
}

// Transition computes the effect of ev on s. It has no side effects.
func Transition(s State, ev Event) (Change, error) {
	next, reason := apply(s, ev)
	if reason != "" {
		return Change{}, &RejectedTransition{Event: ev, From: s, Reason: reason}
	}
	return Change{Event: ev, From: s, To: next}, nil
}

func apply(s State, ev Event) (State, string) {
	next := s
	switch ev {
	case EventConfirm, EventAssignStaff, EventStart, EventComplete, EventReschedule, EventCancel:
		if s.Status == entity.BookingStatusCancelled {
			return s, "booking is cancelled"
		}
	}

	switch ev {
	case EventConfirm:
		if s.Status != entity.BookingStatusPending && s.Status != entity.BookingStatusRescheduled {
			return s, "only pending or rescheduled bookings can be confirmed"
		}
		next.Status = entity.BookingStatusConfirmed

	case EventAssignStaff:
		switch s.Status {
		case entity.BookingStatusPending, entity.BookingStatusRescheduled:
			next.Status = entity.BookingStatusConfirmed
		case entity.BookingStatusCompleted:
			return s, "booking is completed"
		}

	case EventStart:
		if s.Status != entity.BookingStatusConfirmed {
			return s, "only confirmed bookings can be started"
		}
		next.Status = entity.BookingStatusInProgress

	case EventComplete:
		if s.Status != entity.BookingStatusConfirmed && s.Status != entity.BookingStatusInProgress {
			return s, "only confirmed or in-progress bookings can be completed"
		}
		next.Status = entity.BookingStatusCompleted

	case EventReschedule:
		if s.Status != entity.BookingStatusPending && s.Status != entity.BookingStatusConfirmed {
			return s, "only pending or confirmed bookings can be rescheduled"
		}
		next.Status = entity.BookingStatusRescheduled

	case EventCancel:
		if s.Status == entity.BookingStatusCompleted {
			return s, "booking is completed"
		}
		if s.PaymentStatus == entity.PaymentStatusPending {
			return s, "a gateway payment is in flight"
		}
		next.Status = entity.BookingStatusCancelled

	case EventPaymentStarted:
		if s.PaymentStatus == entity.PaymentStatusPaid || s.PaymentStatus == entity.PaymentStatusRefunded {
			return s, "booking is already paid"
		}
		if s.Status == entity.BookingStatusCancelled || s.Status == entity.BookingStatusCompleted {
			return s, "booking no longer accepts payments"
		}
		next.PaymentStatus = entity.PaymentStatusPending

	case EventCashPaid:
		if s.Status != entity.BookingStatusCompleted {
			return s, "cash can only be collected for completed bookings"
		}
		if s.PaymentStatus == entity.PaymentStatusPaid || s.PaymentStatus == entity.PaymentStatusRefunded {
			return s, "booking is already paid"
		}
		next.PaymentStatus = entity.PaymentStatusPaid

	case EventGatewayPaid:
		if s.PaymentStatus == entity.PaymentStatusPaid || s.PaymentStatus == entity.PaymentStatusRefunded {
			return s, "booking is already paid"
		}
		next.PaymentStatus = entity.PaymentStatusPaid
		if s.Status == entity.BookingStatusPending {
			next.Status = entity.BookingStatusConfirmed
		}

	case EventPaymentFailed:
		switch s.PaymentStatus {
		case entity.PaymentStatusPending, entity.PaymentStatusUnpaid, entity.PaymentStatusFailed:
			next.PaymentStatus = entity.PaymentStatusFailed
		default:
			return s, "payment is already settled"
		}

	case EventPaymentReset:
		if s.PaymentStatus != entity.PaymentStatusFailed {
			return s, "only failed payments can be reset"
		}
		next.PaymentStatus = entity.PaymentStatusUnpaid

	case EventRefund:
		if s.PaymentStatus != entity.PaymentStatusPaid {
			return s, "only paid bookings can be refunded"
		}
		next.PaymentStatus = entity.PaymentStatusRefunded

	default:
		return s, "unknown event"
	}
	return next, ""
}

// ErrUnreachableStatus is returned when an admin asks for a status no event
// leads to.
var ErrUnreachableStatus = errors.New("status cannot be set directly")

// EventForStatus maps an admin "set status" request onto the event that
// produces it.
func EventForStatus(target entity.BookingStatus) (Event, error) {
	switch target {
	case entity.BookingStatusConfirmed:
		return EventConfirm, nil
	case entity.BookingStatusInProgress:
		return EventStart, nil
	case entity.BookingStatusCompleted:
		return EventComplete, nil
	case entity.BookingStatusRescheduled:
		return EventReschedule, nil
	case entity.BookingStatusCancelled:
		return EventCancel, nil
	}
	return "", ErrUnreachableStatus
}

// EventForPaymentStatus maps an admin "set payment status" request onto an
// event. Admins record cash collection only; gateway payments arrive
// through reconciliation.
func EventForPaymentStatus(target entity.PaymentStatus) (Event, error) {
	switch target {
	case entity.PaymentStatusPaid:
		return EventCashPaid, nil
	case entity.PaymentStatusRefunded:
		return EventRefund, nil
	case entity.PaymentStatusFailed:
		return EventPaymentFailed, nil
	case entity.PaymentStatusUnpaid:
		return EventPaymentReset, nil
	}
	return "", ErrUnreachableStatus
}
