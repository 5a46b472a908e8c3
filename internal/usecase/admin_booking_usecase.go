package usecase

import (
	"context"
	"errors"
	"time"

	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/lifecycle"
	"cleanhome-backend/internal/domain/repository"
	"cleanhome-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrStaffNotFound = errors.New("staff member not found or inactive")
	ErrNoStaffGiven  = errors.New("at least one staff member is required")
)

type AdminBookingUsecase interface {
	ListBookings(ctx context.Context, actor entity.Actor, query *dto.BookingListQuery) (*dto.PagedBookingsResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdatePaymentStatusRequest) (*dto.BookingResponse, error)
	AssignStaff(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.AssignStaffRequest) (*dto.BookingResponse, error)
	AssignMultipleStaff(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.AssignMultipleStaffRequest) (*dto.BookingAssignmentResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, reason string) (*dto.BookingResponse, error)
}

type adminBookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	bookingRepo    repository.BookingRepository
	userRepo       repository.UserRepository
	assignmentRepo repository.StaffAssignmentRepository
	auditService   service.AuditService
	canceller      *bookingCanceller
	now            func() time.Time
}

func NewAdminBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.StaffAssignmentRepository,
	ledgerRepo repository.GatewayTransactionRepository,
	auditService service.AuditService,
) AdminBookingUsecase {
	return &adminBookingUsecase{
		db:             db,
		log:            log,
		bookingRepo:    bookingRepo,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		auditService:   auditService,
		canceller:      newBookingCanceller(log, bookingRepo, ledgerRepo, auditService),
		now:            time.Now,
	}
}

func (u *adminBookingUsecase) ListBookings(ctx context.Context, actor entity.Actor, query *dto.BookingListQuery) (*dto.PagedBookingsResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	filter := entity.BookingFilter{
		Status:        entity.BookingStatus(query.Status),
		PaymentStatus: entity.PaymentStatus(query.PaymentStatus),
		Page:          query.Page,
		Limit:         query.Limit,
	}

	bookings, total, err := u.bookingRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list bookings: %+v", err)
		return nil, err
	}

	return &dto.PagedBookingsResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Page:     filter.Page,
		Limit:    filter.Limit,
		Total:    total,
	}, nil
}

func (u *adminBookingUsecase) UpdateStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	target := entity.BookingStatus(req.Status)
	if target == entity.BookingStatusCancelled {
		return u.CancelBooking(ctx, actor, bookingID, req.Reason)
	}

	event, err := lifecycle.EventForStatus(target)
	if err != nil {
		return nil, err
	}

	return u.transition(ctx, actor, bookingID, event, entity.AuditActionBookingStatus, nil)
}

// UpdatePaymentStatus records money handled outside the gateway. Marking a
// booking paid this way goes through the cash guard.
func (u *adminBookingUsecase) UpdatePaymentStatus(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.UpdatePaymentStatusRequest) (*dto.BookingResponse, error) {
	event, err := lifecycle.EventForPaymentStatus(entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return nil, err
	}

	return u.transition(ctx, actor, bookingID, event, entity.AuditActionBookingPaymentStatus, nil)
}

func (u *adminBookingUsecase) AssignStaff(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.AssignStaffRequest) (*dto.BookingResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	staff, err := u.userRepo.FindActiveByIDsAndRole(u.db.WithContext(ctx), []uuid.UUID{req.StaffID}, entity.RoleIDStaff)
	if err != nil {
		u.log.Warnf("Failed to find staff %s: %+v", req.StaffID, err)
		return nil, err
	}
	if len(staff) != 1 {
		return nil, ErrStaffNotFound
	}

	return u.transition(ctx, actor, bookingID, lifecycle.EventAssignStaff, entity.AuditActionBookingAssignStaff, map[string]interface{}{
		"staff_id": req.StaffID,
	})
}

// AssignMultipleStaff replaces the booking's staff set in one transaction.
func (u *adminBookingUsecase) AssignMultipleStaff(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, req *dto.AssignMultipleStaffRequest) (*dto.BookingAssignmentResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	staffIDs := entity.DedupIDs(req.StaffIDs)
	if len(staffIDs) == 0 {
		return nil, ErrNoStaffGiven
	}

	db := u.db.WithContext(ctx)
	tx := db.Begin()
	defer tx.Rollback()

	booking, err := u.bookingRepo.FindByIDForUpdate(tx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	staff, err := u.userRepo.FindActiveByIDsAndRole(tx, staffIDs, entity.RoleIDStaff)
	if err != nil {
		u.log.Warnf("Failed to find staff: %+v", err)
		return nil, err
	}
	if len(staff) != len(staffIDs) {
		return nil, ErrStaffNotFound
	}

	change, err := lifecycle.Transition(lifecycle.StateOf(booking), lifecycle.EventAssignStaff)
	if err != nil {
		return nil, err
	}

	assignments := make([]entity.StaffAssignment, 0, len(staffIDs))
	for _, id := range staffIDs {
		assignments = append(assignments, entity.StaffAssignment{
			BookingID:  booking.ID,
			StaffID:    id,
			AssignedBy: &actor.UserID,
			Notes:      req.Notes,
		})
	}
	if err := u.assignmentRepo.ReplaceForBooking(tx, booking.ID, assignments); err != nil {
		u.log.Warnf("Failed to replace staff assignments for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	now := u.now()
	if !change.IsNoop() {
		if err := u.bookingRepo.Update(tx, booking.ID, change.Columns(now)); err != nil {
			u.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
			return nil, err
		}
	}

	ids := make([]string, len(staffIDs))
	for i, id := range staffIDs {
		ids[i] = id.String()
	}
	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionBookingAssignStaff, "booking", booking.ID.String(),
		map[string]interface{}{"status": string(change.From.Status)},
		map[string]interface{}{"status": string(change.To.Status), "staff_ids": ids},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	updated, err := u.bookingRepo.FindByID(db, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return nil, err
	}
	saved, err := u.assignmentRepo.FindByBookingID(db, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to find staff assignments for booking %s: %+v", booking.ID, err)
		return nil, err
	}

	return &dto.BookingAssignmentResponse{
		Booking:     converter.BookingToResponse(updated),
		Assignments: converter.StaffAssignmentsToResponses(saved),
	}, nil
}

func (u *adminBookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, reason string) (*dto.BookingResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	db := u.db.WithContext(ctx)
	tx := db.Begin()
	defer tx.Rollback()

	booking, err := u.bookingRepo.FindByIDForUpdate(tx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := u.canceller.cancel(ctx, tx, actor, booking, reason, u.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.reload(db, booking)
}

// transition locks the booking, runs event through the state machine and
// persists the change together with extra columns and an audit row.
func (u *adminBookingUsecase) transition(
	ctx context.Context,
	actor entity.Actor,
	bookingID uuid.UUID,
	event lifecycle.Event,
	action string,
	extra map[string]interface{},
) (*dto.BookingResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	db := u.db.WithContext(ctx)
	tx := db.Begin()
	defer tx.Rollback()

	booking, err := u.bookingRepo.FindByIDForUpdate(tx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	change, err := lifecycle.Transition(lifecycle.StateOf(booking), event)
	if err != nil {
		return nil, err
	}

	columns := change.Columns(u.now())
	for k, v := range extra {
		columns[k] = v
	}
	if len(columns) > 0 {
		if err := u.bookingRepo.Update(tx, booking.ID, columns); err != nil {
			u.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
			return nil, err
		}
	}

	newValue := map[string]interface{}{
		"event":          string(event),
		"status":         string(change.To.Status),
		"payment_status": string(change.To.PaymentStatus),
	}
	for k, v := range extra {
		newValue[k] = v
	}
	if err := u.auditService.LogUpdate(ctx, tx, &actor.UserID, action, "booking", booking.ID.String(),
		map[string]interface{}{"status": string(change.From.Status), "payment_status": string(change.From.PaymentStatus)},
		newValue,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Booking %s: %s applied by %s", booking.BookingCode, event, actor.UserID)

	return u.reload(db, booking)
}

func (u *adminBookingUsecase) reload(db *gorm.DB, booking *entity.Booking) (*dto.BookingResponse, error) {
	updated, err := u.bookingRepo.FindByID(db, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrBookingNotFound
	}
	return converter.BookingToResponse(updated), nil
}
