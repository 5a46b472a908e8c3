package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/lifecycle"
	"cleanhome-backend/internal/domain/repository"
	"cleanhome-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	bookingCodePrefix   = "CH"
	bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxBookingCodeTries = 5
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidDateFormat    = errors.New("invalid date format, use YYYY-MM-DD and HH:MM")
	ErrBookingInPast        = errors.New("booking date and time must be in the future")
	ErrServiceUnavailable   = errors.New("one or more services are not available")
	ErrPaymentInFlight      = errors.New("booking has a payment in progress")
	ErrBookingCodeExhausted = errors.New("could not allocate a unique booking code")
)

// localZone is the wall clock bookings are scheduled in and the gateway
// expects for vnp_CreateDate.
var localZone = time.FixedZone("ICT", 7*60*60)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest, clientIP string) (*dto.CreateBookingResponse, error)
	GetMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error)
	GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, reason string) (*dto.BookingResponse, error)
}

type bookingUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	bookingRepo    repository.BookingRepository
	serviceRepo    repository.ServiceRepository
	assignmentRepo repository.StaffAssignmentRepository
	paymentUsecase PaymentUsecase
	auditService   service.AuditService
	canceller      *bookingCanceller
	now            func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	serviceRepo repository.ServiceRepository,
	assignmentRepo repository.StaffAssignmentRepository,
	ledgerRepo repository.GatewayTransactionRepository,
	paymentUsecase PaymentUsecase,
	auditService service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		db:             db,
		log:            log,
		bookingRepo:    bookingRepo,
		serviceRepo:    serviceRepo,
		assignmentRepo: assignmentRepo,
		paymentUsecase: paymentUsecase,
		auditService:   auditService,
		canceller:      newBookingCanceller(log, bookingRepo, ledgerRepo, auditService),
		now:            time.Now,
	}
}

// CreateBooking prices the requested services and stores the booking with its
// line items. For gateway payments the first attempt is opened in the same
// transaction so the booking never exists without its ledger entry.
func (u *bookingUsecase) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest, clientIP string) (*dto.CreateBookingResponse, error) {
	date, err := time.ParseInLocation("2006-01-02", req.BookingDate, localZone)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	booking := &entity.Booking{
		UserID:          actor.UserID,
		BookingDate:     date,
		BookingTime:     req.BookingTime,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		Status:          entity.BookingStatusPending,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaymentMethod:   entity.PaymentMethod(req.PaymentMethod),
	}

	scheduled, err := booking.ScheduledAt(localZone)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if !scheduled.After(u.now()) {
		return nil, ErrBookingInPast
	}

	db := u.db.WithContext(ctx)

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ServiceID)
	}
	ids = entity.DedupIDs(ids)

	services, err := u.serviceRepo.FindByIDs(db, ids)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, err
	}
	byID := make(map[uuid.UUID]entity.Service, len(services))
	for _, s := range services {
		if s.IsActive() {
			byID[s.ID] = s
		}
	}
	if len(byID) != len(ids) {
		return nil, ErrServiceUnavailable
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		svc := byID[item.ServiceID]
		line := svc.Price.Mul(decimal.NewFromInt(int64(qty)))
		booking.Items = append(booking.Items, entity.BookingItem{
			ServiceID: svc.ID,
			Quantity:  qty,
			UnitPrice: svc.Price,
			Subtotal:  line,
		})
		subtotal = subtotal.Add(line)
	}
	booking.Subtotal = subtotal
	booking.Discount = decimal.Zero
	booking.Tax = decimal.Zero
	booking.TotalPrice = subtotal

	tx := db.Begin()
	defer tx.Rollback()

	code, err := u.generateBookingCode(tx)
	if err != nil {
		return nil, err
	}
	booking.BookingCode = code

	if err := u.bookingRepo.Create(tx, booking); err != nil {
		if isDuplicateKeyError(err, "booking_code") {
			return nil, ErrBookingCodeExhausted
		}
		u.log.Warnf("Failed to create booking: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), map[string]interface{}{
		"booking_code":   booking.BookingCode,
		"total_price":    booking.TotalPrice.String(),
		"payment_method": string(booking.PaymentMethod),
	}); err != nil {
		return nil, err
	}

	var payment *dto.PaymentURLResponse
	if booking.PaymentMethod == entity.PaymentMethodVNPay {
		payment, err = u.paymentUsecase.StartAttempt(ctx, tx, actor.UserID, booking, clientIP, req.BankCode)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	created, err := u.bookingRepo.FindByID(db, booking.ID)
	if err != nil || created == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		created = booking
	}

	u.log.Infof("Booking %s created for user %s", created.BookingCode, actor.UserID)

	return &dto.CreateBookingResponse{
		Booking: converter.BookingToResponse(created),
		Payment: payment,
	}, nil
}

// generateBookingCode returns CH + the last six digits of the unix time + five
// random characters, checked against existing codes.
func (u *bookingUsecase) generateBookingCode(db *gorm.DB) (string, error) {
	for i := 0; i < maxBookingCodeTries; i++ {
		ts := strconv.FormatInt(u.now().Unix(), 10)
		if len(ts) > 6 {
			ts = ts[len(ts)-6:]
		}

		suffix := make([]byte, 5)
		for j := range suffix {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingCodeAlphabet))))
			if err != nil {
				return "", err
			}
			suffix[j] = bookingCodeAlphabet[n.Int64()]
		}

		code := bookingCodePrefix + ts + string(suffix)
		exists, err := u.bookingRepo.ExistsByCode(db, code)
		if err != nil {
			u.log.Warnf("Failed to check booking code: %+v", err)
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrBookingCodeExhausted
}

func (u *bookingUsecase) GetMyBookings(ctx context.Context, actor entity.Actor) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindByUserID(u.db.WithContext(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for user %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) GetBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	db := u.db.WithContext(ctx)

	booking, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	assigned := false
	if actor.IsStaff() {
		assigned, err = u.assignmentRepo.IsAssigned(db, bookingID, actor.UserID)
		if err != nil {
			u.log.Warnf("Failed to check staff assignment: %+v", err)
			return nil, err
		}
	}
	if !actor.CanViewBooking(booking, assigned) {
		return nil, ErrForbidden
	}

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) CancelBooking(ctx context.Context, actor entity.Actor, bookingID uuid.UUID, reason string) (*dto.BookingResponse, error) {
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
	if !actor.IsAdmin() && !booking.IsOwnedBy(actor.UserID) {
		return nil, ErrForbidden
	}

	if err := u.canceller.cancel(ctx, tx, actor, booking, reason, u.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	updated, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil || updated == nil {
		return converter.BookingToResponse(booking), nil
	}
	return converter.BookingToResponse(updated), nil
}

// bookingCanceller is the one cancellation path for customers and admins.
type bookingCanceller struct {
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	ledgerRepo   repository.GatewayTransactionRepository
	auditService service.AuditService
}

func newBookingCanceller(
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	ledgerRepo repository.GatewayTransactionRepository,
	auditService service.AuditService,
) *bookingCanceller {
	return &bookingCanceller{
		log:          log,
		bookingRepo:  bookingRepo,
		ledgerRepo:   ledgerRepo,
		auditService: auditService,
	}
}

// cancel runs on tx with the booking row already locked. Pending gateway
// attempts block a customer; an admin closes them as failed first.
func (c *bookingCanceller) cancel(ctx context.Context, tx *gorm.DB, actor entity.Actor, booking *entity.Booking, reason string, now time.Time) error {
	pending, err := c.ledgerRepo.FindPendingByBookingID(tx, booking.ID)
	if err != nil {
		c.log.Warnf("Failed to find pending payments for booking %s: %+v", booking.ID, err)
		return err
	}

	if len(pending) > 0 {
		if !actor.IsAdmin() {
			return ErrPaymentInFlight
		}
		if err := c.failPending(tx, actor, booking, pending, now); err != nil {
			return err
		}
	}

	from := lifecycle.StateOf(booking)
	change, err := lifecycle.Transition(from, lifecycle.EventCancel)
	if err != nil {
		return err
	}

	columns := change.Columns(now)
	columns["cancelled_by"] = actor.UserID
	columns["cancel_reason"] = reason
	if err := c.bookingRepo.Update(tx, booking.ID, columns); err != nil {
		c.log.Warnf("Failed to cancel booking %s: %+v", booking.ID, err)
		return err
	}
	change.ApplyTo(booking, now)
	booking.CancelledBy = &actor.UserID
	booking.CancelReason = reason

	return c.auditService.LogUpdate(ctx, tx, &actor.UserID, entity.AuditActionBookingCancel, "booking", booking.ID.String(),
		map[string]interface{}{"status": string(from.Status), "payment_status": string(from.PaymentStatus)},
		map[string]interface{}{"status": string(booking.Status), "payment_status": string(booking.PaymentStatus), "reason": reason},
	)
}

func (c *bookingCanceller) failPending(tx *gorm.DB, actor entity.Actor, booking *entity.Booking, pending []entity.GatewayTransaction, now time.Time) error {
	raw := datatypes.JSON(fmt.Sprintf(`{"source":"admin_cancel","cancelled_by":%q}`, actor.UserID.String()))
	if err := closeAttempts(tx, c.ledgerRepo, pending, raw, now); err != nil {
		c.log.Warnf("Failed to close payment attempts for booking %s: %+v", booking.ID, err)
		return err
	}

	if booking.PaymentStatus != entity.PaymentStatusPending {
		return nil
	}
	change, err := lifecycle.Transition(lifecycle.StateOf(booking), lifecycle.EventPaymentFailed)
	if err != nil {
		return err
	}
	if err := c.bookingRepo.Update(tx, booking.ID, change.Columns(now)); err != nil {
		c.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
		return err
	}
	change.ApplyTo(booking, now)
	return nil
}
