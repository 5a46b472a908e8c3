package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cleanhome-backend/config"
	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/lifecycle"
	"cleanhome-backend/internal/domain/repository"
	"cleanhome-backend/internal/service"
	"cleanhome-backend/pkg/vnpay"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxReferenceAttempts = 5

var (
	ErrReferenceExhausted = errors.New("could not allocate a unique payment reference")
	ErrLedgerBookingGone  = errors.New("ledger entry points to a missing booking")
)

// Redirect error keys for the return page.
const (
	redirectInvalidSignature    = "invalid_signature"
	redirectTransactionNotFound = "transaction_not_found"
	redirectBookingNotFound     = "booking_not_found"
	redirectSystemError         = "system_error"
	redirectAmountMismatch      = "amount_mismatch"
	redirectDuplicatePayment    = "duplicate_payment"
)

type PaymentUsecase interface {
	CreatePaymentURL(ctx context.Context, actor entity.Actor, req *dto.CreatePaymentRequest, clientIP string) (*dto.PaymentURLResponse, error)
	// StartAttempt opens a ledger entry for booking on tx and returns the signed
	// redirect. The caller owns the transaction and must hold the booking row.
	StartAttempt(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, booking *entity.Booking, clientIP, bankCode string) (*dto.PaymentURLResponse, error)
	HandleReturn(ctx context.Context, params url.Values) string
	HandleNotification(ctx context.Context, params url.Values) *dto.IPNResponse
	GetTransactions(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.GatewayTransactionListResponse, error)
}

type paymentUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	cfg          config.VNPayConfig
	frontendURL  string
	signer       *vnpay.Signer
	bookingRepo  repository.BookingRepository
	ledgerRepo   repository.GatewayTransactionRepository
	auditService service.AuditService
	now          func() time.Time
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg *config.Config,
	signer *vnpay.Signer,
	bookingRepo repository.BookingRepository,
	ledgerRepo repository.GatewayTransactionRepository,
	auditService service.AuditService,
) PaymentUsecase {
	return &paymentUsecase{
		db:           db,
		log:          log,
		cfg:          cfg.VNPay,
		frontendURL:  strings.TrimRight(cfg.App.FrontendURL, "/"),
		signer:       signer,
		bookingRepo:  bookingRepo,
		ledgerRepo:   ledgerRepo,
		auditService: auditService,
		now:          time.Now,
	}
}

func (u *paymentUsecase) CreatePaymentURL(ctx context.Context, actor entity.Actor, req *dto.CreatePaymentRequest, clientIP string) (*dto.PaymentURLResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	booking, err := u.bookingRepo.FindByIDForUpdate(tx, req.BookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", req.BookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !actor.CanPayFor(booking) {
		return nil, ErrForbidden
	}

	resp, err := u.StartAttempt(ctx, tx, actor.UserID, booking, clientIP, req.BankCode)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

func (u *paymentUsecase) StartAttempt(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, booking *entity.Booking, clientIP, bankCode string) (*dto.PaymentURLResponse, error) {
	change, err := lifecycle.Transition(lifecycle.StateOf(booking), lifecycle.EventPaymentStarted)
	if err != nil {
		return nil, err
	}

	now := u.now().In(localZone)
	orderInfo := "Thanh toan dich vu CleanHome - Ma booking: " + booking.BookingCode

	// A booking has one open attempt at a time.
	pending, err := u.ledgerRepo.FindPendingByBookingID(tx, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to find pending payments for booking %s: %+v", booking.ID, err)
		return nil, err
	}
	if len(pending) > 0 {
		raw := datatypes.JSON(fmt.Sprintf(`{"source":"superseded","superseded_by":%q}`, actorID.String()))
		if err := closeAttempts(tx, u.ledgerRepo, pending, raw, now); err != nil {
			u.log.Warnf("Failed to supersede payment attempts: %+v", err)
			return nil, err
		}
		u.log.Infof("Closed %d open payment attempt(s) for booking %s", len(pending), booking.BookingCode)
	}

	var entry *entity.GatewayTransaction
	for i := 0; i < maxReferenceAttempts; i++ {
		candidate := &entity.GatewayTransaction{
			Reference: u.reference(booking.BookingCode, now.Add(time.Duration(i)*time.Second)),
			BookingID: booking.ID,
			UserID:    booking.UserID,
			Amount:    booking.TotalPrice,
			Currency:  entity.CurrencyVND,
			OrderInfo: orderInfo,
			Outcome:   entity.GatewayOutcomePending,
		}

		if err := tx.SavePoint("ledger_entry").Error; err != nil {
			u.log.Warnf("Failed to create savepoint: %+v", err)
			return nil, err
		}
		err := u.ledgerRepo.Create(tx, candidate)
		if err == nil {
			entry = candidate
			break
		}
		if !isDuplicateKeyError(err, "reference") {
			u.log.Warnf("Failed to create gateway transaction: %+v", err)
			return nil, err
		}
		if err := tx.RollbackTo("ledger_entry").Error; err != nil {
			u.log.Warnf("Failed to roll back to savepoint: %+v", err)
			return nil, err
		}
		u.log.Infof("Payment reference %s already taken, retrying", candidate.Reference)
	}
	if entry == nil {
		return nil, ErrReferenceExhausted
	}

	columns := change.Columns(now)
	if booking.PaymentMethod != entity.PaymentMethodVNPay {
		columns["payment_method"] = entity.PaymentMethodVNPay
	}
	if len(columns) > 0 {
		if err := u.bookingRepo.Update(tx, booking.ID, columns); err != nil {
			u.log.Warnf("Failed to update booking %s: %+v", booking.ID, err)
			return nil, err
		}
	}
	change.ApplyTo(booking, now)
	booking.PaymentMethod = entity.PaymentMethodVNPay

	paymentURL, err := u.signer.BuildPaymentURL(vnpay.PaymentRequest{
		BaseURL:   u.cfg.PaymentURL,
		Version:   u.cfg.Version,
		TmnCode:   u.cfg.TmnCode,
		Amount:    entry.Amount,
		Reference: entry.Reference,
		OrderInfo: entry.OrderInfo,
		OrderType: u.cfg.OrderType,
		Locale:    u.cfg.Locale,
		ReturnURL: u.cfg.ReturnURL,
		ClientIP:  clientIP,
		BankCode:  bankCode,
		CreatedAt: now,
	})
	if err != nil {
		u.log.Warnf("Failed to build payment URL: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, tx, &actorID, entity.AuditActionPaymentCreate, map[string]interface{}{
		"reference":    entry.Reference,
		"booking_id":   booking.ID.String(),
		"booking_code": booking.BookingCode,
		"amount":       entry.Amount.String(),
	}); err != nil {
		return nil, err
	}

	return &dto.PaymentURLResponse{
		PaymentURL: paymentURL,
		Reference:  entry.Reference,
		Amount:     entry.Amount,
	}, nil
}

// reference builds <prefix><code>_<yyyyMMddHHmmss>. A code that already
// starts with the prefix is not prefixed twice.
func (u *paymentUsecase) reference(bookingCode string, at time.Time) string {
	prefix := u.cfg.ReferencePrefix
	return prefix + strings.TrimPrefix(bookingCode, prefix) + "_" + at.Format(vnpay.DateLayout)
}

func (u *paymentUsecase) HandleNotification(ctx context.Context, params url.Values) *dto.IPNResponse {
	r := u.reconcile(ctx, params)
	return &dto.IPNResponse{
		RspCode: r.ack,
		Message: vnpay.AckMessage(r.ack),
	}
}

func (u *paymentUsecase) HandleReturn(ctx context.Context, params url.Values) string {
	r := u.reconcile(ctx, params)

	switch r.ack {
	case vnpay.AckInvalidSignature:
		return u.errorRedirect(redirectInvalidSignature, params)
	case vnpay.AckOrderNotFound:
		return u.errorRedirect(redirectTransactionNotFound, params)
	case vnpay.AckSystemError:
		return u.errorRedirect(redirectSystemError, params)
	}

	booking, err := u.bookingRepo.FindByID(u.db.WithContext(ctx), r.ledger.BookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", r.ledger.BookingID, err)
		return u.errorRedirect(redirectSystemError, params)
	}
	if booking == nil {
		return u.errorRedirect(redirectBookingNotFound, params)
	}

	if r.ledger.Outcome == entity.GatewayOutcomeSuccess {
		return u.successRedirect(booking, r.ledger, params)
	}
	return u.failureRedirect(booking, r.ledger, params)
}

func (u *paymentUsecase) successRedirect(booking *entity.Booking, ledger *entity.GatewayTransaction, params url.Values) string {
	msg := vnpay.Message(vnpay.SuccessCode)
	q := url.Values{}
	q.Set("booking_code", booking.BookingCode)
	q.Set("vnp_TxnRef", ledger.Reference)
	q.Set("vnp_Amount", strconv.FormatInt(vnpay.ToMinorUnits(ledger.Amount), 10))
	q.Set("vnp_ResponseCode", ledger.ResponseCode)
	q.Set("message", msg.Message)
	q.Set("title", msg.Title)
	for key, value := range map[string]string{
		"vnp_TransactionNo": ledger.TransactionNo,
		"vnp_BankCode":      ledger.BankCode,
		"vnp_PayDate":       ledger.PayDate,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	return u.frontendURL + "/payment/success?" + q.Encode()
}

func (u *paymentUsecase) failureRedirect(booking *entity.Booking, ledger *entity.GatewayTransaction, params url.Values) string {
	code := ledger.ResponseCode
	if code == "" {
		code = params.Get("vnp_ResponseCode")
	}
	info := vnpay.Describe(code)
	msg := vnpay.Message(code)
	errorType := info.ErrorType
	switch {
	case ledger.AmountMismatch:
		errorType = redirectAmountMismatch
		msg = vnpay.Message(vnpay.AckSystemError)
	case ledger.Conflict:
		errorType = redirectDuplicatePayment
		msg = vnpay.Message(vnpay.AckSystemError)
	}

	q := url.Values{}
	q.Set("booking_code", booking.BookingCode)
	q.Set("vnp_ResponseCode", code)
	q.Set("vnp_TxnRef", ledger.Reference)
	q.Set("error_type", errorType)
	q.Set("message", msg.Message)
	q.Set("title", msg.Title)
	q.Set("action", msg.Action)
	q.Set("color", msg.Color)
	return u.frontendURL + "/payment/failure?" + q.Encode()
}

func (u *paymentUsecase) errorRedirect(reason string, params url.Values) string {
	q := url.Values{}
	q.Set("error", reason)
	if ref := params.Get("vnp_TxnRef"); ref != "" {
		q.Set("vnp_TxnRef", ref)
	}
	return u.frontendURL + "/payment/failure?" + q.Encode()
}

type reconcileResult struct {
	ack        string
	ledger     *entity.GatewayTransaction
	appliedNow bool
}

// reconcile applies one gateway callback. Return and notification share it,
// so whichever arrives first wins and the other is acknowledged unchanged.
func (u *paymentUsecase) reconcile(ctx context.Context, params url.Values) reconcileResult {
	fields := logrus.Fields{"reference": params.Get("vnp_TxnRef"), "response_code": params.Get("vnp_ResponseCode")}

	if !u.signer.Verify(params) {
		u.log.WithFields(fields).Warn("Rejected gateway callback with invalid signature")
		return reconcileResult{ack: vnpay.AckInvalidSignature}
	}

	result, err := vnpay.ParseResult(params)
	if err != nil {
		if errors.Is(err, vnpay.ErrMissingReference) {
			return reconcileResult{ack: vnpay.AckOrderNotFound}
		}
		u.log.WithFields(fields).Warnf("Failed to parse gateway callback: %+v", err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}

	ledger, err := u.ledgerRepo.FindByReference(u.db.WithContext(ctx), result.Reference)
	if err != nil {
		u.log.Warnf("Failed to find gateway transaction %s: %+v", result.Reference, err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}
	if ledger == nil {
		u.log.WithFields(fields).Warn("Gateway callback for unknown reference")
		return reconcileResult{ack: vnpay.AckOrderNotFound}
	}

	raw, err := json.Marshal(flattenParams(params))
	if err != nil {
		u.log.Warnf("Failed to encode gateway parameters: %+v", err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}

	now := u.now()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Booking row first, then ledger rows: cancellation locks in the same order.
	booking, err := u.bookingRepo.FindByIDForUpdate(tx, ledger.BookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", ledger.BookingID, err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}
	if booking == nil {
		u.log.WithFields(fields).Warnf("Failed to reconcile booking: %+v", ErrLedgerBookingGone)
		return reconcileResult{ack: vnpay.AckSystemError}
	}

	d := decideOutcome(booking, ledger, result)
	update := entity.OutcomeUpdate{
		Outcome:           d.outcome,
		ResponseCode:      result.ResponseCode,
		TransactionStatus: result.TransactionStatus,
		TransactionNo:     result.TransactionNo,
		BankCode:          result.BankCode,
		BankTranNo:        result.BankTranNo,
		CardType:          result.CardType,
		PayDate:           result.PayDate,
		RawParams:         datatypes.JSON(raw),
		SecureHash:        result.SecureHash,
		AmountMismatch:    d.mismatch,
		Conflict:          d.conflict,
		ProcessedAt:       now,
	}

	appliedNow, err := u.ledgerRepo.ApplyOutcome(tx, result.Reference, update)
	if err != nil {
		u.log.Warnf("Failed to apply outcome to %s: %+v", result.Reference, err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}

	if appliedNow {
		if err := u.applyToBooking(ctx, tx, booking, ledger, result, d, now); err != nil {
			u.log.Warnf("Failed to reconcile booking for %s: %+v", result.Reference, err)
			return reconcileResult{ack: vnpay.AckSystemError}
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return reconcileResult{ack: vnpay.AckSystemError}
	}

	if appliedNow {
		ledger.Outcome = d.outcome
		ledger.ResponseCode = update.ResponseCode
		ledger.TransactionStatus = update.TransactionStatus
		ledger.TransactionNo = update.TransactionNo
		ledger.BankCode = update.BankCode
		ledger.PayDate = update.PayDate
		ledger.AmountMismatch = d.mismatch
		ledger.Conflict = d.conflict
		ledger.ProcessedAt = &now
	} else {
		stored, err := u.ledgerRepo.FindByReference(u.db.WithContext(ctx), result.Reference)
		if err != nil || stored == nil {
			u.log.Warnf("Failed to reload gateway transaction %s: %+v", result.Reference, err)
			return reconcileResult{ack: vnpay.AckSystemError}
		}
		ledger = stored
		if result.Succeeded() && stored.Outcome != entity.GatewayOutcomeSuccess {
			u.log.WithFields(fields).Errorf("Gateway reports success for attempt already closed as %s", stored.Outcome)
		} else {
			u.log.WithFields(fields).Info("Gateway callback already reconciled")
		}
	}

	return reconcileResult{ack: vnpay.AckConfirmed, ledger: ledger, appliedNow: appliedNow}
}

// outcomeDecision is the ledger outcome and booking change for one callback,
// computed against the locked booking row.
type outcomeDecision struct {
	outcome  entity.GatewayOutcome
	event    lifecycle.Event
	mismatch bool
	conflict bool
	change   lifecycle.Change
	rejected *lifecycle.RejectedTransition
}

// decideOutcome settles a callback before anything is written. Success needs
// both gateway codes, the ledger amount and a booking that accepts
// gateway_paid; a success for a booking that is already paid is stored as a
// failed conflict so at most one attempt per booking ends in success.
func decideOutcome(booking *entity.Booking, ledger *entity.GatewayTransaction, result *vnpay.Result) outcomeDecision {
	d := outcomeDecision{
		outcome:  entity.GatewayOutcomeFailed,
		event:    lifecycle.EventPaymentFailed,
		mismatch: vnpay.ToMinorUnits(ledger.Amount) != result.AmountMinor,
	}
	if result.Succeeded() && !d.mismatch {
		d.event = lifecycle.EventGatewayPaid
	}

	change, err := lifecycle.Transition(lifecycle.StateOf(booking), d.event)
	if err != nil {
		errors.As(err, &d.rejected)
		d.conflict = d.event == lifecycle.EventGatewayPaid
		return d
	}

	d.change = change
	if d.event == lifecycle.EventGatewayPaid {
		d.outcome = entity.GatewayOutcomeSuccess
	}
	return d
}

// applyToBooking persists the decided booking change for a freshly applied
// ledger outcome. A transition the booking cannot take is audited, not
// retried, and the booking keeps its state. An amount mismatch fails the
// payment so the booking can be paid again or cancelled.
func (u *paymentUsecase) applyToBooking(
	ctx context.Context,
	tx *gorm.DB,
	booking *entity.Booking,
	ledger *entity.GatewayTransaction,
	result *vnpay.Result,
	d outcomeDecision,
	now time.Time,
) error {
	meta := map[string]interface{}{
		"reference":      ledger.Reference,
		"booking_id":     booking.ID.String(),
		"booking_code":   booking.BookingCode,
		"outcome":        string(d.outcome),
		"response_code":  result.ResponseCode,
		"transaction_no": result.TransactionNo,
	}
	logFields := logrus.Fields{
		"reference":     ledger.Reference,
		"booking_code":  booking.BookingCode,
		"response_code": result.ResponseCode,
	}

	action := entity.AuditActionPaymentReconcile
	if d.mismatch {
		action = entity.AuditActionPaymentMismatch
		meta["expected_amount"] = vnpay.ToMinorUnits(ledger.Amount)
		meta["received_amount"] = result.AmountMinor
		u.log.WithFields(logFields).Errorf("Gateway amount %d does not match ledger amount %d", result.AmountMinor, vnpay.ToMinorUnits(ledger.Amount))
	}

	if d.rejected != nil {
		if !d.mismatch {
			action = entity.AuditActionPaymentConflict
		}
		meta["conflict"] = d.conflict
		meta["reason"] = d.rejected.Reason
		meta["status"] = string(booking.Status)
		meta["payment_status"] = string(booking.PaymentStatus)
		u.log.WithFields(logFields).Warnf("Gateway outcome conflicts with booking state: %v", d.rejected)
		return u.auditService.LogEvent(ctx, tx, nil, action, meta)
	}

	if !d.change.IsNoop() {
		if err := u.bookingRepo.Update(tx, booking.ID, d.change.Columns(now)); err != nil {
			return err
		}
	}
	d.change.ApplyTo(booking, now)

	meta["from_status"] = string(d.change.From.Status)
	meta["to_status"] = string(d.change.To.Status)
	meta["from_payment_status"] = string(d.change.From.PaymentStatus)
	meta["to_payment_status"] = string(d.change.To.PaymentStatus)
	u.log.WithFields(logFields).Infof("Booking payment %s -> %s", d.change.From.PaymentStatus, d.change.To.PaymentStatus)

	return u.auditService.LogEvent(ctx, tx, nil, action, meta)
}

// closeAttempts fails every attempt in pending. One already settled by a
// concurrent callback keeps its outcome.
func closeAttempts(tx *gorm.DB, ledgerRepo repository.GatewayTransactionRepository, pending []entity.GatewayTransaction, raw datatypes.JSON, now time.Time) error {
	for _, p := range pending {
		if _, err := ledgerRepo.ApplyOutcome(tx, p.Reference, entity.OutcomeUpdate{
			Outcome:     entity.GatewayOutcomeFailed,
			RawParams:   raw,
			ProcessedAt: now,
		}); err != nil {
			return fmt.Errorf("close payment attempt %s: %w", p.Reference, err)
		}
	}
	return nil
}

func (u *paymentUsecase) GetTransactions(ctx context.Context, actor entity.Actor, bookingID uuid.UUID) (*dto.GatewayTransactionListResponse, error) {
	db := u.db.WithContext(ctx)

	booking, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !actor.CanPayFor(booking) {
		return nil, ErrForbidden
	}

	txns, err := u.ledgerRepo.FindByBookingID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find gateway transactions for booking %s: %+v", bookingID, err)
		return nil, err
	}

	return &dto.GatewayTransactionListResponse{
		Transactions: converter.GatewayTransactionsToResponses(txns),
		Total:        len(txns),
	}, nil
}

func flattenParams(params url.Values) map[string]string {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	return flat
}
