package usecase

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/testutil"
	"cleanhome-backend/pkg/vnpay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentScenario struct {
	*fixture
	customer *entity.User
	booking  *entity.Booking
	ref      string
}

// newPaymentScenario opens one gateway attempt for a 200,000 VND booking.
func newPaymentScenario(t *testing.T) *paymentScenario {
	t.Helper()
	f := newFixture(t)

	customer := testutil.SeedUser(t, f.db, entity.RoleIDCustomer, "buyer@example.com")
	deep := testutil.SeedService(t, f.db, "Deep cleaning", 200000)
	booking := testutil.SeedBooking(t, f.db, customer.ID, []*entity.Service{deep},
		testutil.WithCode("CH000001"), testutil.WithMethod(entity.PaymentMethodVNPay))

	resp, err := f.payment.CreatePaymentURL(context.Background(), actorOf(customer), &dto.CreatePaymentRequest{BookingID: booking.ID}, "10.0.0.1")
	require.NoError(t, err)

	return &paymentScenario{fixture: f, customer: customer, booking: booking, ref: resp.Reference}
}

func TestPaymentUsecase_CreatePaymentURL(t *testing.T) {
	s := newPaymentScenario(t)

	assert.Equal(t, "CH000001_20250101120000", s.ref)

	entry := s.ledger(t, s.ref)
	assert.Equal(t, entity.GatewayOutcomePending, entry.Outcome)
	assert.True(t, entry.Amount.Equal(s.booking.TotalPrice))
	assert.Equal(t, "Thanh toan dich vu CleanHome - Ma booking: CH000001", entry.OrderInfo)

	b := s.reloadBooking(t, s.booking.ID)
	assert.Equal(t, entity.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, int64(1), s.countAudit(t, entity.AuditActionPaymentCreate))
}

func TestPaymentUsecase_CreatePaymentURL_SignedRedirect(t *testing.T) {
	f := newFixture(t)
	customer := testutil.SeedUser(t, f.db, entity.RoleIDCustomer, "buyer@example.com")
	svc := testutil.SeedService(t, f.db, "Sofa cleaning", 350000)
	booking := testutil.SeedBooking(t, f.db, customer.ID, []*entity.Service{svc}, testutil.WithCode("CH000002"))

	resp, err := f.payment.CreatePaymentURL(context.Background(), actorOf(customer), &dto.CreatePaymentRequest{BookingID: booking.ID, BankCode: "NCB"}, "10.0.0.1")
	require.NoError(t, err)

	u, err := url.Parse(resp.PaymentURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "35000000", q.Get("vnp_Amount"))
	assert.Equal(t, "NCB", q.Get("vnp_BankCode"))
	assert.Equal(t, "20250101120000", q.Get("vnp_CreateDate"))
	assert.Equal(t, "10.0.0.1", q.Get("vnp_IpAddr"))
	assert.True(t, f.signer.Verify(q))

	b := f.reloadBooking(t, booking.ID)
	assert.Equal(t, entity.PaymentMethodVNPay, b.PaymentMethod)
}

func TestPaymentUsecase_CreatePaymentURL_ReferenceCollisionAdvancesClock(t *testing.T) {
	s := newPaymentScenario(t)

	resp, err := s.payment.CreatePaymentURL(context.Background(), actorOf(s.customer), &dto.CreatePaymentRequest{BookingID: s.booking.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, "CH000001_20250101120001", resp.Reference)

	var n int64
	require.NoError(t, s.db.Model(&entity.GatewayTransaction{}).Where("booking_id = ?", s.booking.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, entity.GatewayOutcomeFailed, s.ledger(t, s.ref).Outcome)
	assert.Equal(t, entity.GatewayOutcomePending, s.ledger(t, resp.Reference).Outcome)
}

func TestPaymentUsecase_CreatePaymentURL_ForeignBooking(t *testing.T) {
	s := newPaymentScenario(t)
	stranger := testutil.SeedUser(t, s.db, entity.RoleIDCustomer, "stranger@example.com")

	_, err := s.payment.CreatePaymentURL(context.Background(), actorOf(stranger), &dto.CreatePaymentRequest{BookingID: s.booking.ID}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPaymentUsecase_EndToEndNotification(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()
	params := s.gatewayParams(s.ref, "20000000", "00", "00")

	ack := s.payment.HandleNotification(ctx, params)
	assert.Equal(t, &dto.IPNResponse{RspCode: "00", Message: "Confirm Success"}, ack)

	entry := s.ledger(t, s.ref)
	assert.Equal(t, entity.GatewayOutcomeSuccess, entry.Outcome)
	assert.Equal(t, "14000001", entry.TransactionNo)
	assert.NotNil(t, entry.ProcessedAt)
	assert.False(t, entry.AmountMismatch)
	assert.Contains(t, string(entry.RawParams), "vnp_TxnRef")

	b := s.reloadBooking(t, s.booking.ID)
	assert.Equal(t, entity.PaymentStatusPaid, b.PaymentStatus)
	assert.Equal(t, entity.BookingStatusConfirmed, b.Status)

	// Replay of the same notification.
	r := s.payment.reconcile(ctx, params)
	assert.Equal(t, vnpay.AckConfirmed, r.ack)
	assert.False(t, r.appliedNow)
	assert.Equal(t, entity.GatewayOutcomeSuccess, r.ledger.Outcome)

	again := s.reloadBooking(t, s.booking.ID)
	assert.Equal(t, b.Status, again.Status)
	assert.Equal(t, b.PaymentStatus, again.PaymentStatus)
	assert.Equal(t, int64(1), s.countAudit(t, entity.AuditActionPaymentReconcile))
}

func TestPaymentUsecase_ReturnAfterNotificationUsesStoredOutcome(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()
	params := s.gatewayParams(s.ref, "20000000", "00", "00")

	require.Equal(t, "00", s.payment.HandleNotification(ctx, params).RspCode)

	redirect := s.payment.HandleReturn(ctx, params)
	require.True(t, strings.HasPrefix(redirect, "http://localhost:5173/payment/success?"), redirect)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "CH000001", q.Get("booking_code"))
	assert.Equal(t, s.ref, q.Get("vnp_TxnRef"))
	assert.Equal(t, "20000000", q.Get("vnp_Amount"))
	assert.Equal(t, "14000001", q.Get("vnp_TransactionNo"))
	assert.Equal(t, vnpay.Message("00").Title, q.Get("title"))
}

func TestPaymentUsecase_AmountMismatch(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()

	ack := s.payment.HandleNotification(ctx, s.gatewayParams(s.ref, "15000000", "00", "00"))
	assert.Equal(t, vnpay.AckConfirmed, ack.RspCode)

	entry := s.ledger(t, s.ref)
	assert.Equal(t, entity.GatewayOutcomeFailed, entry.Outcome)
	assert.True(t, entry.AmountMismatch)

	b := s.reloadBooking(t, s.booking.ID)
	assert.Equal(t, entity.PaymentStatusFailed, b.PaymentStatus)
	assert.Equal(t, entity.BookingStatusPending, b.Status)
	assert.Equal(t, int64(1), s.countAudit(t, entity.AuditActionPaymentMismatch))
	assert.Zero(t, s.countAudit(t, entity.AuditActionPaymentReconcile))

	redirect := s.payment.HandleReturn(ctx, s.gatewayParams(s.ref, "15000000", "00", "00"))
	assert.Contains(t, redirect, "/payment/failure?")
	assert.Contains(t, redirect, "error_type=amount_mismatch")
}

func TestPaymentUsecase_InvalidSignature(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()

	params := s.gatewayParams(s.ref, "20000000", "00", "00")
	params.Set("vnp_Amount", "100")

	assert.Equal(t, &dto.IPNResponse{RspCode: "97", Message: "Invalid Checksum"}, s.payment.HandleNotification(ctx, params))
	assert.Contains(t, s.payment.HandleReturn(ctx, params), "error=invalid_signature")

	params.Del(vnpay.ParamSecureHash)
	assert.Equal(t, "97", s.payment.HandleNotification(ctx, params).RspCode)

	assert.Equal(t, entity.GatewayOutcomePending, s.ledger(t, s.ref).Outcome)
	assert.Equal(t, entity.PaymentStatusPending, s.reloadBooking(t, s.booking.ID).PaymentStatus)
}

func TestPaymentUsecase_UnknownReference(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()
	params := s.gatewayParams("CH999999_20250101120000", "20000000", "00", "00")

	assert.Equal(t, &dto.IPNResponse{RspCode: "01", Message: "Order not found"}, s.payment.HandleNotification(ctx, params))
	assert.Contains(t, s.payment.HandleReturn(ctx, params), "error=transaction_not_found")
}

func TestPaymentUsecase_UserCancelledAtGateway(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()
	params := s.gatewayParams(s.ref, "20000000", "24", "02")

	redirect := s.payment.HandleReturn(ctx, params)
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "/payment/failure", u.Path)
	assert.Equal(t, "user_cancelled", u.Query().Get("error_type"))
	assert.Equal(t, "blue", u.Query().Get("color"))

	assert.Equal(t, entity.GatewayOutcomeFailed, s.ledger(t, s.ref).Outcome)
	assert.Equal(t, entity.PaymentStatusFailed, s.reloadBooking(t, s.booking.ID).PaymentStatus)

	// The notification for the same attempt arrives later.
	assert.Equal(t, "00", s.payment.HandleNotification(ctx, params).RspCode)
}

func (s *paymentScenario) countSuccess(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&entity.GatewayTransaction{}).
		Where("booking_id = ? AND outcome = ?", s.booking.ID, entity.GatewayOutcomeSuccess).
		Count(&n).Error)
	return n
}

func TestPaymentUsecase_NewAttemptSupersedesOpenOne(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()

	second, err := s.payment.CreatePaymentURL(ctx, actorOf(s.customer), &dto.CreatePaymentRequest{BookingID: s.booking.ID}, "")
	require.NoError(t, err)

	first := s.ledger(t, s.ref)
	assert.Equal(t, entity.GatewayOutcomeFailed, first.Outcome)
	assert.Contains(t, string(first.RawParams), "superseded")

	// A success for the closed attempt changes nothing.
	r := s.payment.reconcile(ctx, s.gatewayParams(s.ref, "20000000", "00", "00"))
	assert.Equal(t, vnpay.AckConfirmed, r.ack)
	assert.False(t, r.appliedNow)
	assert.Equal(t, entity.PaymentStatusPending, s.reloadBooking(t, s.booking.ID).PaymentStatus)

	require.Equal(t, "00", s.payment.HandleNotification(ctx, s.gatewayParams(second.Reference, "20000000", "00", "00")).RspCode)

	assert.Equal(t, entity.GatewayOutcomeSuccess, s.ledger(t, second.Reference).Outcome)
	assert.Equal(t, entity.PaymentStatusPaid, s.reloadBooking(t, s.booking.ID).PaymentStatus)
	assert.Equal(t, int64(1), s.countSuccess(t))
}

func TestPaymentUsecase_SuccessForPaidBookingIsConflict(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()
	require.NoError(t, s.db.Model(&entity.Booking{}).Where("id = ?", s.booking.ID).
		Update("payment_status", entity.PaymentStatusPaid).Error)

	params := s.gatewayParams(s.ref, "20000000", "00", "00")
	require.Equal(t, "00", s.payment.HandleNotification(ctx, params).RspCode)

	entry := s.ledger(t, s.ref)
	assert.Equal(t, entity.GatewayOutcomeFailed, entry.Outcome)
	assert.True(t, entry.Conflict)
	assert.Zero(t, s.countSuccess(t))
	assert.Equal(t, entity.PaymentStatusPaid, s.reloadBooking(t, s.booking.ID).PaymentStatus)
	assert.Equal(t, int64(1), s.countAudit(t, entity.AuditActionPaymentConflict))
	assert.Zero(t, s.countAudit(t, entity.AuditActionPaymentReconcile))

	redirect, err := url.Parse(s.payment.HandleReturn(ctx, params))
	require.NoError(t, err)
	assert.Equal(t, "/payment/failure", redirect.Path)
	assert.Equal(t, "duplicate_payment", redirect.Query().Get("error_type"))
}

func TestPaymentUsecase_GetTransactions(t *testing.T) {
	s := newPaymentScenario(t)
	ctx := context.Background()

	list, err := s.payment.GetTransactions(ctx, actorOf(s.customer), s.booking.ID)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, s.ref, list.Transactions[0].Reference)

	staff := testutil.SeedUser(t, s.db, entity.RoleIDStaff, "staff@example.com")
	_, err = s.payment.GetTransactions(ctx, actorOf(staff), s.booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
