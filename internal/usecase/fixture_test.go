package usecase

import (
	"net/url"
	"testing"
	"time"

	"cleanhome-backend/config"
	"cleanhome-backend/internal/domain/entity"
	repoimpl "cleanhome-backend/internal/repository"
	"cleanhome-backend/internal/service"
	"cleanhome-backend/internal/testutil"
	"cleanhome-backend/pkg/vnpay"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testHashSecret = "RAOEXHYVSDDIIENYWSLDIIZTANXUXZFJ"

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, localZone)

type fixture struct {
	db       *gorm.DB
	signer   *vnpay.Signer
	payment  *paymentUsecase
	bookings *bookingUsecase
	admin    *adminBookingUsecase
	stats    StaffStatsUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.NewLogger()

	signer, err := vnpay.NewSigner(testHashSecret, vnpay.AlgorithmSHA512)
	require.NoError(t, err)

	cfg := &config.Config{
		App: config.AppConfig{FrontendURL: "http://localhost:5173/"},
		VNPay: config.VNPayConfig{
			PaymentURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			TmnCode:         "CLEANHOM",
			HashSecret:      testHashSecret,
			ReturnURL:       "http://localhost:5000/api/v1/payments/vnpay/return",
			Version:         "2.1.0",
			Locale:          "vn",
			OrderType:       "other",
			ReferencePrefix: "CH",
		},
	}

	bookingRepo := repoimpl.NewBookingRepository()
	ledgerRepo := repoimpl.NewGatewayTransactionRepository()
	assignmentRepo := repoimpl.NewStaffAssignmentRepository()
	userRepo := repoimpl.NewUserRepository()
	auditService := service.NewAuditService(log, repoimpl.NewAuditLogRepository())

	payment := NewPaymentUsecase(db, log, cfg, signer, bookingRepo, ledgerRepo, auditService).(*paymentUsecase)
	payment.now = func() time.Time { return fixedNow }

	booking := NewBookingUsecase(db, log, bookingRepo, repoimpl.NewServiceRepository(), assignmentRepo, ledgerRepo, payment, auditService).(*bookingUsecase)
	booking.now = func() time.Time { return fixedNow }

	admin := NewAdminBookingUsecase(db, log, bookingRepo, userRepo, assignmentRepo, ledgerRepo, auditService).(*adminBookingUsecase)
	admin.now = func() time.Time { return fixedNow }

	stats := NewStaffStatsUsecase(db, log, userRepo, bookingRepo, repoimpl.NewBookingItemRepository(), assignmentRepo)

	return &fixture{
		db:       db,
		signer:   signer,
		payment:  payment,
		bookings: booking,
		admin:    admin,
		stats:    stats,
	}
}

// gatewayParams returns a signed callback parameter set.
func (f *fixture) gatewayParams(reference, amount, responseCode, transactionStatus string) url.Values {
	p := url.Values{}
	p.Set("vnp_Amount", amount)
	p.Set("vnp_BankCode", "NCB")
	p.Set("vnp_BankTranNo", "VNP14000001")
	p.Set("vnp_CardType", "ATM")
	p.Set("vnp_OrderInfo", "Thanh toan dich vu CleanHome")
	p.Set("vnp_PayDate", "20250101120500")
	p.Set("vnp_ResponseCode", responseCode)
	p.Set("vnp_TmnCode", "CLEANHOM")
	p.Set("vnp_TransactionNo", "14000001")
	p.Set("vnp_TransactionStatus", transactionStatus)
	p.Set("vnp_TxnRef", reference)
	p.Set(vnpay.ParamSecureHash, f.signer.SignParams(p))
	return p
}

func (f *fixture) reloadBooking(t *testing.T, id interface{}) *entity.Booking {
	t.Helper()
	var b entity.Booking
	require.NoError(t, f.db.First(&b, "id = ?", id).Error)
	return &b
}

func (f *fixture) ledger(t *testing.T, reference string) *entity.GatewayTransaction {
	t.Helper()
	var txn entity.GatewayTransaction
	require.NoError(t, f.db.First(&txn, "reference = ?", reference).Error)
	return &txn
}

func (f *fixture) countAudit(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func actorOf(u *entity.User) entity.Actor {
	return entity.Actor{UserID: u.ID, RoleID: u.RoleID}
}
