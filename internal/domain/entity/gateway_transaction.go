package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GatewayOutcome is the processing state of one payment attempt.
type GatewayOutcome string

const (
	GatewayOutcomePending GatewayOutcome = "pending"
	GatewayOutcomeSuccess GatewayOutcome = "success"
	GatewayOutcomeFailed  GatewayOutcome = "failed"
)

const CurrencyVND = "VND"

// GatewayTransaction is one ledger row per payment attempt, keyed by a
// globally unique reference. Outcome moves from pending to a terminal value
// exactly once, and at most one attempt per booking ends in success. A
// gateway success that arrives for an already paid booking is stored as
// failed with Conflict set.
type GatewayTransaction struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Reference         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	BookingID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_gateway_transactions_booking_success,where:outcome = 'success'" json:"booking_id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency          string          `gorm:"type:varchar(3);not null;default:'VND'" json:"currency"`
	OrderInfo         string          `gorm:"type:varchar(255)" json:"order_info"`
	Outcome           GatewayOutcome  `gorm:"type:varchar(20);not null;default:'pending';index" json:"outcome"`
	ResponseCode      string          `gorm:"type:varchar(10)" json:"response_code,omitempty"`
	TransactionStatus string          `gorm:"type:varchar(10)" json:"transaction_status,omitempty"`
	TransactionNo     string          `gorm:"type:varchar(50)" json:"transaction_no,omitempty"`
	BankCode          string          `gorm:"type:varchar(20)" json:"bank_code,omitempty"`
	BankTranNo        string          `gorm:"type:varchar(50)" json:"bank_tran_no,omitempty"`
	CardType          string          `gorm:"type:varchar(20)" json:"card_type,omitempty"`
	PayDate           string          `gorm:"type:varchar(14)" json:"pay_date,omitempty"`
	RawParams         datatypes.JSON  `json:"raw_params,omitempty"`
	SecureHash        string          `gorm:"type:varchar(256)" json:"-"`
	AmountMismatch    bool            `gorm:"not null;default:false" json:"amount_mismatch"`
	Conflict          bool            `gorm:"not null;default:false" json:"conflict"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GatewayTransaction) TableName() string {
	return "gateway_transactions"
}

func (t *GatewayTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *GatewayTransaction) IsPending() bool {
	return t.Outcome == GatewayOutcomePending
}

// OutcomeUpdate carries the terminal fields written by ApplyOutcome.
type OutcomeUpdate struct {
	Outcome           GatewayOutcome
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	BankTranNo        string
	CardType          string
	PayDate           string
	RawParams         datatypes.JSON
	SecureHash        string
	AmountMismatch    bool
	Conflict          bool
	ProcessedAt       time.Time
}

// Columns returns the gorm update map for the terminal write.
func (o OutcomeUpdate) Columns() map[string]interface{} {
	return map[string]interface{}{
		"outcome":            o.Outcome,
		"response_code":      o.ResponseCode,
		"transaction_status": o.TransactionStatus,
		"transaction_no":     o.TransactionNo,
		"bank_code":          o.BankCode,
		"bank_tran_no":       o.BankTranNo,
		"card_type":          o.CardType,
		"pay_date":           o.PayDate,
		"raw_params":         o.RawParams,
		"secure_hash":        o.SecureHash,
		"amount_mismatch":    o.AmountMismatch,
		"conflict":           o.Conflict,
		"processed_at":       o.ProcessedAt,
	}
}
