package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePaymentRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	BankCode  string    `json:"bank_code" validate:"omitempty,max=20"`
}

// Response DTOs

type PaymentURLResponse struct {
	PaymentURL string          `json:"payment_url"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
}

// IPNResponse is the acknowledgement body the gateway polls for.
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

type GatewayTransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	BookingID         uuid.UUID       `json:"booking_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	OrderInfo         string          `json:"order_info"`
	Outcome           string          `json:"outcome"`
	ResponseCode      string          `json:"response_code,omitempty"`
	TransactionStatus string          `json:"transaction_status,omitempty"`
	TransactionNo     string          `json:"transaction_no,omitempty"`
	BankCode          string          `json:"bank_code,omitempty"`
	PayDate           string          `json:"pay_date,omitempty"`
	AmountMismatch    bool            `json:"amount_mismatch"`
	Conflict          bool            `json:"conflict"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type GatewayTransactionListResponse struct {
	Transactions []GatewayTransactionResponse `json:"transactions"`
	Total        int                          `json:"total"`
}
