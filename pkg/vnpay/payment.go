package vnpay

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CommandPay   = "pay"
	CurrencyVND  = "VND"
	DateLayout   = "20060102150405"
	SuccessCode  = "00"
	amountFactor = 100
)

// Acknowledgement codes returned to the gateway's server-to-server notification.
const (
	AckConfirmed        = "00"
	AckOrderNotFound    = "01"
	AckInvalidSignature = "97"
	AckSystemError      = "99"
)

var (
	ErrMissingReference = errors.New("missing vnp_TxnRef")
	ErrInvalidAmount    = errors.New("invalid vnp_Amount")
)

// PaymentRequest describes one outbound payment redirect.
type PaymentRequest struct {
	BaseURL   string
	Version   string
	TmnCode   string
	Amount    decimal.Decimal
	Reference string
	OrderInfo string
	OrderType string
	Locale    string
	ReturnURL string
	ClientIP  string
	BankCode  string
	CreatedAt time.Time
}

// Params returns the unsigned parameter set of the request.
func (r PaymentRequest) Params() url.Values {
	params := url.Values{}
	params.Set("vnp_Version", r.Version)
	params.Set("vnp_Command", CommandPay)
	params.Set("vnp_TmnCode", r.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(ToMinorUnits(r.Amount), 10))
	params.Set("vnp_CurrCode", CurrencyVND)
	params.Set("vnp_TxnRef", r.Reference)
	params.Set("vnp_OrderInfo", r.OrderInfo)
	params.Set("vnp_OrderType", r.OrderType)
	params.Set("vnp_Locale", r.Locale)
	params.Set("vnp_ReturnUrl", r.ReturnURL)
	params.Set("vnp_IpAddr", r.ClientIP)
	params.Set("vnp_CreateDate", r.CreatedAt.Format(DateLayout))
	if r.BankCode != "" {
		params.Set("vnp_BankCode", r.BankCode)
	}
	return params
}

// BuildPaymentURL signs the request and returns the gateway redirect URL.
func (s *Signer) BuildPaymentURL(r PaymentRequest) (string, error) {
	if r.Reference == "" {
		return "", ErrMissingReference
	}
	if !r.Amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if r.ClientIP == "" {
		r.ClientIP = "127.0.0.1"
	}

	canonical := Canonicalize(r.Params())
	return fmt.Sprintf("%s?%s&%s=%s", r.BaseURL, canonical, ParamSecureHash, s.Sign(canonical)), nil
}

// ToMinorUnits converts a VND amount to the gateway's x100 integer encoding.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(amountFactor)).Round(0).IntPart()
}

// Result is the typed view of a return or notification parameter set.
type Result struct {
	Reference         string
	AmountMinor       int64
	BankCode          string
	BankTranNo        string
	CardType          string
	OrderInfo         string
	PayDate           string
	ResponseCode      string
	TmnCode           string
	TransactionNo     string
	TransactionStatus string
	SecureHash        string
}

func ParseResult(params url.Values) (*Result, error) {
	ref := params.Get("vnp_TxnRef")
	if ref == "" {
		return nil, ErrMissingReference
	}

	amount, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	if err != nil || amount < 0 {
		return nil, ErrInvalidAmount
	}

	return &Result{
		Reference:         ref,
		AmountMinor:       amount,
		BankCode:          params.Get("vnp_BankCode"),
		BankTranNo:        params.Get("vnp_BankTranNo"),
		CardType:          params.Get("vnp_CardType"),
		OrderInfo:         params.Get("vnp_OrderInfo"),
		PayDate:           params.Get("vnp_PayDate"),
		ResponseCode:      params.Get("vnp_ResponseCode"),
		TmnCode:           params.Get("vnp_TmnCode"),
		TransactionNo:     params.Get("vnp_TransactionNo"),
		TransactionStatus: params.Get("vnp_TransactionStatus"),
		SecureHash:        params.Get(ParamSecureHash),
	}, nil
}

// Succeeded reports whether both the response code and the transaction
// status carry the success sentinel.
func (r *Result) Succeeded() bool {
	return r.ResponseCode == SuccessCode && r.TransactionStatus == SuccessCode
}
