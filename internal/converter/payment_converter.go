package converter

import (
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
)

func GatewayTransactionToResponse(txn *entity.GatewayTransaction) dto.GatewayTransactionResponse {
	return dto.GatewayTransactionResponse{
		ID:                txn.ID,
		Reference:         txn.Reference,
		BookingID:         txn.BookingID,
		Amount:            txn.Amount,
		Currency:          txn.Currency,
		OrderInfo:         txn.OrderInfo,
		Outcome:           string(txn.Outcome),
		ResponseCode:      txn.ResponseCode,
		TransactionStatus: txn.TransactionStatus,
		TransactionNo:     txn.TransactionNo,
		BankCode:          txn.BankCode,
		PayDate:           txn.PayDate,
		AmountMismatch:    txn.AmountMismatch,
		Conflict:          txn.Conflict,
		ProcessedAt:       txn.ProcessedAt,
		CreatedAt:         txn.CreatedAt,
	}
}

func GatewayTransactionsToResponses(txns []entity.GatewayTransaction) []dto.GatewayTransactionResponse {
	responses := make([]dto.GatewayTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = GatewayTransactionToResponse(&txns[i])
	}
	return responses
}
