package record_payment

// RecordPaymentRequest HTTP request model
type RecordPaymentRequest struct {
	TransactionID string `json:"transactionId"` // ID платежа у процессора (pi_... или ch_...)
}
