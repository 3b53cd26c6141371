package paymentgateway

import "github.com/shopspring/decimal"

// RefundRequest запрос на возврат по ранее проведенному платежу
type RefundRequest struct {
	TransactionRef string          // payment intent (pi_...) или charge (ch_...)
	Amount         decimal.Decimal // сумма возврата в валюте платежа
	Partial        bool            // false - полный возврат, сумма не передается
	Reason         string
	IdempotencyKey string
}

// RefundResult результат возврата
type RefundResult struct {
	ID     string
	Amount decimal.Decimal
	Status string
}
