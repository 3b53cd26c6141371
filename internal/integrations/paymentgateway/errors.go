package paymentgateway

import "errors"

var (
	// ErrNotConfigured возвращается, когда ключ платежной системы не задан
	ErrNotConfigured = errors.New("paymentgateway: payment processor is not configured")

	// ErrInvalidRequest возвращается при некорректном запросе на возврат
	ErrInvalidRequest = errors.New("paymentgateway: invalid refund request")

	// ErrRefundDeclined возвращается, когда платежная система отклонила возврат
	ErrRefundDeclined = errors.New("paymentgateway: refund declined")

	// ErrInternal возвращается при сетевых и прочих ошибках клиента
	ErrInternal = errors.New("paymentgateway: internal error")
)
