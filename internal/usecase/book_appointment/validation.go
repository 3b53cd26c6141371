package book_appointment

import "fmt"

// validateRequest проверяет входные данные до открытия транзакции
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service ID must be positive", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	if !req.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: payment method must be online or onsite", ErrInvalidInput)
	}
	return nil
}
