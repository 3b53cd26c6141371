package get_available_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.StepMinutes != 0 && (req.StepMinutes < MinStepMinutes || req.StepMinutes > MaxStepMinutes) {
		return fmt.Errorf("%w: step must be between %d and %d minutes", ErrInvalidInput, MinStepMinutes, MaxStepMinutes)
	}
	return nil
}
