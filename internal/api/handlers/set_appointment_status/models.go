package set_appointment_status

// SetStatusRequest HTTP request model
type SetStatusRequest struct {
	Status  string `json:"status"`
	StaffID *int64 `json:"staffId,omitempty"` // новый мастер, только для администратора
}
