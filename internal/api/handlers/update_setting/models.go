package update_setting

// UpdateSettingRequest HTTP request model
type UpdateSettingRequest struct {
	Value string `json:"value"`
}
