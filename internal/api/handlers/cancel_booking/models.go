package cancel_booking

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
	// DryRun true - только проверить условия отмены без самой отмены
	DryRun bool `json:"dryRun,omitempty"`
}
