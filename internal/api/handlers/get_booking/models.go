package get_booking

import (
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                 int64   `json:"id"`
	GymID              int64   `json:"gymId"`
	SessionID          int64   `json:"sessionId"`
	ClientID           int64   `json:"clientId"`
	Status             string  `json:"status"`
	AttendanceStatus   string  `json:"attendanceStatus"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`
	CreatedAt          string  `json:"createdAt"`
}

// ToResponse конвертирует доменную модель в HTTP response
func ToResponse(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                 b.ID,
		GymID:              b.GymID,
		SessionID:          b.SessionID,
		ClientID:           b.ClientID,
		Status:             string(b.Status),
		AttendanceStatus:   string(b.AttendanceStatus),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}
	return resp
}
