package get_client_bookings

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type BookingService interface {
	GetClientBookings(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
