package get_booking

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type BookingService interface {
	GetByID(ctx context.Context, bookingID, clientID int64) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
