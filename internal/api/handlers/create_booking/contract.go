package create_booking

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/usecase/book_class"
)

type BookingCoordinator interface {
	Book(ctx context.Context, sessionID, clientID int64) (*book_class.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
