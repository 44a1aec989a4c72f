package cancel_booking

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type CancellationResolver interface {
	CanCancel(ctx context.Context, bookingID, clientID int64) (*domain.Decision, error)
	Cancel(ctx context.Context, bookingID, clientID int64, reason string) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
