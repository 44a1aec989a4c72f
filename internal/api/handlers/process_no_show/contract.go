package process_no_show

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type CancellationResolver interface {
	ProcessNoShow(ctx context.Context, bookingID, staffID int64) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
