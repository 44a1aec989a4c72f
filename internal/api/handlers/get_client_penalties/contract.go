package get_client_penalties

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type BookingService interface {
	GetClientPenalties(ctx context.Context, gymID, clientID int64) ([]*domain.Penalty, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
