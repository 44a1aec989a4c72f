package join_waitlist

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type WaitlistManager interface {
	Join(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
