package promote_waitlist

import (
	"context"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

type WaitlistManager interface {
	Promote(ctx context.Context, entryID, staffID int64) (*domain.Decision, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
