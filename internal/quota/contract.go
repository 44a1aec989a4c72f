package quota

import (
	"context"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// MembershipProvider интерфейс клиента MemberService
type MembershipProvider interface {
	GetClientMemberships(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error)
}

// BookingCounter интерфейс подсчета бронирований клиента
// Счетчики всегда считаются по строкам бронирований, кэшированных
// счетчиков занятости в системе нет
type BookingCounter interface {
	CountByClientWithFilter(ctx context.Context, filter domain.ClientUsageFilter) (int, error)
	CountFutureConfirmed(ctx context.Context, gymID, clientID int64, after time.Time) (int, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
