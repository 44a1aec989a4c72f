package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// SessionProvider доступ к занятиям
type SessionProvider interface {
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
}

// BookingRepo доступ к бронированиям
type BookingRepo interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetActiveBySessionAndClient(ctx context.Context, sessionID, clientID int64) (*domain.Booking, error)
	GetConfirmedBySession(ctx context.Context, sessionID int64) ([]*domain.Booking, error)
}

// WaitlistRepo доступ к листу ожидания
type WaitlistRepo interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error)
	GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error)
	GetWaitingBySessionAndClient(ctx context.Context, sessionID, clientID int64) (*domain.WaitlistEntry, error)
	CountWaiting(ctx context.Context, sessionID int64) (int, error)
	CountWaitingNotAfter(ctx context.Context, entry *domain.WaitlistEntry) (int, error)
	GetNextWaiting(ctx context.Context, sessionID int64) (*domain.WaitlistEntry, error)
	MarkPromoted(ctx context.Context, id int64) error
	MarkCancelled(ctx context.Context, id int64) error
}

// PolicyProvider доступ к политикам записи
type PolicyProvider interface {
	GetForActivity(ctx context.Context, gymID, activityID int64) (*domain.ActivityPolicy, error)
}

// MembershipProvider интеграция с MemberService
// VIP-статус некритичен: при недоступности сервиса применяется graceful
// degradation и клиент встает в очередь как обычный
type MembershipProvider interface {
	GetClientMembershipsWithGracefulDegradation(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error)
}

// TxManager управление транзакциями
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider абстракция текущего времени для тестируемости
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
