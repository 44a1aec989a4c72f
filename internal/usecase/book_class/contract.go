package book_class

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
	GetWaitingBySessionAndClient(ctx context.Context, sessionID, clientID int64) (*domain.WaitlistEntry, error)
	CountWaiting(ctx context.Context, sessionID int64) (int, error)
}

// PolicyProvider доступ к политикам записи
type PolicyProvider interface {
	GetForActivity(ctx context.Context, gymID, activityID int64) (*domain.ActivityPolicy, error)
}

// MembershipProvider интеграция с MemberService
type MembershipProvider interface {
	GetClientMemberships(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error)
}

// LimitChecker проверка лимитов абонемента
type LimitChecker interface {
	Evaluate(ctx context.Context, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error)
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
