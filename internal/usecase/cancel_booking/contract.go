package cancel_booking

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
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, attendance domain.AttendanceStatus, reason string) error
	SetAttendance(ctx context.Context, id int64, attendance domain.AttendanceStatus) error
}

// PolicyProvider доступ к политикам записи
type PolicyProvider interface {
	GetForActivity(ctx context.Context, gymID, activityID int64) (*domain.ActivityPolicy, error)
}

// PenaltySink запись санкций
// Санкции пишутся после коммита транзакции отмены: сбой записи санкции
// не должен откатить саму отмену
type PenaltySink interface {
	Create(ctx context.Context, penalty *domain.Penalty) (*domain.Penalty, error)
}

// Promoter автоматическое продвижение листа ожидания после освобождения места
type Promoter interface {
	AutoPromote(ctx context.Context, sessionID int64) error
}

// TxManager управление транзакциями
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
