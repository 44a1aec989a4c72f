// Package cancel_booking отмена бронирования и обработка неявки
//
// Поздняя отмена и неявка наказываются по политике активности. Санкция
// записывается после коммита транзакции отмены: освобождение места важнее
// учета санкции, поэтому сбой записи санкции только логируется
package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storageBooking "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/booking"
	storagePolicy "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	storageSession "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/session"
)

const (
	msgAlreadyCancelled = "бронирование уже отменено"
	msgSessionStarted   = "занятие уже началось, отмена недоступна"
	msgCanCancelFree    = "отмена без санкций"
	msgCanCancelPenalty = "отмена с санкцией по политике зала"
	msgCancelled        = "бронирование отменено"
	msgNoShowRecorded   = "неявка зафиксирована"
	msgNoShowNotStarted = "занятие еще не началось, неявку отмечать рано"
)

// Usecase отмена бронирований и фиксация неявок
type Usecase struct {
	sessions     SessionProvider
	bookings     BookingRepo
	policies     PolicyProvider
	penalties    PenaltySink
	promoter     Promoter
	txManager    TxManager
	timeProvider TimeProvider
	logger       Logger
}

// New создает новый экземпляр обработчика отмен
func New(
	sessions SessionProvider,
	bookings BookingRepo,
	policies PolicyProvider,
	penalties PenaltySink,
	promoter Promoter,
	txManager TxManager,
	timeProvider TimeProvider,
	logger Logger,
) *Usecase {
	return &Usecase{
		sessions:     sessions,
		bookings:     bookings,
		policies:     policies,
		penalties:    penalties,
		promoter:     promoter,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CanCancel пробная проверка отмены: можно ли и с какой санкцией
func (u *Usecase) CanCancel(ctx context.Context, bookingID, clientID int64) (*domain.Decision, error) {
	booking, session, err := u.loadOwned(ctx, bookingID, clientID)
	if err != nil {
		return nil, err
	}

	if booking.IsCancelled() {
		return domain.Deny(msgAlreadyCancelled, nil), nil
	}

	now := u.timeProvider.Now()
	if session.HasStarted(now) {
		return domain.Deny(msgSessionStarted, nil), nil
	}

	verdict, err := u.penaltyVerdictFor(ctx, session, now)
	if err != nil {
		return nil, err
	}

	if !verdict.Applies {
		return domain.Allow(msgCanCancelFree, map[string]interface{}{
			"penalty_applied": false,
		}), nil
	}

	return domain.Allow(msgCanCancelPenalty, penaltyData(verdict)), nil
}

// Cancel отменяет бронирование клиента
//
// Статус меняется однократным UPDATE с фильтром по активным статусам,
// санкция и автопродвижение листа ожидания выполняются после коммита
func (u *Usecase) Cancel(ctx context.Context, bookingID, clientID int64, reason string) (*domain.Decision, error) {
	booking, session, err := u.loadOwned(ctx, bookingID, clientID)
	if err != nil {
		return nil, err
	}

	if booking.IsCancelled() {
		return domain.Deny(msgAlreadyCancelled, nil), nil
	}

	now := u.timeProvider.Now()
	if session.HasStarted(now) {
		return domain.Deny(msgSessionStarted, nil), nil
	}

	verdict, err := u.penaltyVerdictFor(ctx, session, now)
	if err != nil {
		return nil, err
	}

	var decision *domain.Decision
	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		attendance := domain.AttendancePending
		if verdict.Applies {
			attendance = domain.AttendanceLateCancel
		}

		// UPDATE фильтрует по активным статусам: при конкурентной отмене
		// вторая транзакция не затрагивает строк и получает отказ
		if err := u.bookings.Cancel(txCtx, bookingID, attendance, reason); err != nil {
			if errors.Is(err, storageBooking.ErrAlreadyCancelled) {
				decision = domain.Deny(msgAlreadyCancelled, nil)
				return nil
			}
			return fmt.Errorf("%w: Cancel - update booking: %v", ErrInternal, err)
		}

		decision = domain.Allow(msgCancelled, penaltyData(verdict))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		return decision, nil
	}

	u.logger.Info("Cancel: booking=%d cancelled by client=%d, penalty=%v",
		bookingID, clientID, verdict.Applies)

	if verdict.Applies {
		u.recordPenalty(ctx, booking, session, verdict, string(domain.AttendanceLateCancel), clientID)
	}

	if err := u.promoter.AutoPromote(ctx, session.ID); err != nil {
		u.logger.Error("Cancel: auto-promote failed for session=%d: %v", session.ID, err)
	}

	return decision, nil
}

// ProcessNoShow фиксирует неявку клиента на занятие
// Вызывается персоналом зала; санкция накладывается по той же политике,
// что и за позднюю отмену
func (u *Usecase) ProcessNoShow(ctx context.Context, bookingID, staffID int64) (*domain.Decision, error) {
	booking, err := u.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storageBooking.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: ProcessNoShow - get booking: %v", ErrInternal, err)
	}

	if booking.IsCancelled() {
		return domain.Deny(msgAlreadyCancelled, nil), nil
	}

	session, err := u.loadSession(ctx, booking.SessionID)
	if err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if !session.HasStarted(now) {
		return domain.Deny(msgNoShowNotStarted, nil), nil
	}

	if err := u.bookings.SetAttendance(ctx, bookingID, domain.AttendanceNoShow); err != nil {
		return nil, fmt.Errorf("%w: ProcessNoShow - set attendance: %v", ErrInternal, err)
	}

	u.logger.Info("ProcessNoShow: booking=%d marked no_show by staff=%d", bookingID, staffID)

	// неявка наказывается всегда, независимо от окна отмены
	policy, err := u.loadPolicy(ctx, session)
	if err != nil {
		return nil, err
	}
	verdict := applyPenaltyPolicy(policy)
	u.recordPenalty(ctx, booking, session, verdict, string(domain.AttendanceNoShow), staffID)

	return domain.Allow(msgNoShowRecorded, penaltyData(verdict)), nil
}

// loadOwned загружает бронирование с проверкой владельца и его занятие
func (u *Usecase) loadOwned(ctx context.Context, bookingID, clientID int64) (*domain.Booking, *domain.Session, error) {
	booking, err := u.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storageBooking.ErrBookingNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, fmt.Errorf("%w: loadOwned - get booking: %v", ErrInternal, err)
	}

	if booking.ClientID != clientID {
		return nil, nil, ErrPermissionDenied
	}

	session, err := u.loadSession(ctx, booking.SessionID)
	if err != nil {
		return nil, nil, err
	}

	return booking, session, nil
}

func (u *Usecase) loadSession(ctx context.Context, sessionID int64) (*domain.Session, error) {
	session, err := u.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storageSession.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session %d is gone", ErrInternal, sessionID)
		}
		return nil, fmt.Errorf("%w: loadSession: %v", ErrInternal, err)
	}
	return session, nil
}

func (u *Usecase) loadPolicy(ctx context.Context, session *domain.Session) (*domain.ActivityPolicy, error) {
	policy, err := u.policies.GetForActivity(ctx, session.GymID, session.ActivityID)
	if err != nil {
		if errors.Is(err, storagePolicy.ErrPolicyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: loadPolicy: %v", ErrInternal, err)
	}
	return policy, nil
}

// penaltyVerdictFor определяет санкцию за отмену в момент now
// Отмена не позднее, чем за окно отмены до начала занятия, бесплатна:
// ровно на границе окна санкции еще нет
func (u *Usecase) penaltyVerdictFor(ctx context.Context, session *domain.Session, now time.Time) (*penaltyVerdict, error) {
	policy, err := u.loadPolicy(ctx, session)
	if err != nil {
		return nil, err
	}

	windowHours := domain.DefaultCancellationWindowHours
	if policy != nil && policy.CancellationWindowHours > 0 {
		windowHours = policy.CancellationWindowHours
	}

	deadline := session.StartTime.Add(-time.Duration(windowHours) * time.Hour)
	if !now.After(deadline) {
		return &penaltyVerdict{Applies: false}, nil
	}

	return applyPenaltyPolicy(policy), nil
}

// applyPenaltyPolicy тип санкции из политики, с запасным значением по умолчанию
func applyPenaltyPolicy(policy *domain.ActivityPolicy) *penaltyVerdict {
	verdict := &penaltyVerdict{Applies: true, Type: domain.DefaultPenaltyType}

	if policy != nil && policy.PenaltyType != "" {
		verdict.Type = policy.PenaltyType
	}
	if verdict.Type == domain.PenaltyFee {
		fee := 0.0
		if policy != nil {
			fee = policy.PenaltyFee
		}
		verdict.Fee = &fee
	}

	return verdict
}

// recordPenalty записывает санкцию best-effort после коммита отмены
func (u *Usecase) recordPenalty(ctx context.Context, booking *domain.Booking, session *domain.Session, verdict *penaltyVerdict, reason string, createdBy int64) {
	if !verdict.Applies {
		return
	}

	_, err := u.penalties.Create(ctx, &domain.Penalty{
		GymID:     booking.GymID,
		ClientID:  booking.ClientID,
		SessionID: session.ID,
		BookingID: booking.ID,
		Type:      verdict.Type,
		Amount:    verdict.Fee,
		Reason:    reason,
		CreatedBy: createdBy,
	})
	if err != nil {
		u.logger.Error("recordPenalty: failed for booking=%d, client=%d: %v",
			booking.ID, booking.ClientID, err)
	}
}

func penaltyData(verdict *penaltyVerdict) map[string]interface{} {
	data := map[string]interface{}{
		"penalty_applied": verdict.Applies,
	}
	if verdict.Applies {
		data["penalty_type"] = string(verdict.Type)
	}
	if verdict.Fee != nil {
		data["penalty_fee"] = *verdict.Fee
	}
	return data
}
