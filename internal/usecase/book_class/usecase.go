// Package book_class координатор записи на занятие
//
// Проверки выполняются в фиксированном порядке: занятие не началось,
// окно записи открыто, есть место, нет дубликата, лимиты абонемента
// позволяют. Первый отказ прерывает цепочку. Пробная проверка (CanBook)
// и фактическая запись (Book) проходят одну и ту же цепочку - Book
// повторяет ее внутри serializable-транзакции, поэтому проверка
// вместимости и вставка бронирования атомарны
package book_class

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storageBooking "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/booking"
	storagePolicy "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	storageSession "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/session"
	storageWaitlist "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/waitlist"
	memberClient "github.com/m04kA/GMS-ClassBookingService/internal/integrations/memberservice"
	"github.com/m04kA/GMS-ClassBookingService/internal/quota"
	"github.com/m04kA/GMS-ClassBookingService/internal/window"
)

const (
	msgSessionStarted   = "занятие уже началось, запись закрыта"
	msgAlreadyBooked    = "вы уже записаны на это занятие"
	msgAlreadyWaiting   = "вы уже стоите в листе ожидания на это занятие"
	msgSessionFull      = "на занятии нет свободных мест"
	msgBookingAllowed   = "запись на занятие доступна"
	msgBookingCreated   = "запись на занятие подтверждена"
	msgWindowDaysFmt    = "запись откроется через %d дн."
	msgWindowHoursFmt   = "запись откроется через %d ч %d мин"
	msgWindowMinutesFmt = "запись откроется через %d мин"
)

// Usecase координатор записи на занятие
type Usecase struct {
	sessions     SessionProvider
	bookings     BookingRepo
	waitlists    WaitlistRepo
	policies     PolicyProvider
	members      MembershipProvider
	limits       LimitChecker
	txManager    TxManager
	timeProvider TimeProvider
	logger       Logger
}

// New создает новый экземпляр координатора записи
func New(
	sessions SessionProvider,
	bookings BookingRepo,
	waitlists WaitlistRepo,
	policies PolicyProvider,
	members MembershipProvider,
	limits LimitChecker,
	txManager TxManager,
	timeProvider TimeProvider,
	logger Logger,
) *Usecase {
	return &Usecase{
		sessions:     sessions,
		bookings:     bookings,
		waitlists:    waitlists,
		policies:     policies,
		members:      members,
		limits:       limits,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CanBook пробная проверка возможности записи без побочных эффектов
func (u *Usecase) CanBook(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error) {
	decision, _, err := u.evaluate(ctx, sessionID, clientID)
	return decision, err
}

// Book записывает клиента на занятие
//
// Цепочка проверок повторяется внутри serializable-транзакции: подсчет
// подтвержденных бронирований идет с FOR UPDATE, поэтому два конкурентных
// запроса на последнее место не могут пройти проверку одновременно
func (u *Usecase) Book(ctx context.Context, sessionID, clientID int64) (*Result, error) {
	var result Result

	err := u.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		decision, session, err := u.evaluate(txCtx, sessionID, clientID)
		if err != nil {
			return err
		}

		result.Decision = decision
		if !decision.Allowed {
			return nil
		}

		booking, err := u.bookings.Create(txCtx, &domain.Booking{
			GymID:            session.GymID,
			SessionID:        sessionID,
			ClientID:         clientID,
			Status:           domain.StatusConfirmed,
			AttendanceStatus: domain.AttendancePending,
		})
		if err != nil {
			if errors.Is(err, storageBooking.ErrDuplicateBooking) {
				// конкурентный запрос того же клиента успел раньше
				result.Decision = domain.Deny(msgAlreadyBooked, nil)
				return nil
			}
			return fmt.Errorf("%w: Book - create booking: %v", ErrInternal, err)
		}

		result.Booking = booking
		result.Decision.Message = msgBookingCreated
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: Book - transaction failed: %v", ErrInternal, err)
	}

	if result.Booking != nil {
		u.logger.Info("Book: created booking=%d, session=%d, client=%d",
			result.Booking.ID, sessionID, clientID)
	}

	return &result, nil
}

// CheckLimits возвращает состояние лимитов и окна записи для занятия
// Используется UI, чтобы показать клиенту, что его ждет, до попытки записи
func (u *Usecase) CheckLimits(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error) {
	session, err := u.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storageSession.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: CheckLimits - get session: %v", ErrInternal, err)
	}

	memberships, err := u.fetchMemberships(ctx, session.GymID, clientID)
	if err != nil {
		return nil, err
	}

	policy, err := u.fetchPolicy(ctx, session)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{}
	earlyHours := quota.MaxEarlyAccessHours(memberships, session)
	if opens := window.OpensAt(session, policy); opens != nil {
		data["opens_at"] = opens.Format(time.RFC3339)
		if effective := window.EffectiveOpensAt(session, policy, earlyHours); effective != nil {
			data["effective_opens_at"] = effective.Format(time.RFC3339)
		}
	}

	limitDecision, err := u.limits.Evaluate(ctx, memberships, session)
	if err != nil {
		return nil, fmt.Errorf("%w: CheckLimits - evaluate: %v", ErrInternal, err)
	}

	if !limitDecision.Allowed {
		data["limit_type"] = limitDecision.LimitType
		data["current"] = limitDecision.Current
		data["limit"] = limitDecision.Limit
		return domain.Deny(limitDecision.Reason, data), nil
	}

	data["plan_id"] = limitDecision.PlanID
	data["plan_name"] = limitDecision.PlanName
	data["rule_id"] = limitDecision.RuleID
	data["booking_priority"] = limitDecision.Priority
	return domain.Allow(limitDecision.Reason, data), nil
}

// evaluate прогоняет полную цепочку проверок и возвращает решение
func (u *Usecase) evaluate(ctx context.Context, sessionID, clientID int64) (*domain.Decision, *domain.Session, error) {
	session, err := u.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storageSession.ErrSessionNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("%w: evaluate - get session: %v", ErrInternal, err)
	}

	now := u.timeProvider.Now()
	if session.HasStarted(now) {
		return domain.Deny(msgSessionStarted, nil), session, nil
	}

	memberships, err := u.fetchMemberships(ctx, session.GymID, clientID)
	if err != nil {
		return nil, nil, err
	}

	policy, err := u.fetchPolicy(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	// окно записи с учетом привилегии раннего доступа
	earlyHours := quota.MaxEarlyAccessHours(memberships, session)
	opens := window.EffectiveOpensAt(session, policy, earlyHours)
	if opens != nil && now.Before(*opens) {
		return denyWindowClosed(session, policy, earlyHours, *opens, now), session, nil
	}

	confirmed, err := u.bookings.GetConfirmedBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: evaluate - count confirmed: %v", ErrInternal, err)
	}

	remaining := session.EffectiveCapacity() - len(confirmed)
	if remaining <= 0 {
		return u.denySessionFull(ctx, session, policy), session, nil
	}

	if decision, err := u.checkDuplicates(ctx, sessionID, clientID); err != nil || decision != nil {
		return decision, session, err
	}

	limitDecision, err := u.limits.Evaluate(ctx, memberships, session)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: evaluate - check limits: %v", ErrInternal, err)
	}
	if !limitDecision.Allowed {
		return domain.Deny(limitDecision.Reason, map[string]interface{}{
			"limit_type": limitDecision.LimitType,
			"current":    limitDecision.Current,
			"limit":      limitDecision.Limit,
		}), session, nil
	}

	return domain.Allow(msgBookingAllowed, map[string]interface{}{
		"remaining_spots":  remaining,
		"plan_id":          limitDecision.PlanID,
		"plan_name":        limitDecision.PlanName,
		"rule_id":          limitDecision.RuleID,
		"booking_priority": limitDecision.Priority,
	}), session, nil
}

// fetchMemberships загружает абонементы клиента
// Отсутствие абонементов не ошибка - проверка лимитов вернет отказ not_covered
func (u *Usecase) fetchMemberships(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error) {
	memberships, err := u.members.GetClientMemberships(ctx, gymID, clientID)
	if err != nil {
		if errors.Is(err, memberClient.ErrClientNotFound) {
			return &domain.ClientMemberships{ClientID: clientID, GymID: gymID}, nil
		}
		return nil, fmt.Errorf("%w: fetchMemberships: %v", ErrInternal, err)
	}
	return memberships, nil
}

// fetchPolicy загружает политику активности; без политики запись всегда открыта
func (u *Usecase) fetchPolicy(ctx context.Context, session *domain.Session) (*domain.ActivityPolicy, error) {
	policy, err := u.policies.GetForActivity(ctx, session.GymID, session.ActivityID)
	if err != nil {
		if errors.Is(err, storagePolicy.ErrPolicyNotFound) {
			return &domain.ActivityPolicy{GymID: session.GymID, WindowMode: domain.WindowOpen}, nil
		}
		return nil, fmt.Errorf("%w: fetchPolicy: %v", ErrInternal, err)
	}
	return policy, nil
}

// checkDuplicates активная запись или место в очереди исключают повторную запись
func (u *Usecase) checkDuplicates(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error) {
	_, err := u.bookings.GetActiveBySessionAndClient(ctx, sessionID, clientID)
	if err == nil {
		return domain.Deny(msgAlreadyBooked, nil), nil
	}
	if !errors.Is(err, storageBooking.ErrBookingNotFound) {
		return nil, fmt.Errorf("%w: checkDuplicates - booking lookup: %v", ErrInternal, err)
	}

	_, err = u.waitlists.GetWaitingBySessionAndClient(ctx, sessionID, clientID)
	if err == nil {
		return domain.Deny(msgAlreadyWaiting, nil), nil
	}
	if !errors.Is(err, storageWaitlist.ErrEntryNotFound) {
		return nil, fmt.Errorf("%w: checkDuplicates - waitlist lookup: %v", ErrInternal, err)
	}

	return nil, nil
}

// denySessionFull отказ по вместимости с подсказкой про лист ожидания:
// доступность очереди и позиция, которую займет клиент при вступлении
func (u *Usecase) denySessionFull(ctx context.Context, session *domain.Session, policy *domain.ActivityPolicy) *domain.Decision {
	data := map[string]interface{}{
		"remaining_spots":    0,
		"waitlist_available": false,
	}

	if policy.WaitlistEnabled {
		waiting, err := u.waitlists.CountWaiting(ctx, session.ID)
		if err != nil {
			u.logger.Warn("denySessionFull: failed to count waitlist for session=%d: %v", session.ID, err)
			return domain.Deny(msgSessionFull, data)
		}

		available := !policy.HasWaitlistLimit() || waiting < policy.WaitlistLimit
		data["waitlist_available"] = available
		if available {
			data["position"] = waiting + 1
		}
	}

	return domain.Deny(msgSessionFull, data)
}

// denyWindowClosed отказ до открытия окна с обратным отсчетом
func denyWindowClosed(session *domain.Session, policy *domain.ActivityPolicy, earlyHours int, opens, now time.Time) *domain.Decision {
	data := map[string]interface{}{
		"opens_at": opens.Format(time.RFC3339),
	}
	if general := window.OpensAt(session, policy); general != nil && earlyHours > 0 {
		data["opens_at"] = general.Format(time.RFC3339)
		data["effective_opens_at"] = opens.Format(time.RFC3339)
	}

	return domain.Deny(countdownMessage(opens.Sub(now)), data)
}

// countdownMessage человекочитаемый обратный отсчет до открытия записи
func countdownMessage(until time.Duration) string {
	if until >= 24*time.Hour {
		days := int((until + 24*time.Hour - 1) / (24 * time.Hour))
		return fmt.Sprintf(msgWindowDaysFmt, days)
	}

	minutes := int((until + time.Minute - 1) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf(msgWindowMinutesFmt, minutes)
	}

	return fmt.Sprintf(msgWindowHoursFmt, minutes/60, minutes%60)
}
