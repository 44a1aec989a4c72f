// Package waitlist лист ожидания на заполненные занятия
//
// Очередь упорядочена как is_vip DESC, joined_at ASC, id ASC. Продвижение
// (ручное и автоматическое) выполняется в serializable-транзакции с повторной
// проверкой вместимости, чтобы продвижение и прямая запись не могли занять
// одно место дважды
package waitlist

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
)

const (
	msgWaitlistDisabled = "лист ожидания для этого занятия не ведется"
	msgSessionStarted   = "занятие уже началось"
	msgSessionNotFull   = "на занятии есть свободные места, запишитесь напрямую"
	msgAlreadyWaiting   = "вы уже стоите в листе ожидания на это занятие"
	msgAlreadyBooked    = "вы уже записаны на это занятие"
	msgWaitlistFull     = "лист ожидания заполнен"
	msgJoined           = "вы добавлены в лист ожидания"
	msgLeft             = "вы покинули лист ожидания"
	msgNotWaiting       = "запись листа ожидания уже неактивна"
	msgNoSpace          = "на занятии нет свободного места для продвижения"
	msgPromoted         = "клиент записан на занятие из листа ожидания"
)

// Usecase управление листом ожидания
type Usecase struct {
	sessions     SessionProvider
	bookings     BookingRepo
	entries      WaitlistRepo
	policies     PolicyProvider
	members      MembershipProvider
	txManager    TxManager
	timeProvider TimeProvider
	logger       Logger
}

// New создает новый экземпляр менеджера листа ожидания
func New(
	sessions SessionProvider,
	bookings BookingRepo,
	entries WaitlistRepo,
	policies PolicyProvider,
	members MembershipProvider,
	txManager TxManager,
	timeProvider TimeProvider,
	logger Logger,
) *Usecase {
	return &Usecase{
		sessions:     sessions,
		bookings:     bookings,
		entries:      entries,
		policies:     policies,
		members:      members,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Join ставит клиента в очередь на заполненное занятие
func (u *Usecase) Join(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error) {
	session, err := u.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if session.HasStarted(now) {
		return domain.Deny(msgSessionStarted, nil), nil
	}

	policy, err := u.loadPolicy(ctx, session)
	if err != nil {
		return nil, err
	}
	if policy == nil || !policy.WaitlistEnabled {
		return domain.Deny(msgWaitlistDisabled, nil), nil
	}

	confirmed, err := u.bookings.GetConfirmedBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: Join - count confirmed: %v", ErrInternal, err)
	}
	if len(confirmed) < session.EffectiveCapacity() {
		return domain.Deny(msgSessionNotFull, nil), nil
	}

	if decision, err := u.checkJoinDuplicates(ctx, sessionID, clientID); err != nil || decision != nil {
		return decision, err
	}

	if policy.HasWaitlistLimit() {
		waiting, err := u.entries.CountWaiting(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: Join - count waiting: %v", ErrInternal, err)
		}
		if waiting >= policy.WaitlistLimit {
			return domain.Deny(msgWaitlistFull, map[string]interface{}{
				"waitlist_limit": policy.WaitlistLimit,
			}), nil
		}
	}

	entry, err := u.entries.Create(ctx, &domain.WaitlistEntry{
		GymID:     session.GymID,
		SessionID: sessionID,
		ClientID:  clientID,
		Status:    domain.WaitlistWaiting,
		IsVIP:     u.isVIP(ctx, policy, session.GymID, clientID),
	})
	if err != nil {
		if errors.Is(err, storageWaitlist.ErrDuplicateEntry) {
			return domain.Deny(msgAlreadyWaiting, nil), nil
		}
		return nil, fmt.Errorf("%w: Join - create entry: %v", ErrInternal, err)
	}

	position, err := u.entries.CountWaitingNotAfter(ctx, entry)
	if err != nil {
		u.logger.Warn("Join: failed to compute position for entry=%d: %v", entry.ID, err)
		position = 0
	}

	u.logger.Info("Join: client=%d queued for session=%d, entry=%d, vip=%v, position=%d",
		clientID, sessionID, entry.ID, entry.IsVIP, position)

	data := map[string]interface{}{
		"entry_id": entry.ID,
		"is_vip":   entry.IsVIP,
	}
	if position > 0 {
		data["position"] = position
	}

	return domain.Allow(msgJoined, data), nil
}

// Leave снимает клиента с очереди
func (u *Usecase) Leave(ctx context.Context, entryID, clientID int64) (*domain.Decision, error) {
	entry, err := u.loadOwnedEntry(ctx, entryID, clientID)
	if err != nil {
		return nil, err
	}

	if !entry.IsWaiting() {
		return domain.Deny(msgNotWaiting, nil), nil
	}

	if err := u.entries.MarkCancelled(ctx, entryID); err != nil {
		if errors.Is(err, storageWaitlist.ErrEntryNotFound) {
			// конкурентное продвижение или отмена успели раньше
			return domain.Deny(msgNotWaiting, nil), nil
		}
		return nil, fmt.Errorf("%w: Leave - mark cancelled: %v", ErrInternal, err)
	}

	u.logger.Info("Leave: client=%d left waitlist entry=%d", clientID, entryID)
	return domain.Allow(msgLeft, nil), nil
}

// Promote вручную продвигает запись очереди в подтвержденное бронирование
// Используется администратором для режима MANUAL
func (u *Usecase) Promote(ctx context.Context, entryID, staffID int64) (*domain.Decision, error) {
	var decision *domain.Decision

	err := u.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		entry, err := u.entries.GetByID(txCtx, entryID)
		if err != nil {
			if errors.Is(err, storageWaitlist.ErrEntryNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("%w: Promote - get entry: %v", ErrInternal, err)
		}

		if !entry.IsWaiting() {
			decision = domain.Deny(msgNotWaiting, nil)
			return nil
		}

		session, err := u.loadSession(txCtx, entry.SessionID)
		if err != nil {
			return err
		}

		decision, err = u.promoteEntry(txCtx, session, entry)
		return err
	})
	if err != nil {
		return nil, err
	}

	if decision.Allowed {
		u.logger.Info("Promote: entry=%d promoted by staff=%d", entryID, staffID)
	}

	return decision, nil
}

// AutoPromote продвигает голову очереди после освобождения места
//
// Работает только для режима AUTO_PROMOTE и только пока до начала занятия
// больше часа отсечки - позднее освобождение оставляет место свободным
func (u *Usecase) AutoPromote(ctx context.Context, sessionID int64) error {
	session, err := u.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	policy, err := u.loadPolicy(ctx, session)
	if err != nil {
		return err
	}
	if policy == nil || !policy.AutoPromoteEnabled() {
		return nil
	}

	cutoffHours := policy.AutoPromoteCutoffHours
	if cutoffHours <= 0 {
		cutoffHours = domain.DefaultAutoPromoteCutoffHours
	}
	now := u.timeProvider.Now()
	if session.StartTime.Sub(now) <= time.Duration(cutoffHours)*time.Hour {
		u.logger.Info("AutoPromote: session=%d within cutoff, spot stays open", sessionID)
		return nil
	}

	return u.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		entry, err := u.entries.GetNextWaiting(txCtx, sessionID)
		if err != nil {
			if errors.Is(err, storageWaitlist.ErrEntryNotFound) {
				return nil
			}
			return fmt.Errorf("%w: AutoPromote - next waiting: %v", ErrInternal, err)
		}

		decision, err := u.promoteEntry(txCtx, session, entry)
		if err != nil {
			return err
		}

		if decision.Allowed {
			u.logger.Info("AutoPromote: entry=%d, client=%d promoted for session=%d",
				entry.ID, entry.ClientID, sessionID)
		}
		return nil
	})
}

// promoteEntry создает подтвержденное бронирование и закрывает запись очереди
// Вызывается только внутри транзакции: подсчет мест идет с FOR UPDATE
func (u *Usecase) promoteEntry(ctx context.Context, session *domain.Session, entry *domain.WaitlistEntry) (*domain.Decision, error) {
	confirmed, err := u.bookings.GetConfirmedBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: promoteEntry - count confirmed: %v", ErrInternal, err)
	}
	if len(confirmed) >= session.EffectiveCapacity() {
		return domain.Deny(msgNoSpace, nil), nil
	}

	booking, err := u.bookings.Create(ctx, &domain.Booking{
		GymID:            session.GymID,
		SessionID:        session.ID,
		ClientID:         entry.ClientID,
		Status:           domain.StatusConfirmed,
		AttendanceStatus: domain.AttendancePending,
	})
	if err != nil {
		if errors.Is(err, storageBooking.ErrDuplicateBooking) {
			// клиент успел записаться напрямую, запись очереди больше не нужна
			if markErr := u.entries.MarkCancelled(ctx, entry.ID); markErr != nil {
				return nil, fmt.Errorf("%w: promoteEntry - cancel stale entry: %v", ErrInternal, markErr)
			}
			return domain.Deny(msgAlreadyBooked, nil), nil
		}
		return nil, fmt.Errorf("%w: promoteEntry - create booking: %v", ErrInternal, err)
	}

	if err := u.entries.MarkPromoted(ctx, entry.ID); err != nil {
		return nil, fmt.Errorf("%w: promoteEntry - mark promoted: %v", ErrInternal, err)
	}

	return domain.Allow(msgPromoted, map[string]interface{}{
		"booking_id": booking.ID,
		"client_id":  entry.ClientID,
	}), nil
}

// checkJoinDuplicates активная запись или место в очереди исключают вступление
func (u *Usecase) checkJoinDuplicates(ctx context.Context, sessionID, clientID int64) (*domain.Decision, error) {
	_, err := u.bookings.GetActiveBySessionAndClient(ctx, sessionID, clientID)
	if err == nil {
		return domain.Deny(msgAlreadyBooked, nil), nil
	}
	if !errors.Is(err, storageBooking.ErrBookingNotFound) {
		return nil, fmt.Errorf("%w: checkJoinDuplicates - booking lookup: %v", ErrInternal, err)
	}

	_, err = u.entries.GetWaitingBySessionAndClient(ctx, sessionID, clientID)
	if err == nil {
		return domain.Deny(msgAlreadyWaiting, nil), nil
	}
	if !errors.Is(err, storageWaitlist.ErrEntryNotFound) {
		return nil, fmt.Errorf("%w: checkJoinDuplicates - waitlist lookup: %v", ErrInternal, err)
	}

	return nil, nil
}

// isVIP определяет VIP-статус клиента по спискам планов и групп политики
// При недоступности MemberService клиент встает в очередь как обычный
func (u *Usecase) isVIP(ctx context.Context, policy *domain.ActivityPolicy, gymID, clientID int64) bool {
	if len(policy.VIPPlanIDs) == 0 && len(policy.VIPGroupIDs) == 0 {
		return false
	}

	memberships, err := u.members.GetClientMembershipsWithGracefulDegradation(ctx, gymID, clientID)
	if err != nil {
		if !errors.Is(err, memberClient.ErrClientNotFound) && !errors.Is(err, memberClient.ErrServiceDegraded) {
			u.logger.Warn("isVIP: membership lookup failed for client=%d: %v", clientID, err)
		}
		return false
	}

	for _, planID := range policy.VIPPlanIDs {
		if memberships.HoldsPlan(planID) {
			return true
		}
	}
	for _, groupID := range policy.VIPGroupIDs {
		if memberships.InGroup(groupID) {
			return true
		}
	}
	return false
}

func (u *Usecase) loadSession(ctx context.Context, sessionID int64) (*domain.Session, error) {
	session, err := u.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storageSession.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
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

func (u *Usecase) loadOwnedEntry(ctx context.Context, entryID, clientID int64) (*domain.WaitlistEntry, error) {
	entry, err := u.entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, storageWaitlist.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("%w: loadOwnedEntry: %v", ErrInternal, err)
	}

	if entry.ClientID != clientID {
		return nil, ErrPermissionDenied
	}

	return entry, nil
}
