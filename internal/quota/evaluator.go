// Package quota проверка лимитов абонемента при записи на занятие
//
// Из активных абонементов клиента собираются правила доступа, покрывающие
// активность занятия, выбирается правило с наибольшим booking_priority,
// и по нему последовательно проверяются все настроенные ограничения.
// Первое нарушение прерывает проверку
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	memberClient "github.com/m04kA/GMS-ClassBookingService/internal/integrations/memberservice"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

const (
	msgNotCovered      = "абонемент не покрывает эту активность"
	msgDailyLimit      = "исчерпан дневной лимит занятий"
	msgWeeklyLimit     = "исчерпан недельный лимит занятий"
	msgMonthlyLimit    = "исчерпан месячный лимит занятий"
	msgConsecutiveDays = "абонемент не позволяет занятия два дня подряд"
	msgSimultaneous    = "достигнут максимум одновременных бронирований"
	msgAdvanceDays     = "дата занятия слишком далеко вперед для этого абонемента"
	msgTimeWindow      = "занятие вне временного окна абонемента"
	msgQuantity        = "занятия бонусного пакета закончились"
	msgAllowed         = "лимиты абонемента позволяют запись"
)

// Evaluator проверяет лимиты абонемента клиента для конкретного занятия
type Evaluator struct {
	members      MembershipProvider
	bookings     BookingCounter
	timeProvider TimeProvider
	logger       Logger
}

// NewEvaluator создает новый экземпляр проверки лимитов
func NewEvaluator(members MembershipProvider, bookings BookingCounter, logger Logger) *Evaluator {
	return &Evaluator{
		members:      members,
		bookings:     bookings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// candidate подходящее правило вместе с абонементом-владельцем
type candidate struct {
	rule       domain.AccessRule
	membership domain.Membership
}

// CheckBookingLimits проверяет лимиты абонемента клиента для занятия
// Возвращает LimitDecision; ошибка означает инфраструктурный сбой, не отказ
func (e *Evaluator) CheckBookingLimits(ctx context.Context, session *domain.Session, clientID int64) (*domain.LimitDecision, error) {
	memberships, err := e.members.GetClientMemberships(ctx, session.GymID, clientID)
	if err != nil {
		if errors.Is(err, memberClient.ErrClientNotFound) {
			e.logger.Warn("CheckBookingLimits: client=%d has no memberships in gym=%d", clientID, session.GymID)
			return &domain.LimitDecision{
				Allowed:   false,
				Reason:    msgNotCovered,
				LimitType: domain.LimitTypeNotCovered,
			}, nil
		}
		return nil, fmt.Errorf("%w: failed to get memberships: %v", ErrInternal, err)
	}

	return e.Evaluate(ctx, memberships, session)
}

// Evaluate проверяет лимиты по уже загруженному снимку абонементов
// Используется координатором записи, чтобы не ходить в MemberService дважды
func (e *Evaluator) Evaluate(ctx context.Context, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	best, found := bestRule(memberships, session)
	if !found {
		e.logger.Warn("Evaluate: no matching access rule for client=%d, activity=%d",
			memberships.ClientID, session.ActivityID)
		return &domain.LimitDecision{
			Allowed:   false,
			Reason:    msgNotCovered,
			LimitType: domain.LimitTypeNotCovered,
		}, nil
	}

	e.logger.Info("Evaluate: client=%d, activity=%d, using rule=%d (plan=%q, priority=%d)",
		memberships.ClientID, session.ActivityID, best.rule.ID, best.membership.PlanName, best.rule.BookingPriority)

	checks := []func(context.Context, *candidate, *domain.ClientMemberships, *domain.Session) (*domain.LimitDecision, error){
		e.checkUsageLimit,
		e.checkLegacyCaps,
		e.checkConsecutiveDays,
		e.checkSimultaneous,
		e.checkAdvanceDays,
		e.checkTimeWindow,
		e.checkQuantity,
	}

	for _, check := range checks {
		decision, err := check(ctx, &best, memberships, session)
		if err != nil {
			return nil, err
		}
		if decision != nil {
			e.logger.Warn("Evaluate: client=%d denied, limit_type=%s (%d/%d)",
				memberships.ClientID, decision.LimitType, decision.Current, decision.Limit)
			return decision, nil
		}
	}

	return &domain.LimitDecision{
		Allowed:  true,
		Reason:   msgAllowed,
		RuleID:   best.rule.ID,
		PlanID:   best.membership.PlanID,
		PlanName: best.membership.PlanName,
		Priority: best.rule.BookingPriority,
	}, nil
}

// bestRule выбирает из подходящих правил правило с наибольшим booking_priority
// При равном приоритете побеждает меньший id правила - детерминированно,
// но без оценки "выгодности" лимитов
func bestRule(memberships *domain.ClientMemberships, session *domain.Session) (candidate, bool) {
	var best candidate
	found := false

	for _, m := range memberships.Memberships {
		for _, rule := range m.Rules {
			if !rule.Matches(session) {
				continue
			}
			if !found ||
				rule.BookingPriority > best.rule.BookingPriority ||
				(rule.BookingPriority == best.rule.BookingPriority && rule.ID < best.rule.ID) {
				best = candidate{rule: rule, membership: m}
				found = true
			}
		}
	}

	return best, found
}

// MaxEarlyAccessHours возвращает максимальную привилегию раннего доступа
// среди правил клиента, покрывающих занятие (0, если таких нет)
func MaxEarlyAccessHours(memberships *domain.ClientMemberships, session *domain.Session) int {
	hours := 0
	for _, m := range memberships.Memberships {
		for _, rule := range m.Rules {
			if rule.Matches(session) && rule.EarlyAccessHours > hours {
				hours = rule.EarlyAccessHours
			}
		}
	}
	return hours
}

// checkUsageLimit комбинированный лимит usage_limit за usage_limit_period
// Окно считается от даты занятия, не от "сейчас"
func (e *Evaluator) checkUsageLimit(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if !c.rule.HasUsageLimit() {
		return nil, nil
	}

	limitType, message := usageLimitKind(c.rule.UsageLimitPeriod)
	from, to := periodWindow(c.rule.UsageLimitPeriod, session.StartTime, session.Location())

	count, err := e.countScoped(ctx, c, memberships, session, from, to, domain.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	if count >= *c.rule.UsageLimit {
		return deniedLimit(message, limitType, count, *c.rule.UsageLimit), nil
	}

	return nil, nil
}

// checkLegacyCaps фиксированные лимиты max_per_day/week/month
// Проверяются независимо, только если комбинированный лимит не настроен
func (e *Evaluator) checkLegacyCaps(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if c.rule.HasUsageLimit() {
		return nil, nil
	}

	caps := []struct {
		limit     *int
		period    domain.UsagePeriod
		limitType string
		message   string
	}{
		{c.rule.MaxPerDay, domain.UsagePerDay, domain.LimitTypeDaily, msgDailyLimit},
		{c.rule.MaxPerWeek, domain.UsagePerWeek, domain.LimitTypeWeekly, msgWeeklyLimit},
		{c.rule.MaxPerMonth, domain.UsagePerMonth, domain.LimitTypeMonthly, msgMonthlyLimit},
	}

	for _, cap := range caps {
		if cap.limit == nil {
			continue
		}

		from, to := periodWindow(cap.period, session.StartTime, session.Location())
		count, err := e.countScoped(ctx, c, memberships, session, from, to, domain.ActiveStatuses)
		if err != nil {
			return nil, err
		}

		if count >= *cap.limit {
			return deniedLimit(cap.message, cap.limitType, count, *cap.limit), nil
		}
	}

	return nil, nil
}

// checkConsecutiveDays запрет подтвержденных занятий в календарный день
// непосредственно до или после дня занятия (в рамках того же зала)
func (e *Evaluator) checkConsecutiveDays(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if !c.rule.NoConsecutiveDays {
		return nil, nil
	}

	loc := session.Location()
	confirmed := []domain.BookingStatus{domain.StatusConfirmed}

	for _, dayShift := range []int{-1, 1} {
		from, to := dayWindow(session.StartTime.In(loc).AddDate(0, 0, dayShift), loc)
		count, err := e.bookings.CountByClientWithFilter(ctx, domain.ClientUsageFilter{
			GymID:    session.GymID,
			ClientID: memberships.ClientID,
			From:     from,
			To:       to,
			Statuses: confirmed,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: consecutive days check: %v", ErrInternal, err)
		}

		if count > 0 {
			return deniedLimit(msgConsecutiveDays, domain.LimitTypeConsecutiveDay, count, 0), nil
		}
	}

	return nil, nil
}

// checkSimultaneous максимум будущих подтвержденных бронирований одновременно
func (e *Evaluator) checkSimultaneous(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if c.rule.MaxSimultaneous == nil {
		return nil, nil
	}

	count, err := e.bookings.CountFutureConfirmed(ctx, session.GymID, memberships.ClientID, e.timeProvider.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: simultaneous check: %v", ErrInternal, err)
	}

	if count >= *c.rule.MaxSimultaneous {
		return deniedLimit(msgSimultaneous, domain.LimitTypeSimultaneous, count, *c.rule.MaxSimultaneous), nil
	}

	return nil, nil
}

// checkAdvanceDays запрет записи дальше, чем today + advance_booking_days
func (e *Evaluator) checkAdvanceDays(_ context.Context, c *candidate, _ *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if c.rule.AdvanceBookingDays == nil {
		return nil, nil
	}

	loc := session.Location()
	todayStart, _ := dayWindow(e.timeProvider.Now(), loc)
	maxDate := todayStart.AddDate(0, 0, *c.rule.AdvanceBookingDays)

	if session.LocalDate().After(maxDate) {
		return deniedLimit(msgAdvanceDays, domain.LimitTypeAdvanceDays, 0, *c.rule.AdvanceBookingDays), nil
	}

	return nil, nil
}

// checkTimeWindow занятие должно начинаться внутри [access_time_start, access_time_end)
func (e *Evaluator) checkTimeWindow(_ context.Context, c *candidate, _ *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if !c.rule.HasTimeWindow() {
		return nil, nil
	}

	sessionStart := types.NewTimeString(session.StartTime.In(session.Location()))
	if sessionStart.IsBefore(*c.rule.AccessTimeStart) || !sessionStart.IsBefore(*c.rule.AccessTimeEnd) {
		return deniedLimit(msgTimeWindow, domain.LimitTypeTimeWindow, 0, 0), nil
	}

	return nil, nil
}

// checkQuantity баланс бонусного пакета занятий
func (e *Evaluator) checkQuantity(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session) (*domain.LimitDecision, error) {
	if c.rule.Quantity == nil {
		return nil, nil
	}

	loc := session.Location()
	today := e.timeProvider.Now().In(loc)

	var from, to time.Time
	switch c.rule.QuantityPeriod {
	case domain.QuantityPerCycle:
		from, to = cycleWindow(c.membership.StartsAt, c.membership.CycleMonths, today, loc)
	case domain.QuantityPerDay:
		from, to = dayWindow(session.StartTime, loc)
	case domain.QuantityPerWeek:
		from, to = weekWindow(session.StartTime, loc)
	default: // total: с начала действия абонемента до его конца, если задан
		from = c.membership.StartsAt.In(loc)
		if c.membership.EndsAt != nil {
			to = c.membership.EndsAt.In(loc)
		} else {
			to = from.AddDate(100, 0, 0)
		}
	}

	consumed, err := e.countScoped(ctx, c, memberships, session, from, to, domain.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	if consumed >= *c.rule.Quantity {
		return deniedLimit(msgQuantity, domain.LimitTypeQuantity, consumed, *c.rule.Quantity), nil
	}

	return nil, nil
}

// countScoped подсчитывает бронирования клиента в окне [from, to)
// с учетом области действия правила (активность / категория / все)
func (e *Evaluator) countScoped(ctx context.Context, c *candidate, memberships *domain.ClientMemberships, session *domain.Session, from, to time.Time, statuses []domain.BookingStatus) (int, error) {
	filter := domain.ClientUsageFilter{
		GymID:    session.GymID,
		ClientID: memberships.ClientID,
		From:     from,
		To:       to,
		Statuses: statuses,
	}

	switch c.rule.Target {
	case domain.TargetActivity:
		filter.ActivityID = c.rule.ActivityID
	case domain.TargetCategory:
		filter.CategoryID = c.rule.CategoryID
	}

	count, err := e.bookings.CountByClientWithFilter(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: usage count: %v", ErrInternal, err)
	}

	return count, nil
}

func periodWindow(period domain.UsagePeriod, anchor time.Time, loc *time.Location) (time.Time, time.Time) {
	switch period {
	case domain.UsagePerWeek:
		return weekWindow(anchor, loc)
	case domain.UsagePerMonth:
		return monthWindow(anchor, loc)
	default:
		return dayWindow(anchor, loc)
	}
}

func usageLimitKind(period domain.UsagePeriod) (string, string) {
	switch period {
	case domain.UsagePerWeek:
		return domain.LimitTypeWeekly, msgWeeklyLimit
	case domain.UsagePerMonth:
		return domain.LimitTypeMonthly, msgMonthlyLimit
	default:
		return domain.LimitTypeDaily, msgDailyLimit
	}
}

func deniedLimit(reason, limitType string, current, limit int) *domain.LimitDecision {
	return &domain.LimitDecision{
		Allowed:   false,
		Reason:    reason,
		LimitType: limitType,
		Current:   current,
		Limit:     limit,
	}
}
