package domain

import (
	"time"

	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

// RuleTarget на что распространяется правило доступа
type RuleTarget string

const (
	// TargetActivity правило для конкретной активности
	TargetActivity RuleTarget = "activity"
	// TargetCategory правило для категории активностей
	TargetCategory RuleTarget = "category"
	// TargetAll правило без ограничения по активности
	TargetAll RuleTarget = "all"
)

// UsagePeriod период комбинированного лимита использования
type UsagePeriod string

const (
	UsagePerDay   UsagePeriod = "day"
	UsagePerWeek  UsagePeriod = "week"
	UsagePerMonth UsagePeriod = "month"
)

// QuantityPeriod период списания бонусного пакета занятий
type QuantityPeriod string

const (
	// QuantityTotal с начала действия абонемента (до его конца, если задан)
	QuantityTotal QuantityPeriod = "total"
	// QuantityPerCycle в рамках текущего платежного цикла
	QuantityPerCycle QuantityPeriod = "per_cycle"
	QuantityPerDay   QuantityPeriod = "per_day"
	QuantityPerWeek  QuantityPeriod = "per_week"
)

// AccessRule represents a membership-plan-defined limit on how much/often
// a client may book a given activity or category.
type AccessRule struct {
	ID     int64
	Target RuleTarget
	// ActivityID задан при Target == activity
	ActivityID *int64
	// CategoryID задан при Target == category
	CategoryID *int64

	// UsageLimit комбинированный лимит занятий за UsageLimitPeriod
	UsageLimit       *int
	UsageLimitPeriod UsagePeriod

	// Legacy фиксированные лимиты, проверяются независимо,
	// если комбинированный лимит не задан
	MaxPerDay   *int
	MaxPerWeek  *int
	MaxPerMonth *int

	// NoConsecutiveDays запрет занятий два календарных дня подряд
	NoConsecutiveDays bool

	// MaxSimultaneous максимум будущих подтвержденных бронирований одновременно
	MaxSimultaneous *int

	// AdvanceBookingDays максимум дней вперед от сегодняшнего дня
	AdvanceBookingDays *int

	// Окно времени суток [AccessTimeStart, AccessTimeEnd), в котором
	// должно начинаться занятие
	AccessTimeStart *types.TimeString
	AccessTimeEnd   *types.TimeString

	// Quantity бонусный пакет занятий (nil = безлимит)
	Quantity       *int
	QuantityPeriod QuantityPeriod

	// BookingPriority приоритет правила при нескольких подходящих (больше = лучше)
	BookingPriority int

	// EarlyAccessHours привилегия раннего доступа к окну записи
	EarlyAccessHours int
}

// Matches returns true if the rule covers the session's activity
func (r *AccessRule) Matches(session *Session) bool {
	switch r.Target {
	case TargetActivity:
		return r.ActivityID != nil && *r.ActivityID == session.ActivityID
	case TargetCategory:
		return r.CategoryID != nil && session.CategoryID != nil && *r.CategoryID == *session.CategoryID
	case TargetAll:
		return true
	default:
		return false
	}
}

// HasUsageLimit returns true if the combined usage limit is configured
func (r *AccessRule) HasUsageLimit() bool {
	return r.UsageLimit != nil
}

// HasTimeWindow returns true if the time-of-day window is configured
func (r *AccessRule) HasTimeWindow() bool {
	return r.AccessTimeStart != nil && r.AccessTimeEnd != nil
}

// Membership represents a client's active membership with its plan's access rules
type Membership struct {
	ID       int64
	PlanID   int64
	PlanName string
	StartsAt time.Time
	// EndsAt конец действия (nil = бессрочный)
	EndsAt *time.Time
	// CycleMonths длина платежного цикла тарифа в месяцах
	CycleMonths int
	Rules       []AccessRule
}

// ClientMemberships снимок активных абонементов клиента в рамках одного зала
// Приходит из MemberService, движок его не хранит
type ClientMemberships struct {
	ClientID    int64
	GymID       int64
	Memberships []Membership
	// GroupIDs группы клиента (используются для VIP-приоритета листа ожидания)
	GroupIDs []int64
}

// HoldsPlan returns true if the client has an active membership in the plan
func (c *ClientMemberships) HoldsPlan(planID int64) bool {
	for _, m := range c.Memberships {
		if m.PlanID == planID {
			return true
		}
	}
	return false
}

// InGroup returns true if the client belongs to the group
func (c *ClientMemberships) InGroup(groupID int64) bool {
	for _, id := range c.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
