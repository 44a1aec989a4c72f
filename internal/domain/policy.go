package domain

import (
	"time"

	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

// WindowMode режим открытия записи на занятие
type WindowMode string

const (
	// WindowOpen запись открыта всегда
	WindowOpen WindowMode = "open"
	// WindowRelativeToStart запись открывается за N часов до начала занятия
	WindowRelativeToStart WindowMode = "relative_to_start"
	// WindowFixedTime запись открывается в фиксированное время за N дней до занятия
	WindowFixedTime WindowMode = "fixed_time"
	// WindowWeeklyFixed запись открывается в фиксированный день недели и время
	// той недели, на которую приходится занятие
	WindowWeeklyFixed WindowMode = "weekly_fixed"
)

// WaitlistMode режим работы листа ожидания
type WaitlistMode string

const (
	// WaitlistAutoPromote освободившееся место автоматически отдается голове очереди
	WaitlistAutoPromote WaitlistMode = "auto_promote"
	// WaitlistManual продвижение только вручную администратором
	WaitlistManual WaitlistMode = "manual"
)

// PenaltyType тип санкции за позднюю отмену / неявку
type PenaltyType string

const (
	// PenaltyStrike отметка о нарушении без списания
	PenaltyStrike PenaltyType = "strike"
	// PenaltyFee денежный штраф
	PenaltyFee PenaltyType = "fee"
	// PenaltyForfeit списание занятия с бонусного пакета
	PenaltyForfeit PenaltyType = "forfeit"
)

// ActivityPolicy represents the booking configuration for an activity.
// Supports hierarchical configuration:
// 1. Activity-specific (gym_id, activity_id)
// 2. Gym-wide default (gym_id, NULL)
type ActivityPolicy struct {
	ID         int64
	GymID      int64
	ActivityID *int64 // NULL = политика по умолчанию для всего зала

	WindowMode WindowMode
	// WindowHoursBefore параметр режима relative_to_start
	WindowHoursBefore int
	// WindowOpenDaysBefore параметр режима fixed_time: за сколько дней до занятия
	WindowOpenDaysBefore int
	// WindowOpenWeekday параметр режима weekly_fixed (0 = воскресенье, как time.Weekday)
	WindowOpenWeekday int
	// WindowOpenTime время открытия записи для режимов fixed_time и weekly_fixed
	WindowOpenTime types.TimeString

	WaitlistEnabled bool
	// WaitlistLimit максимальный размер очереди (0 = без ограничения)
	WaitlistLimit int
	WaitlistMode  WaitlistMode
	// AutoPromoteCutoffHours за сколько часов до занятия автопродвижение
	// останавливается (внутри этого окна уведомить клиента уже не успеть)
	AutoPromoteCutoffHours int

	CancellationWindowHours int
	PenaltyType             PenaltyType
	PenaltyFee              float64

	// VIPPlanIDs тарифы, дающие приоритет в листе ожидания
	VIPPlanIDs []int64
	// VIPGroupIDs группы клиентов с приоритетом в листе ожидания
	VIPGroupIDs []int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGymDefault returns true if this is a gym-wide default policy
func (p *ActivityPolicy) IsGymDefault() bool {
	return p.ActivityID == nil
}

// AutoPromoteEnabled returns true if freed spots are handed to the waitlist automatically
func (p *ActivityPolicy) AutoPromoteEnabled() bool {
	return p.WaitlistEnabled && p.WaitlistMode == WaitlistAutoPromote
}

// HasWaitlistLimit returns true if the waitlist size is capped
func (p *ActivityPolicy) HasWaitlistLimit() bool {
	return p.WaitlistLimit > 0
}

// IsVIPPlan returns true if the plan grants waitlist priority
func (p *ActivityPolicy) IsVIPPlan(planID int64) bool {
	for _, id := range p.VIPPlanIDs {
		if id == planID {
			return true
		}
	}
	return false
}

// IsVIPGroup returns true if the group grants waitlist priority
func (p *ActivityPolicy) IsVIPGroup(groupID int64) bool {
	for _, id := range p.VIPGroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
