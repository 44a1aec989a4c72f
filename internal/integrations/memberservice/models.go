package memberservice

import (
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

// clientMembershipsResponse ответ MemberService со снимком абонементов клиента
type clientMembershipsResponse struct {
	ClientID    int64                `json:"client_id"`
	GymID       int64                `json:"gym_id"`
	GroupIDs    []int64              `json:"group_ids"`
	Memberships []membershipResponse `json:"memberships"`
}

// membershipResponse активный абонемент с правилами доступа тарифа
type membershipResponse struct {
	ID          int64                `json:"id"`
	PlanID      int64                `json:"plan_id"`
	PlanName    string               `json:"plan_name"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      *time.Time           `json:"ends_at,omitempty"`
	CycleMonths int                  `json:"cycle_months"`
	Rules       []accessRuleResponse `json:"access_rules"`
}

// accessRuleResponse правило доступа тарифа или персонального абонемента
type accessRuleResponse struct {
	ID                 int64   `json:"id"`
	Target             string  `json:"target"` // activity | category | all
	ActivityID         *int64  `json:"activity_id,omitempty"`
	CategoryID         *int64  `json:"category_id,omitempty"`
	UsageLimit         *int    `json:"usage_limit,omitempty"`
	UsageLimitPeriod   string  `json:"usage_limit_period,omitempty"`
	MaxPerDay          *int    `json:"max_per_day,omitempty"`
	MaxPerWeek         *int    `json:"max_per_week,omitempty"`
	MaxPerMonth        *int    `json:"max_per_month,omitempty"`
	NoConsecutiveDays  bool    `json:"no_consecutive_days"`
	MaxSimultaneous    *int    `json:"max_simultaneous,omitempty"`
	AdvanceBookingDays *int    `json:"advance_booking_days,omitempty"`
	AccessTimeStart    *string `json:"access_time_start,omitempty"`
	AccessTimeEnd      *string `json:"access_time_end,omitempty"`
	Quantity           *int    `json:"quantity,omitempty"`
	QuantityPeriod     string  `json:"quantity_period,omitempty"`
	BookingPriority    int     `json:"booking_priority"`
	EarlyAccessHours   int     `json:"early_access_hours"`
}

// ErrorResponse модель ошибки от MemberService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toDomain конвертирует ответ сервиса в доменную модель
func (r *clientMembershipsResponse) toDomain() *domain.ClientMemberships {
	memberships := make([]domain.Membership, 0, len(r.Memberships))
	for _, m := range r.Memberships {
		memberships = append(memberships, m.toDomain())
	}

	return &domain.ClientMemberships{
		ClientID:    r.ClientID,
		GymID:       r.GymID,
		GroupIDs:    r.GroupIDs,
		Memberships: memberships,
	}
}

func (m *membershipResponse) toDomain() domain.Membership {
	rules := make([]domain.AccessRule, 0, len(m.Rules))
	for _, rule := range m.Rules {
		rules = append(rules, rule.toDomain())
	}

	return domain.Membership{
		ID:          m.ID,
		PlanID:      m.PlanID,
		PlanName:    m.PlanName,
		StartsAt:    m.StartsAt,
		EndsAt:      m.EndsAt,
		CycleMonths: m.CycleMonths,
		Rules:       rules,
	}
}

func (r *accessRuleResponse) toDomain() domain.AccessRule {
	rule := domain.AccessRule{
		ID:                 r.ID,
		Target:             domain.RuleTarget(r.Target),
		ActivityID:         r.ActivityID,
		CategoryID:         r.CategoryID,
		UsageLimit:         r.UsageLimit,
		UsageLimitPeriod:   domain.UsagePeriod(r.UsageLimitPeriod),
		MaxPerDay:          r.MaxPerDay,
		MaxPerWeek:         r.MaxPerWeek,
		MaxPerMonth:        r.MaxPerMonth,
		NoConsecutiveDays:  r.NoConsecutiveDays,
		MaxSimultaneous:    r.MaxSimultaneous,
		AdvanceBookingDays: r.AdvanceBookingDays,
		Quantity:           r.Quantity,
		QuantityPeriod:     domain.QuantityPeriod(r.QuantityPeriod),
		BookingPriority:    r.BookingPriority,
		EarlyAccessHours:   r.EarlyAccessHours,
	}

	if r.AccessTimeStart != nil {
		ts := types.TimeString(*r.AccessTimeStart)
		rule.AccessTimeStart = &ts
	}
	if r.AccessTimeEnd != nil {
		ts := types.TimeString(*r.AccessTimeEnd)
		rule.AccessTimeEnd = &ts
	}

	return rule
}
