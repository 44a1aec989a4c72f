package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	memberClient "github.com/m04kA/GMS-ClassBookingService/internal/integrations/memberservice"
	"github.com/m04kA/GMS-ClassBookingService/pkg/ptr"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

type fakeMembers struct {
	memberships *domain.ClientMemberships
	err         error
}

func (f *fakeMembers) GetClientMemberships(_ context.Context, _, _ int64) (*domain.ClientMemberships, error) {
	return f.memberships, f.err
}

type fakeCounter struct {
	// countFn вызывается для CountByClientWithFilter, фильтры копятся в filters
	countFn  func(filter domain.ClientUsageFilter) (int, error)
	futureFn func(after time.Time) (int, error)
	filters  []domain.ClientUsageFilter
}

func (f *fakeCounter) CountByClientWithFilter(_ context.Context, filter domain.ClientUsageFilter) (int, error) {
	f.filters = append(f.filters, filter)
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn(filter)
}

func (f *fakeCounter) CountFutureConfirmed(_ context.Context, _, _ int64, after time.Time) (int, error) {
	if f.futureFn == nil {
		return 0, nil
	}
	return f.futureFn(after)
}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestEvaluator(members *fakeMembers, counter *fakeCounter, now time.Time) *Evaluator {
	e := NewEvaluator(members, counter, nopLogger{})
	e.timeProvider = &fixedTime{now: now}
	return e
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:          100,
		GymID:       1,
		ActivityID:  10,
		CategoryID:  ptr.Ptr(int64(5)),
		StartTime:   time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), // среда
		EndTime:     time.Date(2025, 6, 18, 19, 0, 0, 0, time.UTC),
		GymTimezone: "UTC",
	}
}

func membershipsWith(rules ...domain.AccessRule) *domain.ClientMemberships {
	return &domain.ClientMemberships{
		ClientID: 7,
		GymID:    1,
		Memberships: []domain.Membership{
			{
				ID:          1,
				PlanID:      50,
				PlanName:    "Standard",
				StartsAt:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
				CycleMonths: 1,
				Rules:       rules,
			},
		},
	}
}

func allRule() domain.AccessRule {
	return domain.AccessRule{ID: 1, Target: domain.TargetAll}
}

func TestEvaluate_NoMatchingRule(t *testing.T) {
	evaluator := newTestEvaluator(&fakeMembers{}, &fakeCounter{}, time.Now())

	memberships := membershipsWith(domain.AccessRule{
		ID:         1,
		Target:     domain.TargetActivity,
		ActivityID: ptr.Ptr(int64(999)), // другая активность
	})

	decision, err := evaluator.Evaluate(context.Background(), memberships, testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeNotCovered, decision.LimitType)
}

func TestEvaluate_PicksHighestPriorityRule(t *testing.T) {
	evaluator := newTestEvaluator(&fakeMembers{}, &fakeCounter{}, time.Now())

	lowPriority := domain.AccessRule{ID: 1, Target: domain.TargetAll, BookingPriority: 1}
	highPriority := domain.AccessRule{ID: 2, Target: domain.TargetAll, BookingPriority: 10}

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(lowPriority, highPriority), testSession())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(2), decision.RuleID)
	assert.Equal(t, 10, decision.Priority)
	assert.Equal(t, "Standard", decision.PlanName)
}

func TestEvaluate_EqualPriorityPicksLowerRuleID(t *testing.T) {
	evaluator := newTestEvaluator(&fakeMembers{}, &fakeCounter{}, time.Now())

	second := domain.AccessRule{ID: 9, Target: domain.TargetAll, BookingPriority: 5}
	first := domain.AccessRule{ID: 3, Target: domain.TargetAll, BookingPriority: 5}

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(second, first), testSession())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(3), decision.RuleID)
}

func TestEvaluate_WeeklyUsageLimitReached(t *testing.T) {
	counter := &fakeCounter{
		countFn: func(domain.ClientUsageFilter) (int, error) { return 3, nil },
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := allRule()
	rule.UsageLimit = ptr.Ptr(3)
	rule.UsageLimitPeriod = domain.UsagePerWeek

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeWeekly, decision.LimitType)
	assert.Equal(t, 3, decision.Current)
	assert.Equal(t, 3, decision.Limit)

	// окно недели считается от даты занятия: среда 18 июня -> [16, 23) июня
	require.Len(t, counter.filters, 1)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), counter.filters[0].From)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), counter.filters[0].To)
}

func TestEvaluate_UsageLimitUnderThresholdAllows(t *testing.T) {
	counter := &fakeCounter{
		countFn: func(domain.ClientUsageFilter) (int, error) { return 2, nil },
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := allRule()
	rule.UsageLimit = ptr.Ptr(3)
	rule.UsageLimitPeriod = domain.UsagePerWeek

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_ActivityScopedCount(t *testing.T) {
	counter := &fakeCounter{}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := domain.AccessRule{
		ID:               1,
		Target:           domain.TargetActivity,
		ActivityID:       ptr.Ptr(int64(10)),
		UsageLimit:       ptr.Ptr(5),
		UsageLimitPeriod: domain.UsagePerDay,
	}

	_, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)

	require.Len(t, counter.filters, 1)
	require.NotNil(t, counter.filters[0].ActivityID)
	assert.Equal(t, int64(10), *counter.filters[0].ActivityID)
}

func TestEvaluate_LegacyDailyCap(t *testing.T) {
	counter := &fakeCounter{
		countFn: func(domain.ClientUsageFilter) (int, error) { return 1, nil },
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := allRule()
	rule.MaxPerDay = ptr.Ptr(1)

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeDaily, decision.LimitType)
}

func TestEvaluate_NoConsecutiveDays(t *testing.T) {
	counter := &fakeCounter{
		countFn: func(filter domain.ClientUsageFilter) (int, error) {
			// подтвержденное занятие накануне, 17 июня
			if filter.From.Day() == 17 {
				return 1, nil
			}
			return 0, nil
		},
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := allRule()
	rule.NoConsecutiveDays = true

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeConsecutiveDay, decision.LimitType)
}

func TestEvaluate_MaxSimultaneous(t *testing.T) {
	counter := &fakeCounter{
		futureFn: func(time.Time) (int, error) { return 4, nil },
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, time.Now())

	rule := allRule()
	rule.MaxSimultaneous = ptr.Ptr(4)

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeSimultaneous, decision.LimitType)
}

func TestEvaluate_AdvanceBookingDays(t *testing.T) {
	// сегодня 10 июня, занятие 18 июня - это больше, чем 7 дней вперед
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	evaluator := newTestEvaluator(&fakeMembers{}, &fakeCounter{}, now)

	rule := allRule()
	rule.AdvanceBookingDays = ptr.Ptr(7)

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeAdvanceDays, decision.LimitType)

	// а 8 дней уже достаточно
	rule.AdvanceBookingDays = ptr.Ptr(8)
	decision, err = evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_TimeWindow(t *testing.T) {
	evaluator := newTestEvaluator(&fakeMembers{}, &fakeCounter{}, time.Now())

	// занятие в 18:00, абонемент дневной - до 17:00
	rule := allRule()
	rule.AccessTimeStart = ptr.Ptr(types.TimeString("08:00"))
	rule.AccessTimeEnd = ptr.Ptr(types.TimeString("17:00"))

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeTimeWindow, decision.LimitType)

	// окно до 19:00 покрывает занятие
	rule.AccessTimeEnd = ptr.Ptr(types.TimeString("19:00"))
	decision, err = evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_QuantityPerCycleExhausted(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	counter := &fakeCounter{
		countFn: func(domain.ClientUsageFilter) (int, error) { return 8, nil },
	}
	evaluator := newTestEvaluator(&fakeMembers{}, counter, now)

	rule := allRule()
	rule.Quantity = ptr.Ptr(8)
	rule.QuantityPeriod = domain.QuantityPerCycle

	decision, err := evaluator.Evaluate(context.Background(), membershipsWith(rule), testSession())
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeQuantity, decision.LimitType)

	// окно цикла от даты старта абонемента: [15 мая, 15 июня)
	require.Len(t, counter.filters, 1)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), counter.filters[0].From)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), counter.filters[0].To)
}

func TestCheckBookingLimits_ClientWithoutMemberships(t *testing.T) {
	members := &fakeMembers{err: memberClient.ErrClientNotFound}
	evaluator := newTestEvaluator(members, &fakeCounter{}, time.Now())

	decision, err := evaluator.CheckBookingLimits(context.Background(), testSession(), 7)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeNotCovered, decision.LimitType)
}

func TestCheckBookingLimits_MemberServiceFailure(t *testing.T) {
	members := &fakeMembers{err: errors.New("connection refused")}
	evaluator := newTestEvaluator(members, &fakeCounter{}, time.Now())

	_, err := evaluator.CheckBookingLimits(context.Background(), testSession(), 7)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestMaxEarlyAccessHours(t *testing.T) {
	session := testSession()

	rule := allRule()
	rule.EarlyAccessHours = 24
	other := domain.AccessRule{ID: 2, Target: domain.TargetAll, EarlyAccessHours: 48}
	notMatching := domain.AccessRule{
		ID:               3,
		Target:           domain.TargetActivity,
		ActivityID:       ptr.Ptr(int64(999)),
		EarlyAccessHours: 72,
	}

	memberships := membershipsWith(rule, other, notMatching)
	assert.Equal(t, 48, MaxEarlyAccessHours(memberships, session))

	assert.Equal(t, 0, MaxEarlyAccessHours(membershipsWith(), session))
}
