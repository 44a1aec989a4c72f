package book_class

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storageBooking "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/booking"
	storagePolicy "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	storageSession "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/session"
	storageWaitlist "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/waitlist"
	memberClient "github.com/m04kA/GMS-ClassBookingService/internal/integrations/memberservice"
)

type fakeSessions struct {
	session *domain.Session
	err     error
}

func (f *fakeSessions) GetByID(_ context.Context, _ int64) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeBookings struct {
	confirmed []*domain.Booking
	active    *domain.Booking
	created   *domain.Booking
	createErr error
}

func (f *fakeBookings) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	booking.ID = 555
	f.created = booking
	return booking, nil
}

func (f *fakeBookings) GetActiveBySessionAndClient(_ context.Context, _, _ int64) (*domain.Booking, error) {
	if f.active == nil {
		return nil, storageBooking.ErrBookingNotFound
	}
	return f.active, nil
}

func (f *fakeBookings) GetConfirmedBySession(_ context.Context, _ int64) ([]*domain.Booking, error) {
	return f.confirmed, nil
}

type fakeWaitlists struct {
	waiting  *domain.WaitlistEntry
	count    int
	countErr error
}

func (f *fakeWaitlists) GetWaitingBySessionAndClient(_ context.Context, _, _ int64) (*domain.WaitlistEntry, error) {
	if f.waiting == nil {
		return nil, storageWaitlist.ErrEntryNotFound
	}
	return f.waiting, nil
}

func (f *fakeWaitlists) CountWaiting(_ context.Context, _ int64) (int, error) {
	return f.count, f.countErr
}

type fakePolicies struct {
	policy *domain.ActivityPolicy
}

func (f *fakePolicies) GetForActivity(_ context.Context, _, _ int64) (*domain.ActivityPolicy, error) {
	if f.policy == nil {
		return nil, storagePolicy.ErrPolicyNotFound
	}
	return f.policy, nil
}

type fakeMembers struct {
	memberships *domain.ClientMemberships
	err         error
}

func (f *fakeMembers) GetClientMemberships(_ context.Context, gymID, clientID int64) (*domain.ClientMemberships, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.memberships == nil {
		return &domain.ClientMemberships{ClientID: clientID, GymID: gymID}, nil
	}
	return f.memberships, nil
}

type fakeLimits struct {
	decision *domain.LimitDecision
	err      error
	seen     *domain.ClientMemberships
}

func (f *fakeLimits) Evaluate(_ context.Context, memberships *domain.ClientMemberships, _ *domain.Session) (*domain.LimitDecision, error) {
	f.seen = memberships
	if f.err != nil {
		return nil, f.err
	}
	return f.decision, nil
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fixedClock struct {
	now time.Time
}

func (f *fixedClock) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type testEnv struct {
	sessions  *fakeSessions
	bookings  *fakeBookings
	waitlists *fakeWaitlists
	policies  *fakePolicies
	members   *fakeMembers
	limits    *fakeLimits
	tx        *fakeTx
	clock     *fixedClock
	uc        *Usecase
}

// занятие в среду 18 июня 2025, 18:00 UTC на 10 мест
func testSession() *domain.Session {
	return &domain.Session{
		ID:                      100,
		GymID:                   1,
		ActivityID:              10,
		StartTime:               time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC),
		EndTime:                 time.Date(2025, 6, 18, 19, 0, 0, 0, time.UTC),
		ActivityDefaultCapacity: 10,
		GymTimezone:             "UTC",
	}
}

func allowedLimits() *domain.LimitDecision {
	return &domain.LimitDecision{
		Allowed:  true,
		Reason:   "запись разрешена",
		RuleID:   1,
		PlanID:   50,
		PlanName: "Standard",
		Priority: 10,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		sessions:  &fakeSessions{session: testSession()},
		bookings:  &fakeBookings{},
		waitlists: &fakeWaitlists{},
		policies:  &fakePolicies{},
		members:   &fakeMembers{},
		limits:    &fakeLimits{decision: allowedLimits()},
		tx:        &fakeTx{},
		clock:     &fixedClock{now: time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)},
	}
	env.uc = New(
		env.sessions, env.bookings, env.waitlists, env.policies,
		env.members, env.limits, env.tx, env.clock, nopLogger{},
	)
	return env
}

func confirmedBookings(n int) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, n)
	for i := 0; i < n; i++ {
		bookings = append(bookings, &domain.Booking{
			ID:        int64(i + 1),
			SessionID: 100,
			ClientID:  int64(1000 + i),
			Status:    domain.StatusConfirmed,
		})
	}
	return bookings
}

func TestCanBook_SessionNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.sessions.err = storageSession.ErrSessionNotFound

	_, err := env.uc.CanBook(context.Background(), 100, 7)

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCanBook_SessionAlreadyStarted(t *testing.T) {
	env := newTestEnv(t)
	env.clock.now = time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, msgSessionStarted, decision.Message)
}

func TestCanBook_WindowNotOpenYet(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 4,
	}
	// окно откроется в 14:00, сейчас 13:00
	env.clock.now = time.Date(2025, 6, 18, 13, 0, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "запись откроется через 1 ч 0 мин", decision.Message)
	assert.Equal(t, "2025-06-18T14:00:00Z", decision.Data["opens_at"])
	assert.NotContains(t, decision.Data, "effective_opens_at")
}

func TestCanBook_WindowCountdownInDays(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}
	env.clock.now = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "запись откроется через 2 дн.", decision.Message)
}

func TestCanBook_WindowCountdownInMinutes(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 4,
	}
	env.clock.now = time.Date(2025, 6, 18, 13, 45, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "запись откроется через 15 мин", decision.Message)
}

func TestCanBook_EarlyAccessOpensWindowSooner(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}
	env.members.memberships = &domain.ClientMemberships{
		ClientID: 7,
		GymID:    1,
		Memberships: []domain.Membership{{
			ID: 1, PlanID: 60, PlanName: "Premium", CycleMonths: 1,
			StartsAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Rules: []domain.AccessRule{{
				ID: 1, Target: domain.TargetAll, EarlyAccessHours: 30,
			}},
		}},
	}
	// общее окно откроется 16 июня 18:00, ранний доступ сдвигает на 15 июня 12:00
	env.clock.now = time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCanBook_EarlyAccessDenyExposesBothWindows(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}
	env.members.memberships = &domain.ClientMemberships{
		ClientID: 7,
		GymID:    1,
		Memberships: []domain.Membership{{
			ID: 1, PlanID: 60, PlanName: "Premium", CycleMonths: 1,
			StartsAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Rules: []domain.AccessRule{{
				ID: 1, Target: domain.TargetAll, EarlyAccessHours: 24,
			}},
		}},
	}
	env.clock.now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "2025-06-16T18:00:00Z", decision.Data["opens_at"])
	assert.Equal(t, "2025-06-15T18:00:00Z", decision.Data["effective_opens_at"])
}

func TestCanBook_DuplicateBooking(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.active = &domain.Booking{ID: 1, SessionID: 100, ClientID: 7, Status: domain.StatusConfirmed}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, msgAlreadyBooked, decision.Message)
}

func TestCanBook_AlreadyInWaitlist(t *testing.T) {
	env := newTestEnv(t)
	env.waitlists.waiting = &domain.WaitlistEntry{ID: 1, SessionID: 100, ClientID: 7, Status: domain.WaitlistWaiting}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, msgAlreadyWaiting, decision.Message)
}

func TestCanBook_SessionFullWaitlistAvailable(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(10)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:           1,
		WindowMode:      domain.WindowOpen,
		WaitlistEnabled: true,
		WaitlistLimit:   5,
	}
	env.waitlists.count = 2

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, msgSessionFull, decision.Message)
	assert.Equal(t, 0, decision.Data["remaining_spots"])
	assert.Equal(t, true, decision.Data["waitlist_available"])
	// двое уже в очереди, клиент встанет третьим
	assert.Equal(t, 3, decision.Data["position"])
}

func TestCanBook_SessionFullUnlimitedWaitlist(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(10)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:           1,
		WindowMode:      domain.WindowOpen,
		WaitlistEnabled: true,
	}
	env.waitlists.count = 7

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, true, decision.Data["waitlist_available"])
	assert.Equal(t, 8, decision.Data["position"])
}

func TestCanBook_SessionFullWaitlistFull(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(10)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:           1,
		WindowMode:      domain.WindowOpen,
		WaitlistEnabled: true,
		WaitlistLimit:   5,
	}
	env.waitlists.count = 5

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, false, decision.Data["waitlist_available"])
	assert.NotContains(t, decision.Data, "position")
}

func TestCanBook_FullSessionBeatsDuplicateCheck(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(10)
	env.bookings.active = &domain.Booking{ID: 1, SessionID: 100, ClientID: 7, Status: domain.StatusConfirmed}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	// вместимость проверяется раньше дубликата
	assert.Equal(t, msgSessionFull, decision.Message)
}

func TestCanBook_SessionFullWaitlistDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(10)
	env.policies.policy = &domain.ActivityPolicy{GymID: 1, WindowMode: domain.WindowOpen}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, false, decision.Data["waitlist_available"])
}

func TestCanBook_LimitDenied(t *testing.T) {
	env := newTestEnv(t)
	env.limits.decision = &domain.LimitDecision{
		Allowed:   false,
		Reason:    "недельный лимит занятий исчерпан",
		LimitType: domain.LimitTypeWeekly,
		Current:   3,
		Limit:     3,
	}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeWeekly, decision.Data["limit_type"])
	assert.Equal(t, 3, decision.Data["current"])
	assert.Equal(t, 3, decision.Data["limit"])
}

func TestCanBook_NoPolicyMeansOpenWindow(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = nil

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 10, decision.Data["remaining_spots"])
}

func TestCanBook_ClientWithoutMemberships(t *testing.T) {
	env := newTestEnv(t)
	env.members.err = memberClient.ErrClientNotFound
	env.limits.decision = &domain.LimitDecision{
		Allowed:   false,
		Reason:    "абонемент не покрывает это занятие",
		LimitType: domain.LimitTypeNotCovered,
	}

	decision, err := env.uc.CanBook(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	// проверка лимитов получает пустой снимок абонементов, а не ошибку
	require.NotNil(t, env.limits.seen)
	assert.Empty(t, env.limits.seen.Memberships)
	assert.Equal(t, int64(7), env.limits.seen.ClientID)
}

func TestBook_Success(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.confirmed = confirmedBookings(4)

	result, err := env.uc.Book(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.True(t, result.Decision.Allowed)
	assert.Equal(t, msgBookingCreated, result.Decision.Message)
	assert.Equal(t, 6, result.Decision.Data["remaining_spots"])
	assert.Equal(t, "Standard", result.Decision.Data["plan_name"])

	require.NotNil(t, result.Booking)
	assert.Equal(t, int64(555), result.Booking.ID)
	assert.Equal(t, domain.StatusConfirmed, result.Booking.Status)
	assert.Equal(t, domain.AttendancePending, result.Booking.AttendanceStatus)
	assert.Equal(t, 1, env.tx.calls)
}

func TestBook_DeniedDoesNotCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	env.limits.decision = &domain.LimitDecision{
		Allowed:   false,
		Reason:    "дневной лимит занятий исчерпан",
		LimitType: domain.LimitTypeDaily,
		Current:   1,
		Limit:     1,
	}

	result, err := env.uc.Book(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, result.Decision.Allowed)
	assert.Nil(t, result.Booking)
	assert.Nil(t, env.bookings.created)
}

func TestBook_ConcurrentDuplicateRace(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.createErr = storageBooking.ErrDuplicateBooking

	result, err := env.uc.Book(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, result.Decision.Allowed)
	assert.Equal(t, msgAlreadyBooked, result.Decision.Message)
	assert.Nil(t, result.Booking)
}

func TestBook_CreateFailure(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.createErr = errors.New("connection reset")

	_, err := env.uc.Book(context.Background(), 100, 7)

	assert.ErrorIs(t, err, ErrInternal)
}

func TestCheckLimits_Allowed(t *testing.T) {
	env := newTestEnv(t)
	env.policies.policy = &domain.ActivityPolicy{
		GymID:             1,
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}

	decision, err := env.uc.CheckLimits(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, "2025-06-16T18:00:00Z", decision.Data["opens_at"])
	assert.Equal(t, "2025-06-16T18:00:00Z", decision.Data["effective_opens_at"])
	assert.Equal(t, int64(50), decision.Data["plan_id"])
	assert.Equal(t, "Standard", decision.Data["plan_name"])
	assert.Equal(t, int64(1), decision.Data["rule_id"])
	assert.Equal(t, 10, decision.Data["booking_priority"])
}

func TestCheckLimits_Denied(t *testing.T) {
	env := newTestEnv(t)
	env.limits.decision = &domain.LimitDecision{
		Allowed:   false,
		Reason:    "месячный лимит занятий исчерпан",
		LimitType: domain.LimitTypeMonthly,
		Current:   12,
		Limit:     12,
	}

	decision, err := env.uc.CheckLimits(context.Background(), 100, 7)

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.LimitTypeMonthly, decision.Data["limit_type"])
	assert.Equal(t, 12, decision.Data["current"])
	assert.Equal(t, 12, decision.Data["limit"])
}
