package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

// среда 18 июня 2025, 18:00
func sessionAt(start time.Time, tz string) *domain.Session {
	return &domain.Session{
		ID:          100,
		GymID:       1,
		ActivityID:  10,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		GymTimezone: tz,
	}
}

func TestOpensAt_OpenMode(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{WindowMode: domain.WindowOpen}

	assert.Nil(t, OpensAt(session, policy))
}

func TestOpensAt_RelativeToStart(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC), opens.UTC())
}

func TestOpensAt_FixedTime(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:           domain.WindowFixedTime,
		WindowOpenDaysBefore: 2,
		WindowOpenTime:       types.TimeString("09:00"),
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC), opens.UTC())
}

func TestOpensAt_FixedTimeAcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// переход на летнее время в США - 9 марта 2025
	session := sessionAt(time.Date(2025, 3, 10, 18, 0, 0, 0, ny), "America/New_York")
	policy := &domain.ActivityPolicy{
		WindowMode:           domain.WindowFixedTime,
		WindowOpenDaysBefore: 2,
		WindowOpenTime:       types.TimeString("09:00"),
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	// стеночное время открытия 09:00 сохраняется, несмотря на сдвиг UTC-смещения
	assert.Equal(t, time.Date(2025, 3, 8, 9, 0, 0, 0, ny), *opens)
}

func TestOpensAt_WeeklyFixed(t *testing.T) {
	// среда 18 июня, запись открывается в понедельник недели занятия в 08:00
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowWeeklyFixed,
		WindowOpenWeekday: int(time.Monday),
		WindowOpenTime:    types.TimeString("08:00"),
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC), opens.UTC())
}

func TestOpensAt_WeeklyFixedOpenDayAfterSession(t *testing.T) {
	// занятие в понедельник 07:00, открытие в понедельник 08:00 -
	// окно сдвигается на прошлую неделю
	session := sessionAt(time.Date(2025, 6, 16, 7, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowWeeklyFixed,
		WindowOpenWeekday: int(time.Monday),
		WindowOpenTime:    types.TimeString("08:00"),
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC), opens.UTC())
}

func TestOpensAt_WeeklyFixedSundayOpening(t *testing.T) {
	// воскресенье считается последним днем ISO-недели: для занятия в среду
	// воскресное открытие было на прошлой неделе
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowWeeklyFixed,
		WindowOpenWeekday: int(time.Sunday),
		WindowOpenTime:    types.TimeString("12:00"),
	}

	opens := OpensAt(session, policy)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), opens.UTC())
}

func TestEffectiveOpensAt_EarlyAccess(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}

	opens := EffectiveOpensAt(session, policy, 24)
	require.NotNil(t, opens)
	assert.Equal(t, time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC), opens.UTC())
}

func TestEffectiveOpensAt_NoEarlyAccessKeepsGeneralWindow(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}

	general := OpensAt(session, policy)
	effective := EffectiveOpensAt(session, policy, 0)
	assert.Equal(t, *general, *effective)
}

func TestEffectiveOpensAt_OpenModeIgnoresEarlyAccess(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{WindowMode: domain.WindowOpen}

	assert.Nil(t, EffectiveOpensAt(session, policy, 48))
}

func TestIsOpen(t *testing.T) {
	session := sessionAt(time.Date(2025, 6, 18, 18, 0, 0, 0, time.UTC), "UTC")
	policy := &domain.ActivityPolicy{
		WindowMode:        domain.WindowRelativeToStart,
		WindowHoursBefore: 48,
	}

	opens := time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC)

	assert.False(t, IsOpen(session, policy, 0, opens.Add(-time.Second)))
	// ровно в момент открытия запись уже доступна
	assert.True(t, IsOpen(session, policy, 0, opens))
	assert.True(t, IsOpen(session, policy, 0, opens.Add(time.Hour)))
}
