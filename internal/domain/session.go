package domain

import "time"

// Session represents a scheduled class session that clients can book into.
// The engine reads sessions, it never mutates them - occupancy is always
// derived from booking rows, not stored on the session.
type Session struct {
	ID         int64
	GymID      int64
	ActivityID int64
	CategoryID *int64 // категория активности (nil - без категории)
	StartTime  time.Time
	EndTime    time.Time

	// MaxCapacity переопределение вместимости на уровне занятия
	// nil - используется вместимость активности по умолчанию
	MaxCapacity *int

	// Denormalized activity/gym data for capacity resolution and messages
	ActivityName            string
	ActivityDefaultCapacity int
	GymTimezone             string
}

// EffectiveCapacity returns the session-level capacity override if set,
// otherwise the activity default.
func (s *Session) EffectiveCapacity() int {
	if s.MaxCapacity != nil {
		return *s.MaxCapacity
	}
	return s.ActivityDefaultCapacity
}

// HasStarted returns true if the session start time is not in the future
func (s *Session) HasStarted(now time.Time) bool {
	return !s.StartTime.After(now)
}

// Location returns the gym's timezone
// Все календарные вычисления (день, неделя, месяц) ведутся в ней,
// иначе на границе суток окна лимитов сдвигаются на день
func (s *Session) Location() *time.Location {
	loc, err := time.LoadLocation(s.GymTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalDate returns the session start date truncated to midnight in the gym's timezone
func (s *Session) LocalDate() time.Time {
	local := s.StartTime.In(s.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
