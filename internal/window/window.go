// Package window расчет момента открытия записи на занятие
//
// Все вычисления выполняются в таймзоне зала: сдвиги по дням делаются
// календарно (AddDate), поэтому переходы на летнее/зимнее время не ломают
// время открытия
package window

import (
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// OpensAt возвращает момент открытия записи на занятие по политике
// nil означает, что запись открыта всегда (режим OPEN)
func OpensAt(session *domain.Session, policy *domain.ActivityPolicy) *time.Time {
	loc := session.Location()
	start := session.StartTime.In(loc)

	switch policy.WindowMode {
	case domain.WindowRelativeToStart:
		opens := start.Add(-time.Duration(policy.WindowHoursBefore) * time.Hour)
		return &opens

	case domain.WindowFixedTime:
		// за N дней до занятия в фиксированное локальное время
		day := start.AddDate(0, 0, -policy.WindowOpenDaysBefore)
		opens, err := policy.WindowOpenTime.At(day, loc)
		if err != nil {
			return nil
		}
		return &opens

	case domain.WindowWeeklyFixed:
		// фиксированный день ISO-недели занятия (неделя с понедельника)
		offset := (int(start.Weekday()) + 6) % 7
		monday := start.AddDate(0, 0, -offset)
		openDay := monday.AddDate(0, 0, (policy.WindowOpenWeekday+6)%7)
		opens, err := policy.WindowOpenTime.At(openDay, loc)
		if err != nil {
			return nil
		}
		// день открытия после занятия означает прошлую неделю
		if opens.After(start) {
			opens = opens.AddDate(0, 0, -7)
		}
		return &opens

	default: // OPEN
		return nil
	}
}

// EffectiveOpensAt момент открытия с учетом привилегии раннего доступа
// Ранний доступ сдвигает окно только назад и никогда не позже общего открытия
func EffectiveOpensAt(session *domain.Session, policy *domain.ActivityPolicy, earlyAccessHours int) *time.Time {
	opens := OpensAt(session, policy)
	if opens == nil || earlyAccessHours <= 0 {
		return opens
	}

	effective := opens.Add(-time.Duration(earlyAccessHours) * time.Hour)
	return &effective
}

// IsOpen открыта ли запись на занятие в момент now
func IsOpen(session *domain.Session, policy *domain.ActivityPolicy, earlyAccessHours int, now time.Time) bool {
	opens := EffectiveOpensAt(session, policy, earlyAccessHours)
	return opens == nil || !now.Before(*opens)
}
