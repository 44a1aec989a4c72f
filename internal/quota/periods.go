package quota

import "time"

// Календарные окна лимитов. Все границы считаются в тайм-зоне зала,
// иначе занятие в 00:30 попадает не в те сутки

// dayWindow возвращает [начало суток, начало следующих суток)
func dayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

// weekWindow возвращает ISO-неделю [понедельник 00:00, следующий понедельник 00:00)
func weekWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	// time.Weekday: воскресенье = 0, ISO-неделя начинается с понедельника
	offset := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}

// monthWindow возвращает календарный месяц [первое число 00:00, первое число
// следующего месяца 00:00). time.Date нормализует месяц 13 в январь
// следующего года, поэтому декабрьский переход корректен
func monthWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	to := time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc)
	return from, to
}

// addMonths сдвигает дату на months месяцев с корректной обработкой
// последнего дня месяца: 31 января + 1 месяц = 28/29 февраля, а не 2/3 марта
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// cycleWindow возвращает текущий платежный цикл абонемента:
// границы идут от даты старта абонемента с шагом cycleMonths,
// окно - последний цикл, начавшийся не позже today
func cycleWindow(membershipStart time.Time, cycleMonths int, today time.Time, loc *time.Location) (time.Time, time.Time) {
	if cycleMonths <= 0 {
		cycleMonths = 1
	}

	start := membershipStart.In(loc)
	cycles := 0
	for {
		next := addMonths(start, (cycles+1)*cycleMonths)
		if next.After(today) {
			break
		}
		cycles++
	}

	return addMonths(start, cycles*cycleMonths), addMonths(start, (cycles+1)*cycleMonths)
}
