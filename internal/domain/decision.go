package domain

// Decision единый результат операций движка бронирования
// Бизнес-отказы (лимит исчерпан, занятие заполнено, окно не открыто)
// возвращаются как Decision с Allowed=false, а не как ошибки -
// ошибки остаются за not-found и инфраструктурными сбоями
type Decision struct {
	Allowed bool
	Message string
	// Data машиночитаемые поля для UI (limit_type, opens_at, position, ...)
	Data map[string]interface{}
}

// Allow creates a positive decision
func Allow(message string, data map[string]interface{}) *Decision {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Decision{Allowed: true, Message: message, Data: data}
}

// Deny creates a negative decision
func Deny(message string, data map[string]interface{}) *Decision {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Decision{Allowed: false, Message: message, Data: data}
}

// Типы лимитов в Data["limit_type"], по ним UI объясняет отказ
const (
	LimitTypeNotCovered     = "not_covered"
	LimitTypeDaily          = "daily"
	LimitTypeWeekly         = "weekly"
	LimitTypeMonthly        = "monthly"
	LimitTypeConsecutiveDay = "no_consecutive_days"
	LimitTypeSimultaneous   = "simultaneous"
	LimitTypeAdvanceDays    = "advance_days"
	LimitTypeTimeWindow     = "time_window"
	LimitTypeQuantity       = "quantity"
)

// LimitDecision результат проверки лимитов абонемента
type LimitDecision struct {
	Allowed bool
	Reason  string
	// LimitType заполнен при отказе
	LimitType string
	// Current/Limit текущее потребление и порог нарушенного лимита
	Current int
	Limit   int

	// Выигравшее правило (для наблюдаемости при Allowed=true)
	RuleID   int64
	PlanID   int64
	PlanName string
	Priority int
}
