package domain

// Default policy values applied when no activity policy is configured
const (
	DefaultCancellationWindowHours = 2
	DefaultAutoPromoteCutoffHours  = 1
)

// DefaultPenaltyType санкция по умолчанию при отсутствии политики
const DefaultPenaltyType = PenaltyForfeit

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
