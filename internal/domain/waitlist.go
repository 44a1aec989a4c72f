package domain

import "time"

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistPromoted  WaitlistStatus = "promoted"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

// WaitlistEntry represents a client queued for a full session.
// Promotion order is `is_vip DESC, joined_at ASC, id ASC` - the bigserial id
// is the monotonic tie-break, wall-clock joined_at alone is not enough under
// concurrent joins.
type WaitlistEntry struct {
	ID        int64
	GymID     int64
	SessionID int64
	ClientID  int64
	Status    WaitlistStatus
	IsVIP     bool
	JoinedAt  time.Time

	// PromotedAt заполняется при переходе в promoted (переход необратим)
	PromotedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsWaiting returns true if the entry is still in the queue
func (e *WaitlistEntry) IsWaiting() bool {
	return e.Status == WaitlistWaiting
}
