package get_gym_policies

import "github.com/m04kA/GMS-ClassBookingService/internal/domain"

// PolicyResponse HTTP response model
type PolicyResponse struct {
	ID         int64  `json:"id"`
	GymID      int64  `json:"gymId"`
	ActivityID *int64 `json:"activityId,omitempty"`

	WindowMode           string `json:"windowMode"`
	WindowHoursBefore    int    `json:"windowHoursBefore,omitempty"`
	WindowOpenDaysBefore int    `json:"windowOpenDaysBefore,omitempty"`
	WindowOpenWeekday    int    `json:"windowOpenWeekday,omitempty"`
	WindowOpenTime       string `json:"windowOpenTime,omitempty"`

	WaitlistEnabled        bool   `json:"waitlistEnabled"`
	WaitlistLimit          int    `json:"waitlistLimit,omitempty"`
	WaitlistMode           string `json:"waitlistMode,omitempty"`
	AutoPromoteCutoffHours int    `json:"autoPromoteCutoffHours,omitempty"`

	CancellationWindowHours int     `json:"cancellationWindowHours"`
	PenaltyType             string  `json:"penaltyType,omitempty"`
	PenaltyFee              float64 `json:"penaltyFee,omitempty"`

	VIPPlanIDs  []int64 `json:"vipPlanIds,omitempty"`
	VIPGroupIDs []int64 `json:"vipGroupIds,omitempty"`
}

// ToResponse конвертирует доменную модель в HTTP response
func ToResponse(p *domain.ActivityPolicy) *PolicyResponse {
	return &PolicyResponse{
		ID:                      p.ID,
		GymID:                   p.GymID,
		ActivityID:              p.ActivityID,
		WindowMode:              string(p.WindowMode),
		WindowHoursBefore:       p.WindowHoursBefore,
		WindowOpenDaysBefore:    p.WindowOpenDaysBefore,
		WindowOpenWeekday:       p.WindowOpenWeekday,
		WindowOpenTime:          p.WindowOpenTime.String(),
		WaitlistEnabled:         p.WaitlistEnabled,
		WaitlistLimit:           p.WaitlistLimit,
		WaitlistMode:            string(p.WaitlistMode),
		AutoPromoteCutoffHours:  p.AutoPromoteCutoffHours,
		CancellationWindowHours: p.CancellationWindowHours,
		PenaltyType:             string(p.PenaltyType),
		PenaltyFee:              p.PenaltyFee,
		VIPPlanIDs:              p.VIPPlanIDs,
		VIPGroupIDs:             p.VIPGroupIDs,
	}
}
