package update_gym_policy

import (
	"github.com/m04kA/GMS-ClassBookingService/internal/service/policies/models"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

// UpsertPolicyRequest HTTP request model
type UpsertPolicyRequest struct {
	ActivityID *int64 `json:"activityId,omitempty"`

	WindowMode           string `json:"windowMode"`
	WindowHoursBefore    int    `json:"windowHoursBefore,omitempty"`
	WindowOpenDaysBefore int    `json:"windowOpenDaysBefore,omitempty"`
	WindowOpenWeekday    int    `json:"windowOpenWeekday,omitempty"`
	WindowOpenTime       string `json:"windowOpenTime,omitempty"`

	WaitlistEnabled        bool   `json:"waitlistEnabled,omitempty"`
	WaitlistLimit          int    `json:"waitlistLimit,omitempty"`
	WaitlistMode           string `json:"waitlistMode,omitempty"`
	AutoPromoteCutoffHours int    `json:"autoPromoteCutoffHours,omitempty"`

	CancellationWindowHours int     `json:"cancellationWindowHours,omitempty"`
	PenaltyType             string  `json:"penaltyType,omitempty"`
	PenaltyFee              float64 `json:"penaltyFee,omitempty"`

	VIPPlanIDs  []int64 `json:"vipPlanIds,omitempty"`
	VIPGroupIDs []int64 `json:"vipGroupIds,omitempty"`
}

// ToServiceInput конвертирует HTTP request в модель сервиса
func (r *UpsertPolicyRequest) ToServiceInput() *models.UpsertPolicyInput {
	return &models.UpsertPolicyInput{
		ActivityID:              r.ActivityID,
		WindowMode:              r.WindowMode,
		WindowHoursBefore:       r.WindowHoursBefore,
		WindowOpenDaysBefore:    r.WindowOpenDaysBefore,
		WindowOpenWeekday:       r.WindowOpenWeekday,
		WindowOpenTime:          types.TimeString(r.WindowOpenTime),
		WaitlistEnabled:         r.WaitlistEnabled,
		WaitlistLimit:           r.WaitlistLimit,
		WaitlistMode:            r.WaitlistMode,
		AutoPromoteCutoffHours:  r.AutoPromoteCutoffHours,
		CancellationWindowHours: r.CancellationWindowHours,
		PenaltyType:             r.PenaltyType,
		PenaltyFee:              r.PenaltyFee,
		VIPPlanIDs:              r.VIPPlanIDs,
		VIPGroupIDs:             r.VIPGroupIDs,
	}
}
