// Package policies администрирование политик записи зала
package policies

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storagePolicy "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	"github.com/m04kA/GMS-ClassBookingService/internal/service/policies/models"
)

// Service управление политиками записи
type Service struct {
	policies PolicyRepo
	logger   Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(policies PolicyRepo, logger Logger) *Service {
	return &Service{
		policies: policies,
		logger:   logger,
	}
}

// GetGymPolicies возвращает все политики зала, политика по умолчанию первой
func (s *Service) GetGymPolicies(ctx context.Context, gymID int64) ([]*domain.ActivityPolicy, error) {
	list, err := s.policies.GetAllByGym(ctx, gymID)
	if err != nil {
		return nil, fmt.Errorf("%w: GetGymPolicies: %v", ErrInternal, err)
	}
	return list, nil
}

// UpsertPolicy создает или обновляет политику зала либо активности
func (s *Service) UpsertPolicy(ctx context.Context, gymID int64, input *models.UpsertPolicyInput) (*domain.ActivityPolicy, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	policy := toDomain(gymID, input)

	existing, err := s.policies.GetByGymAndActivity(ctx, gymID, input.ActivityID)
	if err != nil {
		if !errors.Is(err, storagePolicy.ErrPolicyNotFound) {
			return nil, fmt.Errorf("%w: UpsertPolicy - lookup: %v", ErrInternal, err)
		}

		created, err := s.policies.Create(ctx, policy)
		if err != nil {
			return nil, fmt.Errorf("%w: UpsertPolicy - create: %v", ErrInternal, err)
		}

		s.logger.Info("UpsertPolicy: created policy=%d for gym=%d", created.ID, gymID)
		return created, nil
	}

	updated, err := s.policies.Update(ctx, existing.ID, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertPolicy - update: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertPolicy: updated policy=%d for gym=%d", updated.ID, gymID)
	return updated, nil
}

func validate(input *models.UpsertPolicyInput) error {
	switch domain.WindowMode(input.WindowMode) {
	case domain.WindowOpen:
	case domain.WindowRelativeToStart:
		if input.WindowHoursBefore <= 0 {
			return fmt.Errorf("%w: window_hours_before must be positive", ErrValidation)
		}
	case domain.WindowFixedTime:
		if input.WindowOpenDaysBefore < 0 {
			return fmt.Errorf("%w: window_open_days_before must not be negative", ErrValidation)
		}
		if err := input.WindowOpenTime.Validate(); err != nil {
			return fmt.Errorf("%w: window_open_time: %v", ErrValidation, err)
		}
	case domain.WindowWeeklyFixed:
		if input.WindowOpenWeekday < 0 || input.WindowOpenWeekday > 6 {
			return fmt.Errorf("%w: window_open_weekday must be in 0..6", ErrValidation)
		}
		if err := input.WindowOpenTime.Validate(); err != nil {
			return fmt.Errorf("%w: window_open_time: %v", ErrValidation, err)
		}
	default:
		return fmt.Errorf("%w: unknown window_mode %q", ErrValidation, input.WindowMode)
	}

	if input.WaitlistEnabled {
		switch domain.WaitlistMode(input.WaitlistMode) {
		case domain.WaitlistAutoPromote, domain.WaitlistManual:
		default:
			return fmt.Errorf("%w: unknown waitlist_mode %q", ErrValidation, input.WaitlistMode)
		}
		if input.WaitlistLimit < 0 {
			return fmt.Errorf("%w: waitlist_limit must not be negative", ErrValidation)
		}
		if input.AutoPromoteCutoffHours < 0 {
			return fmt.Errorf("%w: auto_promote_cutoff_hours must not be negative", ErrValidation)
		}
	}

	if input.CancellationWindowHours < 0 {
		return fmt.Errorf("%w: cancellation_window_hours must not be negative", ErrValidation)
	}

	if input.PenaltyType != "" {
		switch domain.PenaltyType(input.PenaltyType) {
		case domain.PenaltyStrike, domain.PenaltyFee, domain.PenaltyForfeit:
		default:
			return fmt.Errorf("%w: unknown penalty_type %q", ErrValidation, input.PenaltyType)
		}
	}
	if input.PenaltyFee < 0 {
		return fmt.Errorf("%w: penalty_fee must not be negative", ErrValidation)
	}

	return nil
}

func toDomain(gymID int64, input *models.UpsertPolicyInput) *domain.ActivityPolicy {
	return &domain.ActivityPolicy{
		GymID:                   gymID,
		ActivityID:              input.ActivityID,
		WindowMode:              domain.WindowMode(input.WindowMode),
		WindowHoursBefore:       input.WindowHoursBefore,
		WindowOpenDaysBefore:    input.WindowOpenDaysBefore,
		WindowOpenWeekday:       input.WindowOpenWeekday,
		WindowOpenTime:          input.WindowOpenTime,
		WaitlistEnabled:         input.WaitlistEnabled,
		WaitlistLimit:           input.WaitlistLimit,
		WaitlistMode:            domain.WaitlistMode(input.WaitlistMode),
		AutoPromoteCutoffHours:  input.AutoPromoteCutoffHours,
		CancellationWindowHours: input.CancellationWindowHours,
		PenaltyType:             domain.PenaltyType(input.PenaltyType),
		PenaltyFee:              input.PenaltyFee,
		VIPPlanIDs:              input.VIPPlanIDs,
		VIPGroupIDs:             input.VIPGroupIDs,
	}
}
