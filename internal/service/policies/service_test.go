package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	storagePolicy "github.com/m04kA/GMS-ClassBookingService/internal/infra/storage/policy"
	"github.com/m04kA/GMS-ClassBookingService/internal/service/policies/models"
	"github.com/m04kA/GMS-ClassBookingService/pkg/ptr"
	"github.com/m04kA/GMS-ClassBookingService/pkg/types"
)

type fakePolicyRepo struct {
	existing *domain.ActivityPolicy
	created  *domain.ActivityPolicy
	updated  *domain.ActivityPolicy
	updateID int64
}

func (f *fakePolicyRepo) GetByGymAndActivity(_ context.Context, _ int64, _ *int64) (*domain.ActivityPolicy, error) {
	if f.existing == nil {
		return nil, storagePolicy.ErrPolicyNotFound
	}
	return f.existing, nil
}

func (f *fakePolicyRepo) GetAllByGym(_ context.Context, _ int64) ([]*domain.ActivityPolicy, error) {
	if f.existing == nil {
		return []*domain.ActivityPolicy{}, nil
	}
	return []*domain.ActivityPolicy{f.existing}, nil
}

func (f *fakePolicyRepo) Create(_ context.Context, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error) {
	policy.ID = 11
	f.created = policy
	return policy, nil
}

func (f *fakePolicyRepo) Update(_ context.Context, id int64, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error) {
	policy.ID = id
	f.updateID = id
	f.updated = policy
	return policy, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func validInput() *models.UpsertPolicyInput {
	return &models.UpsertPolicyInput{
		WindowMode:              string(domain.WindowRelativeToStart),
		WindowHoursBefore:       48,
		WaitlistEnabled:         true,
		WaitlistMode:            string(domain.WaitlistAutoPromote),
		WaitlistLimit:           10,
		CancellationWindowHours: 2,
		PenaltyType:             string(domain.PenaltyForfeit),
	}
}

func TestUpsertPolicy_CreatesWhenMissing(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, nopLogger{})

	policy, err := svc.UpsertPolicy(context.Background(), 1, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(11), policy.ID)
	assert.Equal(t, int64(1), policy.GymID)
	assert.Equal(t, domain.WindowRelativeToStart, policy.WindowMode)
	require.NotNil(t, repo.created)
	assert.Nil(t, repo.updated)
}

func TestUpsertPolicy_UpdatesExisting(t *testing.T) {
	repo := &fakePolicyRepo{existing: &domain.ActivityPolicy{ID: 7, GymID: 1, WindowMode: domain.WindowOpen}}
	svc := NewService(repo, nopLogger{})

	input := validInput()
	input.WindowMode = string(domain.WindowOpen)

	policy, err := svc.UpsertPolicy(context.Background(), 1, input)

	require.NoError(t, err)
	assert.Equal(t, int64(7), policy.ID)
	assert.Equal(t, int64(7), repo.updateID)
	assert.Nil(t, repo.created)
}

func TestUpsertPolicy_ActivityScoped(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, nopLogger{})

	input := validInput()
	input.ActivityID = ptr.Ptr(int64(10))

	_, err := svc.UpsertPolicy(context.Background(), 1, input)

	require.NoError(t, err)
	require.NotNil(t, repo.created.ActivityID)
	assert.Equal(t, int64(10), *repo.created.ActivityID)
}

func TestUpsertPolicy_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(input *models.UpsertPolicyInput)
	}{
		{
			name:   "unknown window mode",
			mutate: func(i *models.UpsertPolicyInput) { i.WindowMode = "sometimes" },
		},
		{
			name: "relative mode without hours",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WindowMode = string(domain.WindowRelativeToStart)
				i.WindowHoursBefore = 0
			},
		},
		{
			name: "fixed time with negative days",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WindowMode = string(domain.WindowFixedTime)
				i.WindowOpenDaysBefore = -1
				i.WindowOpenTime = types.TimeString("09:00")
			},
		},
		{
			name: "fixed time with broken time",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WindowMode = string(domain.WindowFixedTime)
				i.WindowOpenTime = types.TimeString("25:00")
			},
		},
		{
			name: "weekly fixed with weekday out of range",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WindowMode = string(domain.WindowWeeklyFixed)
				i.WindowOpenWeekday = 7
				i.WindowOpenTime = types.TimeString("09:00")
			},
		},
		{
			name: "waitlist enabled with unknown mode",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WaitlistMode = "fifo"
			},
		},
		{
			name: "negative waitlist limit",
			mutate: func(i *models.UpsertPolicyInput) {
				i.WaitlistLimit = -1
			},
		},
		{
			name: "negative cancellation window",
			mutate: func(i *models.UpsertPolicyInput) {
				i.CancellationWindowHours = -2
			},
		},
		{
			name: "unknown penalty type",
			mutate: func(i *models.UpsertPolicyInput) {
				i.PenaltyType = "ban"
			},
		},
		{
			name: "negative penalty fee",
			mutate: func(i *models.UpsertPolicyInput) {
				i.PenaltyType = string(domain.PenaltyFee)
				i.PenaltyFee = -100
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePolicyRepo{}
			svc := NewService(repo, nopLogger{})

			input := validInput()
			tt.mutate(input)

			_, err := svc.UpsertPolicy(context.Background(), 1, input)

			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, repo.created)
		})
	}
}

func TestUpsertPolicy_WeekdayValidation(t *testing.T) {
	// воскресенье кодируется нулем, как в time.Weekday
	repo := &fakePolicyRepo{}
	svc := NewService(repo, nopLogger{})

	input := validInput()
	input.WindowMode = string(domain.WindowWeeklyFixed)
	input.WindowOpenWeekday = 0
	input.WindowOpenTime = types.TimeString("12:00")

	_, err := svc.UpsertPolicy(context.Background(), 1, input)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.created.WindowOpenWeekday)
}

func TestGetGymPolicies(t *testing.T) {
	repo := &fakePolicyRepo{existing: &domain.ActivityPolicy{ID: 7, GymID: 1, WindowMode: domain.WindowOpen}}
	svc := NewService(repo, nopLogger{})

	list, err := svc.GetGymPolicies(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
}
