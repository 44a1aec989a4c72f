package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/psqlbuilder"
)

var policyColumns = []string{
	"id",
	"gym_id",
	"activity_id",
	"window_mode",
	"window_hours_before",
	"window_open_days_before",
	"window_open_weekday",
	"window_open_time",
	"waitlist_enabled",
	"waitlist_limit",
	"waitlist_mode",
	"auto_promote_cutoff_hours",
	"cancellation_window_hours",
	"penalty_type",
	"penalty_fee",
	"vip_plan_ids",
	"vip_group_ids",
	"created_at",
	"updated_at",
}

// Repository репозиторий политик бронирования занятий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByGymAndActivity получает политику для зала и активности
// activityID == nil означает политику зала по умолчанию
func (r *Repository) GetByGymAndActivity(ctx context.Context, gymID int64, activityID *int64) (*domain.ActivityPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(policyColumns...).
		From("activity_policies").
		Where(squirrel.Eq{"gym_id": gymID})

	if activityID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"activity_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"activity_id": *activityID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGymAndActivity - build select query: %v", ErrBuildQuery, err)
	}

	policy, err := r.scanPolicy(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGymAndActivity - scan policy: %v", ErrScanRow, err)
	}

	return policy, nil
}

// GetForActivity получает политику с учетом иерархии приоритетов:
// 1. Политика конкретной активности (gym_id, activity_id)
// 2. Политика зала по умолчанию (gym_id, NULL)
//
// Если политика не найдена ни на одном уровне, возвращает ErrPolicyNotFound -
// вызывающий код в этом случае работает по встроенным дефолтам
func (r *Repository) GetForActivity(ctx context.Context, gymID, activityID int64) (*domain.ActivityPolicy, error) {
	policy, err := r.GetByGymAndActivity(ctx, gymID, &activityID)
	if err == nil {
		return policy, nil
	}
	if err != ErrPolicyNotFound {
		return nil, fmt.Errorf("%w: GetForActivity - activity level: %v", ErrExecQuery, err)
	}

	policy, err = r.GetByGymAndActivity(ctx, gymID, nil)
	if err == nil {
		return policy, nil
	}
	if err != ErrPolicyNotFound {
		return nil, fmt.Errorf("%w: GetForActivity - gym default level: %v", ErrExecQuery, err)
	}

	return nil, ErrPolicyNotFound
}

// GetAllByGym получает все политики зала, политика по умолчанию первой
func (r *Repository) GetAllByGym(ctx context.Context, gymID int64) ([]*domain.ActivityPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("activity_policies").
		Where(squirrel.Eq{"gym_id": gymID}).
		OrderBy("activity_id ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByGym - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByGym - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	policies := make([]*domain.ActivityPolicy, 0)
	for rows.Next() {
		policy, err := r.scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByGym - scan row: %v", ErrScanRow, err)
		}
		policies = append(policies, policy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByGym - rows error: %v", ErrScanRow, err)
	}

	return policies, nil
}

// Create создает новую политику
func (r *Repository) Create(ctx context.Context, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("activity_policies").
		Columns(
			"gym_id",
			"activity_id",
			"window_mode",
			"window_hours_before",
			"window_open_days_before",
			"window_open_weekday",
			"window_open_time",
			"waitlist_enabled",
			"waitlist_limit",
			"waitlist_mode",
			"auto_promote_cutoff_hours",
			"cancellation_window_hours",
			"penalty_type",
			"penalty_fee",
			"vip_plan_ids",
			"vip_group_ids",
		).
		Values(
			policy.GymID,
			policy.ActivityID,
			policy.WindowMode,
			policy.WindowHoursBefore,
			policy.WindowOpenDaysBefore,
			policy.WindowOpenWeekday,
			policy.WindowOpenTime,
			policy.WaitlistEnabled,
			policy.WaitlistLimit,
			policy.WaitlistMode,
			policy.AutoPromoteCutoffHours,
			policy.CancellationWindowHours,
			policy.PenaltyType,
			policy.PenaltyFee,
			pq.Array(policy.VIPPlanIDs),
			pq.Array(policy.VIPGroupIDs),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return policy, nil
}

// Update обновляет политику по ID
func (r *Repository) Update(ctx context.Context, id int64, policy *domain.ActivityPolicy) (*domain.ActivityPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("activity_policies").
		Set("window_mode", policy.WindowMode).
		Set("window_hours_before", policy.WindowHoursBefore).
		Set("window_open_days_before", policy.WindowOpenDaysBefore).
		Set("window_open_weekday", policy.WindowOpenWeekday).
		Set("window_open_time", policy.WindowOpenTime).
		Set("waitlist_enabled", policy.WaitlistEnabled).
		Set("waitlist_limit", policy.WaitlistLimit).
		Set("waitlist_mode", policy.WaitlistMode).
		Set("auto_promote_cutoff_hours", policy.AutoPromoteCutoffHours).
		Set("cancellation_window_hours", policy.CancellationWindowHours).
		Set("penalty_type", policy.PenaltyType).
		Set("penalty_fee", policy.PenaltyFee).
		Set("vip_plan_ids", pq.Array(policy.VIPPlanIDs)).
		Set("vip_group_ids", pq.Array(policy.VIPGroupIDs)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	policy.ID = id
	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return policy, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanPolicy(row rowScanner) (*domain.ActivityPolicy, error) {
	var policy domain.ActivityPolicy
	var createdAt, updatedAt sql.NullTime
	var vipPlans, vipGroups pq.Int64Array

	err := row.Scan(
		&policy.ID,
		&policy.GymID,
		&policy.ActivityID,
		&policy.WindowMode,
		&policy.WindowHoursBefore,
		&policy.WindowOpenDaysBefore,
		&policy.WindowOpenWeekday,
		&policy.WindowOpenTime,
		&policy.WaitlistEnabled,
		&policy.WaitlistLimit,
		&policy.WaitlistMode,
		&policy.AutoPromoteCutoffHours,
		&policy.CancellationWindowHours,
		&policy.PenaltyType,
		&policy.PenaltyFee,
		&vipPlans,
		&vipGroups,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	policy.VIPPlanIDs = vipPlans
	policy.VIPGroupIDs = vipGroups
	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return &policy, nil
}
