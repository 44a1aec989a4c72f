package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/psqlbuilder"
)

// Repository read-only репозиторий занятий
// Движок занятия не изменяет - занятость всегда считается по строкам бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория занятий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает занятие вместе с данными активности и тайм-зоной зала
// Вместимость активности по умолчанию используется, если на занятии нет переопределения
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.gym_id",
		"s.activity_id",
		"a.category_id",
		"s.start_time",
		"s.end_time",
		"s.max_capacity",
		"a.name",
		"a.default_capacity",
		"g.timezone",
	).
		From("sessions s").
		Join("activities a ON a.id = s.activity_id").
		Join("gyms g ON g.id = s.gym_id").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var session domain.Session

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&session.ID,
		&session.GymID,
		&session.ActivityID,
		&session.CategoryID,
		&session.StartTime,
		&session.EndTime,
		&session.MaxCapacity,
		&session.ActivityName,
		&session.ActivityDefaultCapacity,
		&session.GymTimezone,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan session: %v", ErrScanRow, err)
	}

	return &session, nil
}
