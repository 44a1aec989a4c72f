// Package penalty append-only репозиторий санкций
// Записи никогда не изменяются и не удаляются - это аудиторский след
package penalty

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий санкций
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория санкций
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create записывает санкцию
func (r *Repository) Create(ctx context.Context, penalty *domain.Penalty) (*domain.Penalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("penalties").
		Columns(
			"gym_id",
			"client_id",
			"session_id",
			"booking_id",
			"type",
			"amount",
			"reason",
			"created_by",
		).
		Values(
			penalty.GymID,
			penalty.ClientID,
			penalty.SessionID,
			penalty.BookingID,
			penalty.Type,
			penalty.Amount,
			penalty.Reason,
			penalty.CreatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&penalty.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	penalty.CreatedAt = createdAt.Time

	return penalty, nil
}

// GetByClient получает санкции клиента в зале, сначала новые
// Используется админкой для просмотра истории нарушений
func (r *Repository) GetByClient(ctx context.Context, gymID, clientID int64) ([]*domain.Penalty, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"gym_id",
		"client_id",
		"session_id",
		"booking_id",
		"type",
		"amount",
		"reason",
		"created_by",
		"created_at",
	).
		From("penalties").
		Where(squirrel.Eq{
			"gym_id":    gymID,
			"client_id": clientID,
		}).
		OrderBy("created_at DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	penalties := make([]*domain.Penalty, 0)
	for rows.Next() {
		var p domain.Penalty
		var createdAt sql.NullTime

		err := rows.Scan(
			&p.ID,
			&p.GymID,
			&p.ClientID,
			&p.SessionID,
			&p.BookingID,
			&p.Type,
			&p.Amount,
			&p.Reason,
			&p.CreatedBy,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByClient - scan row: %v", ErrScanRow, err)
		}

		p.CreatedAt = createdAt.Time
		penalties = append(penalties, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByClient - rows error: %v", ErrScanRow, err)
	}

	return penalties, nil
}
