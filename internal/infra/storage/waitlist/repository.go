package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var entryColumns = []string{
	"id",
	"gym_id",
	"session_id",
	"client_id",
	"status",
	"is_vip",
	"joined_at",
	"promoted_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий листа ожидания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новую запись в очередь со статусом waiting
// Нарушение частичной уникальности (session_id, client_id) по waiting
// возвращается как ErrDuplicateEntry
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns(
			"gym_id",
			"session_id",
			"client_id",
			"status",
			"is_vip",
		).
		Values(
			entry.GymID,
			entry.SessionID,
			entry.ClientID,
			domain.WaitlistWaiting,
			entry.IsVIP,
		).
		Suffix("RETURNING id, joined_at, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID,
		&entry.JoinedAt,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.Status = domain.WaitlistWaiting
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// GetByID получает запись листа ожидания по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := r.scanEntry(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// GetWaitingBySessionAndClient получает waiting-запись клиента на занятие
// Инвариант: такая запись не более одной
func (r *Repository) GetWaitingBySessionAndClient(ctx context.Context, sessionID, clientID int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"client_id":  clientID,
			"status":     domain.WaitlistWaiting,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWaitingBySessionAndClient - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := r.scanEntry(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetWaitingBySessionAndClient - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// CountWaiting подсчитывает размер очереди занятия
func (r *Repository) CountWaiting(ctx context.Context, sessionID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(id)").
		From("waitlist_entries").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"status":     domain.WaitlistWaiting,
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountWaiting - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountWaiting - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// CountWaitingNotAfter подсчитывает waiting-записи, вставшие в очередь не позже
// указанной (сама запись включается). VIP-записи, вставшие позже, позицию
// клиента не увеличивают - позиция пересчитывается при каждом запросе
func (r *Repository) CountWaitingNotAfter(ctx context.Context, entry *domain.WaitlistEntry) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(id)").
		From("waitlist_entries").
		Where(squirrel.Eq{
			"session_id": entry.SessionID,
			"status":     domain.WaitlistWaiting,
		}).
		Where(squirrel.Or{
			squirrel.Lt{"joined_at": entry.JoinedAt},
			squirrel.And{
				squirrel.Eq{"joined_at": entry.JoinedAt},
				squirrel.LtOrEq{"id": entry.ID},
			},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountWaitingNotAfter - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountWaitingNotAfter - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetNextWaiting получает голову очереди в детерминированном порядке продвижения:
// сначала VIP, затем по времени постановки, id - монотонный tie-break
// Внутри транзакции строка блокируется через FOR UPDATE
func (r *Repository) GetNextWaiting(ctx context.Context, sessionID int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"status":     domain.WaitlistWaiting,
		}).
		OrderBy("is_vip DESC", "joined_at ASC", "id ASC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetNextWaiting - build select query: %v", ErrBuildQuery, err)
	}

	entry, err := r.scanEntry(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetNextWaiting - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// MarkPromoted переводит запись из waiting в promoted с отметкой времени
// Переход необратим; запись должна быть в статусе waiting
func (r *Repository) MarkPromoted(ctx context.Context, id int64) error {
	return r.transition(ctx, id, domain.WaitlistPromoted, true, "MarkPromoted")
}

// MarkCancelled переводит запись из waiting в cancelled
func (r *Repository) MarkCancelled(ctx context.Context, id int64) error {
	return r.transition(ctx, id, domain.WaitlistCancelled, false, "MarkCancelled")
}

func (r *Repository) transition(ctx context.Context, id int64, status domain.WaitlistStatus, setPromotedAt bool, op string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("waitlist_entries").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.WaitlistWaiting,
		})

	if setPromotedAt {
		updateBuilder = updateBuilder.Set("promoted_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanEntry(row rowScanner) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.GymID,
		&entry.SessionID,
		&entry.ClientID,
		&entry.Status,
		&entry.IsVIP,
		&entry.JoinedAt,
		&entry.PromotedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}
