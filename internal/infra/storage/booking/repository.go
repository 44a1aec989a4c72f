package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
	"github.com/m04kA/GMS-ClassBookingService/pkg/dbmetrics"
	"github.com/m04kA/GMS-ClassBookingService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки Postgres при нарушении уникального индекса
const uniqueViolation = "23505"

var bookingColumns = []string{
	"id",
	"gym_id",
	"session_id",
	"client_id",
	"status",
	"attendance_status",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями занятий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
// Нарушение частичного уникального индекса (session_id, client_id)
// по неотмененным бронированиям возвращается как ErrDuplicateBooking
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"gym_id",
			"session_id",
			"client_id",
			"status",
			"attendance_status",
		).
		Values(
			booking.GymID,
			booking.SessionID,
			booking.ClientID,
			booking.Status,
			booking.AttendanceStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveBySessionAndClient получает активное (pending/confirmed) бронирование
// клиента на занятие. Инвариант: такое бронирование не более одного
func (r *Repository) GetActiveBySessionAndClient(ctx context.Context, sessionID, clientID int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"client_id":  clientID,
			"status":     domain.ActiveStatuses,
		}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySessionAndClient - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveBySessionAndClient - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetConfirmedBySession получает все подтвержденные бронирования занятия
// Внутри транзакции выборка блокируется через FOR UPDATE - это критическая
// секция проверки вместимости перед вставкой (защита от перебронирования)
func (r *Repository) GetConfirmedBySession(ctx context.Context, sessionID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"status":     domain.StatusConfirmed,
		}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedBySession - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedBySession - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// CountByClientWithFilter подсчитывает бронирования клиента за окно [From, To)
// по времени начала занятия. Используется проверками лимитов абонемента:
// дневные/недельные/месячные окна, бонусные пакеты, запрет дней подряд
func (r *Repository) CountByClientWithFilter(ctx context.Context, filter domain.ClientUsageFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COUNT(b.id)").
		From("bookings b").
		Join("sessions s ON s.id = b.session_id").
		Where(squirrel.Eq{
			"b.gym_id":    filter.GymID,
			"b.client_id": filter.ClientID,
		}).
		Where(squirrel.GtOrEq{"s.start_time": filter.From}).
		Where(squirrel.Lt{"s.start_time": filter.To})

	if filter.ActivityID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"s.activity_id": *filter.ActivityID})
	}
	if filter.CategoryID != nil {
		selectBuilder = selectBuilder.
			Join("activities a ON a.id = s.activity_id").
			Where(squirrel.Eq{"a.category_id": *filter.CategoryID})
	}

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = domain.ActiveStatuses
	}
	selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": statuses})

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByClientWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByClientWithFilter - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// CountFutureConfirmed подсчитывает будущие подтвержденные бронирования клиента
// Используется лимитом максимума одновременных бронирований
func (r *Repository) CountFutureConfirmed(ctx context.Context, gymID, clientID int64, after time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(b.id)").
		From("bookings b").
		Join("sessions s ON s.id = b.session_id").
		Where(squirrel.Eq{
			"b.gym_id":    gymID,
			"b.client_id": clientID,
			"b.status":    domain.StatusConfirmed,
		}).
		Where(squirrel.Gt{"s.start_time": after}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountFutureConfirmed - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountFutureConfirmed - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetByClientID получает бронирования клиента, сначала новые
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(qualify("b", bookingColumns)...).
		From("bookings b").
		Join("sessions s ON s.id = b.session_id").
		Where(squirrel.Eq{"b.client_id": clientID}).
		OrderBy("s.start_time DESC, b.id DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// Cancel переводит бронирование в cancelled с указанием причины
// и подстатуса посещаемости (late_cancel при санкции, иначе pending)
// Фильтр по статусу делает переход однократным: конкурентная отмена
// получает ноль затронутых строк и ErrAlreadyCancelled
func (r *Repository) Cancel(ctx context.Context, id int64, attendance domain.AttendanceStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("attendance_status", attendance).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAlreadyCancelled
	}

	return nil
}

// SetAttendance обновляет подстатус посещаемости (attended / no_show)
func (r *Repository) SetAttendance(ctx context.Context, id int64, attendance domain.AttendanceStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("attendance_status", attendance).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetAttendance - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetAttendance - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetAttendance - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.GymID,
		&booking.SessionID,
		&booking.ClientID,
		&booking.Status,
		&booking.AttendanceStatus,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func qualify(alias string, columns []string) []string {
	qualified := make([]string, len(columns))
	for i, c := range columns {
		qualified[i] = alias + "." + c
	}
	return qualified
}
