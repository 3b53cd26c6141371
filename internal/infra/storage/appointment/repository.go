package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

const table = "appointments"

var columns = []string{
	"id",
	"customer_id",
	"staff_id",
	"service_id",
	"start_time",
	"end_time",
	"status",
	"service_name",
	"service_price",
	"payment_method",
	"payment_status",
	"transaction_id",
	"refund_amount",
	"refund_reference",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CancelParams поля, которые записываются при отмене
type CancelParams struct {
	Reason          *string
	RefundAmount    *decimal.Decimal // nil - не менять
	PaymentStatus   *domain.PaymentStatus
	RefundReference *string
	CancelledBy     int64
	CancelledAt     time.Time
}

// Create создает запись.
// Нарушение exclusion-ограничения (два пересекающихся интервала у мастера)
// возвращается как ErrStaffConflict.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"customer_id",
			"staff_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"service_name",
			"service_price",
			"payment_method",
			"payment_status",
			"transaction_id",
			"refund_amount",
		).
		Values(
			a.CustomerID,
			a.StaffID,
			a.ServiceID,
			a.StartTime,
			a.EndTime,
			a.Status,
			a.ServiceName,
			a.ServicePrice,
			a.PaymentMethod,
			a.PaymentStatus,
			a.TransactionID,
			a.RefundAmount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if err != nil {
		if txmanager.IsConflictError(err) {
			return nil, fmt.Errorf("%w: Create - %v", ErrStaffConflict, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает запись по ID и блокирует строку до конца транзакции.
// Вне транзакции ведет себя как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, lock bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// List возвращает записи по фильтру, сначала самые поздние
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("start_time DESC")

	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListActiveByStaffInRange возвращает неотмененные записи мастеров, пересекающиеся с [start, end).
// Строки записей не блокируются: бронирования сериализуются блокировкой строк мастеров.
func (r *Repository) ListActiveByStaffInRange(ctx context.Context, staffIDs []int64, start, end time.Time) ([]*domain.Appointment, error) {
	if len(staffIDs) == 0 {
		return []*domain.Appointment{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := activeInRangeQuery(staffIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByStaffInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("ListActiveByStaffInRange", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// queryError сохраняет признак конкурентного конфликта (deadlock, serialization failure),
// чтобы менеджер транзакций и сценарий бронирования могли повторить попытку
func queryError(op string, err error) error {
	if txmanager.IsConflictError(err) {
		return fmt.Errorf("%w: %s - execute query: %v", txmanager.ErrConcurrencyConflict, op, err)
	}
	return fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
}

// activeInRangeQuery строит запрос поиска пересечений: start_time < end AND end_time > start
func activeInRangeQuery(staffIDs []int64, start, end time.Time) (string, []interface{}, error) {
	return psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"staff_id": staffIDs}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		OrderBy("start_time ASC").
		ToSql()
}

// CountCancelledByCustomerSince считает отмены, выполненные самим клиентом начиная с since
func (r *Repository) CountCancelledByCustomerSince(ctx context.Context, customerID int64, since time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{
			"customer_id":  customerID,
			"cancelled_by": customerID,
			"status":       domain.StatusCancelled,
		}).
		Where(squirrel.GtOrEq{"cancelled_at": since}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountCancelledByCustomerSince - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountCancelledByCustomerSince - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Cancel переводит запись в статус cancelled и сохраняет данные возврата
func (r *Repository) Cancel(ctx context.Context, id int64, params CancelParams) error {
	update := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", params.Reason).
		Set("cancelled_by", params.CancelledBy).
		Set("cancelled_at", params.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()"))

	if params.RefundAmount != nil {
		update = update.Set("refund_amount", *params.RefundAmount)
	}
	if params.PaymentStatus != nil {
		update = update.Set("payment_status", *params.PaymentStatus)
	}
	if params.RefundReference != nil {
		update = update.Set("refund_reference", *params.RefundReference)
	}

	return r.execUpdate(ctx, "Cancel", update.Where(squirrel.Eq{"id": id}))
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	update := psqlbuilder.Update(table).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "UpdateStatus", update)
}

// AssignStaff назначает мастера на запись
func (r *Repository) AssignStaff(ctx context.Context, id int64, staffID int64) error {
	update := psqlbuilder.Update(table).
		Set("staff_id", staffID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "AssignStaff", update)
}

// MarkPaid фиксирует онлайн-оплату и ссылку на платеж
func (r *Repository) MarkPaid(ctx context.Context, id int64, transactionID string) error {
	update := psqlbuilder.Update(table).
		Set("payment_status", domain.PaymentPaid).
		Set("transaction_id", transactionID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	return r.execUpdate(ctx, "MarkPaid", update)
}

func (r *Repository) execUpdate(ctx context.Context, op string, update squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if txmanager.IsConflictError(err) {
			return fmt.Errorf("%w: %s - %v", ErrStaffConflict, op, err)
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.StaffID,
		&a.ServiceID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.ServiceName,
		&a.ServicePrice,
		&a.PaymentMethod,
		&a.PaymentStatus,
		&a.TransactionID,
		&a.RefundAmount,
		&a.RefundReference,
		&a.CancellationReason,
		&a.CancelledBy,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
