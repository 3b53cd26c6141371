package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

const table = "users"

var columns = []string{
	"id",
	"name",
	"is_active",
	"skills",
	"shift_start",
	"shift_end",
	"break_start",
	"break_end",
}

// Repository репозиторий мастеров (пользователи с ролью worker)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мастеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListActiveWorkers возвращает всех активных мастеров
func (r *Repository) ListActiveWorkers(ctx context.Context) ([]*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"role": domain.RoleWorker, "is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveWorkers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveWorkers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	members := make([]*domain.StaffMember, 0)
	for rows.Next() {
		member, err := scanStaffMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveWorkers - scan row: %v", ErrScanRow, err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveWorkers - rows error: %v", ErrScanRow, err)
	}

	return members, nil
}

// GetActiveWorker возвращает активного мастера по ID
func (r *Repository) GetActiveWorker(ctx context.Context, id int64) (*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id, "role": domain.RoleWorker, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveWorker - build select query: %v", ErrBuildQuery, err)
	}

	member, err := scanStaffMember(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveWorker - scan row: %v", ErrScanRow, err)
	}

	return member, nil
}

// LockByIDs блокирует строки мастеров до конца транзакции (SELECT ... FOR UPDATE).
// Строки блокируются по возрастанию id, чтобы параллельные транзакции не попадали в deadlock.
// Вне транзакции ничего не делает.
func (r *Repository) LockByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 || !dbmetrics.IsInTransaction(ctx) {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := lockQuery(ids)
	if err != nil {
		return fmt.Errorf("%w: LockByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return lockError("execute query", err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return lockError("rows error", err)
	}

	return nil
}

// lockError оставляет deadlock и serialization failure распознаваемыми как конкурентный конфликт
func lockError(step string, err error) error {
	if txmanager.IsConflictError(err) {
		return fmt.Errorf("%w: LockByIDs - %s: %v", txmanager.ErrConcurrencyConflict, step, err)
	}
	return fmt.Errorf("%w: LockByIDs - %s: %v", ErrExecQuery, step, err)
}

func lockQuery(ids []int64) (string, []interface{}, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return psqlbuilder.Select("id").
		From(table).
		Where(squirrel.Eq{"id": sorted}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanStaffMember сканирует строку и нормализует навыки (числа или строки) в SkillSet
func scanStaffMember(row rowScanner) (*domain.StaffMember, error) {
	var (
		member               domain.StaffMember
		skillsRaw            []byte
		shiftStart, shiftEnd types.TimeString
		breakStart, breakEnd types.TimeString
	)

	if err := row.Scan(
		&member.ID,
		&member.Name,
		&member.IsActive,
		&skillsRaw,
		&shiftStart,
		&shiftEnd,
		&breakStart,
		&breakEnd,
	); err != nil {
		return nil, err
	}

	skills, err := domain.ParseSkills(skillsRaw)
	if err != nil {
		return nil, fmt.Errorf("staff id=%d: %w", member.ID, err)
	}

	member.Skills = skills
	member.ShiftStart = shiftStart
	member.ShiftEnd = shiftEnd
	if !breakStart.IsZero() && !breakEnd.IsZero() {
		member.BreakStart = &breakStart
		member.BreakEnd = &breakEnd
	}

	return &member, nil
}
