package settings

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

const table = "settings"

// Repository репозиторий настроек салона (ключ/значение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetMany получает настройки по списку ключей; отсутствующие ключи пропускаются
func (r *Repository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	return r.list(ctx, "GetMany", squirrel.Eq{"key": keys})
}

// GetAll получает все настройки
func (r *Repository) GetAll(ctx context.Context) (map[string]string, error) {
	return r.list(ctx, "GetAll", nil)
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Sqlizer) (map[string]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("key", "value").
		From(table).
		OrderBy("key ASC")
	if where != nil {
		selectBuilder = selectBuilder.Where(where)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return result, nil
}

// Upsert создает или обновляет настройку
func (r *Repository) Upsert(ctx context.Context, setting *domain.Setting) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("key", "value").
		Values(setting.Key, setting.Value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
