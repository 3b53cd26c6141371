package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий каталога услуг салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "price", "duration_minutes").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Price, &s.DurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	return &s, nil
}
