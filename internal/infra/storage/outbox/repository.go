package outbox

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

const table = "outbox_events"

// Repository репозиторий outbox-событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет событие. Вызывается в транзакции изменения записи,
// чтобы событие и изменение фиксировались атомарно.
func (r *Repository) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "aggregate_id", "event_type", "payload", "created_at").
		Values(event.ID.String(), event.AggregateID, event.EventType, string(event.Payload), event.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// FetchUnpublished выбирает неопубликованные события в порядке создания.
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько
// экземпляров сервиса не публиковали одно событие одновременно.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "aggregate_id", "event_type", "payload", "created_at").
		From(table).
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("created_at ASC").
		Limit(uint64(limit))
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %v", ErrScanRow, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	// uuid.UUID - массив байт, squirrel развернул бы его в список, поэтому передаем строки
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query, args, err := psqlbuilder.Update(table).
		Set("published_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": strIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
