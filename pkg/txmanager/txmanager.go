package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
)

var (
	// ErrBeginTx возвращается, если не удалось начать транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommit возвращается, если не удалось зафиксировать транзакцию
	ErrCommit = errors.New("txmanager: failed to commit transaction")

	// ErrConcurrencyConflict возвращается, когда БД отклонила транзакцию из-за
	// конкурентного доступа (serialization failure, deadlock, exclusion violation)
	ErrConcurrencyConflict = errors.New("txmanager: concurrency conflict")
)

// Коды ошибок PostgreSQL, означающие проигранную гонку
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqExclusionViolation   = "23P01"
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакции, переданной через контекст
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

// do открывает транзакцию, если в контексте её еще нет, и гарантирует
// commit или rollback на любом пути выхода, включая панику.
func (m *TransactionManager) do(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		if IsConflictError(err) && !errors.Is(err, ErrConcurrencyConflict) {
			return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		committed = true // после неудачного Commit транзакция уже завершена
		if IsConflictError(err) {
			return fmt.Errorf("%w: commit: %v", ErrConcurrencyConflict, err)
		}
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	committed = true

	return nil
}

// IsConflictError проверяет, что ошибка PostgreSQL означает конкурентный конфликт
func IsConflictError(err error) bool {
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqSerializationFailure, pqDeadlockDetected, pqExclusionViolation:
		return true
	default:
		return false
	}
}
