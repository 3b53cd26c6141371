package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (f *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (f *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx    *fakeTx
	opts  *sql.TxOptions
	calls int
	err   error
}

func (f *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	f.calls++
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestDo_CommitsOnSuccess(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, beginner.tx.committed)
	assert.False(t, beginner.tx.rolledBack)
	assert.Equal(t, sql.LevelReadCommitted, beginner.opts.Isolation)
}

func TestDo_RollsBackOnError(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)
	want := errors.New("validation failed")

	err := m.Do(context.Background(), func(ctx context.Context) error { return want })

	assert.ErrorIs(t, err, want)
	assert.False(t, beginner.tx.committed)
	assert.True(t, beginner.tx.rolledBack)
}

func TestDo_RollsBackOnPanic(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	assert.Panics(t, func() {
		_ = m.Do(context.Background(), func(ctx context.Context) error { panic("boom") })
	})
	assert.True(t, beginner.tx.rolledBack)
}

func TestDo_NestedReusesTransaction(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(ctx context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Equal(t, 1, beginner.calls)
}

func TestDo_ConflictOnCommit(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{commitErr: &pq.Error{Code: "40001"}}}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, sql.LevelSerializable, beginner.opts.Isolation)
}

func TestDo_ConflictFromFunction(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return &pq.Error{Code: "40P01"}
	})

	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.True(t, beginner.tx.rolledBack)
}

func TestDo_BeginError(t *testing.T) {
	m := NewTransactionManager(&fakeBeginner{err: errors.New("no conn")})

	err := m.DoReadOnly(context.Background(), func(ctx context.Context) error { return nil })

	assert.ErrorIs(t, err, ErrBeginTx)
}

func TestIsConflictError(t *testing.T) {
	assert.True(t, IsConflictError(&pq.Error{Code: "23P01"}))
	assert.True(t, IsConflictError(ErrConcurrencyConflict))
	assert.False(t, IsConflictError(&pq.Error{Code: "23505"}))
	assert.False(t, IsConflictError(errors.New("plain")))
	assert.False(t, IsConflictError(nil))
}
