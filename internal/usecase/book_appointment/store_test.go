package book_appointment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonBookingService/pkg/timeutil"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// memoryStore хранилище в памяти, повторяющее поведение PostgreSQL в READ COMMITTED:
// блокировки строк мастеров держатся до commit/rollback, вставки видны другим
// транзакциям только после commit.
type memoryStore struct {
	mu           sync.Mutex
	services     map[int64]*domain.Service
	workers      []*domain.StaffMember
	staffLocks   map[int64]*sync.Mutex
	appointments []*domain.Appointment
	events       []*domain.OutboxEvent
	nextID       int64
}

func newMemoryStore(services []*domain.Service, workers []*domain.StaffMember) *memoryStore {
	s := &memoryStore{
		services:   make(map[int64]*domain.Service),
		workers:    workers,
		staffLocks: make(map[int64]*sync.Mutex),
	}
	for _, svc := range services {
		s.services[svc.ID] = svc
	}
	for _, w := range workers {
		s.staffLocks[w.ID] = &sync.Mutex{}
	}
	return s
}

type txKey struct{}

type memoryTx struct {
	locked  []int64
	pending []*domain.Appointment
	events  []*domain.OutboxEvent
}

func txFrom(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(txKey{}).(*memoryTx)
	return tx
}

// Do реализует TransactionManager
func (s *memoryStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := &memoryTx{}
	err := fn(context.WithValue(ctx, txKey{}, tx))

	if err == nil {
		s.mu.Lock()
		s.appointments = append(s.appointments, tx.pending...)
		s.events = append(s.events, tx.events...)
		s.mu.Unlock()
	}
	for _, id := range tx.locked {
		s.staffLocks[id].Unlock()
	}
	return err
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	if svc, ok := s.services[id]; ok {
		return svc, nil
	}
	return nil, catalogRepo.ErrServiceNotFound
}

func (s *memoryStore) ListActiveWorkers(context.Context) ([]*domain.StaffMember, error) {
	return s.workers, nil
}

func (s *memoryStore) LockByIDs(ctx context.Context, ids []int64) error {
	tx := txFrom(ctx)
	if tx == nil {
		return nil
	}
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, id := range sorted {
		s.staffLocks[id].Lock()
		tx.locked = append(tx.locked, id)
	}
	return nil
}

func (s *memoryStore) ListActiveByStaffInRange(ctx context.Context, ids []int64, start, end time.Time) ([]*domain.Appointment, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	s.mu.Lock()
	visible := append([]*domain.Appointment(nil), s.appointments...)
	s.mu.Unlock()
	if tx := txFrom(ctx); tx != nil {
		visible = append(visible, tx.pending...)
	}

	result := make([]*domain.Appointment, 0)
	for _, a := range visible {
		if a.StaffID != nil && wanted[*a.StaffID] && a.IsActive() && timeutil.Overlaps(start, end, a.StartTime, a.EndTime) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *memoryStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	tx := txFrom(ctx)

	s.mu.Lock()
	s.nextID++
	a.ID = s.nextID
	s.mu.Unlock()

	tx.pending = append(tx.pending, a)
	return a, nil
}

func (s *memoryStore) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	tx := txFrom(ctx)
	tx.events = append(tx.events, event)
	return nil
}

func (s *memoryStore) committed() []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Appointment(nil), s.appointments...)
}

// conflictingCreate возвращает ErrStaffConflict первые failures раз
type conflictingCreate struct {
	*memoryStore
	failures int
	calls    int
}

func (c *conflictingCreate) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, appointmentRepo.ErrStaffConflict
	}
	return c.memoryStore.Create(ctx, a)
}

// deadlockingLock проигрывает блокировку строк мастеров первые failures раз
// так же, как это делает репозиторий мастеров при deadlock в PostgreSQL
type deadlockingLock struct {
	*memoryStore
	failures int
	calls    int
}

func (d *deadlockingLock) LockByIDs(ctx context.Context, ids []int64) error {
	d.calls++
	if d.calls <= d.failures {
		return fmt.Errorf("%w: LockByIDs - execute query: %v",
			txmanager.ErrConcurrencyConflict, &pq.Error{Code: "40P01", Message: "deadlock detected"})
	}
	return d.memoryStore.LockByIDs(ctx, ids)
}
