package employee

import (
	"context"

	"employeeapp/internal/hr/models"
	"employeeapp/internal/hr/ports"
	"employeeapp/internal/ledger"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
)

// InMemoryTx runs salary transactions against an InMemoryStore.
//
// The store's write lock is held for the whole scope, which serializes
// transactions and keeps readers from seeing staged writes. Writes go to an
// overlay that is applied only when fn returns nil; an error or a panic
// discards it.
type InMemoryTx struct {
	store   *InMemoryStore
	journal ledger.Journal
}

func NewInMemoryTx(store *InMemoryStore, journal ledger.Journal) *InMemoryTx {
	return &InMemoryTx{store: store, journal: journal}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores ports.TxStores) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	staged := &stagedEmployees{base: t.store, pending: make(map[domain.RecordID]*models.Employee)}
	journal := ledger.NewStagedJournal(t.journal)

	if err := fn(ctx, ports.TxStores{Employees: staged, Journal: journal}); err != nil {
		return err
	}

	if err := journal.Flush(ctx); err != nil {
		return err
	}
	for id, e := range staged.pending {
		t.store.employees[id] = e
	}
	return nil
}

// stagedEmployees reads through to the locked base maps and buffers writes.
type stagedEmployees struct {
	base    *InMemoryStore
	pending map[domain.RecordID]*models.Employee
}

func (s *stagedEmployees) FindByIDForUpdate(_ context.Context, id domain.RecordID) (*models.Employee, error) {
	if e, ok := s.pending[id]; ok {
		clone := *e
		return &clone, nil
	}
	e, ok := s.base.employees[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

// Save stages the salary of employee.
func (s *stagedEmployees) Save(ctx context.Context, employee *models.Employee) error {
	current, ok := s.pending[employee.ID]
	if !ok {
		current, ok = s.base.employees[employee.ID]
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	next := *current
	next.Salary = employee.Salary
	next.UpdatedAt = requestcontext.Now(ctx)
	s.pending[next.ID] = &next
	employee.UpdatedAt = next.UpdatedAt
	return nil
}
