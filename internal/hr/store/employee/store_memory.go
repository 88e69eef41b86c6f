package employee

import (
	"context"
	"sort"
	"sync"

	"employeeapp/internal/hr/models"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
)

// InMemoryStore keeps employees in process memory. Email uniqueness is
// enforced here the way the unique index does in PostgreSQL.
type InMemoryStore struct {
	mu        sync.RWMutex
	nextID    int64
	employees map[domain.RecordID]*models.Employee
	emails    map[string]domain.RecordID
}

// NewInMemory builds an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		employees: make(map[domain.RecordID]*models.Employee),
		emails:    make(map[string]domain.RecordID),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[employee.Email]; taken {
		return sentinel.ErrConflict
	}
	s.nextID++
	now := requestcontext.Now(ctx)
	employee.ID = domain.RecordID(s.nextID)
	employee.CreatedAt = now
	employee.UpdatedAt = now

	stored := *employee
	s.employees[stored.ID] = &stored
	s.emails[stored.Email] = stored.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RecordID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update writes every field except salary, which only changes in a transaction.
func (s *InMemoryStore) Update(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employees[employee.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.emails[employee.Email]; taken && owner != employee.ID {
		return sentinel.ErrConflict
	}
	delete(s.emails, current.Email)

	updated := *current
	updated.FirstName = employee.FirstName
	updated.LastName = employee.LastName
	updated.Email = employee.Email
	updated.DepartmentID = employee.DepartmentID
	updated.UpdatedAt = requestcontext.Now(ctx)

	s.employees[updated.ID] = &updated
	s.emails[updated.Email] = updated.ID
	*employee = updated
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.emails, e.Email)
	delete(s.employees, id)
	return nil
}

// DeleteByDepartment removes the employees of a department and returns how
// many were removed. It is the in-memory ON DELETE CASCADE.
func (s *InMemoryStore) DeleteByDepartment(_ context.Context, departmentID domain.RecordID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.employees {
		if e.DepartmentID == departmentID {
			delete(s.emails, e.Email)
			delete(s.employees, id)
			removed++
		}
	}
	return removed, nil
}

// OwnerOf returns the identity that created the employee.
func (s *InMemoryStore) OwnerOf(_ context.Context, id domain.RecordID) (domain.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return e.OwnerID, nil
}
