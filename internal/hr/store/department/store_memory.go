package department

import (
	"context"
	"sort"
	"sync"

	"employeeapp/internal/hr/models"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
)

// EmployeeCascade removes the employees of a deleted department.
type EmployeeCascade interface {
	DeleteByDepartment(ctx context.Context, departmentID domain.RecordID) (int, error)
}

// InMemoryStore keeps departments in process memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	departments map[domain.RecordID]*models.Department
	cascade     EmployeeCascade
}

// NewInMemory builds an empty store. cascade may be nil.
func NewInMemory(cascade EmployeeCascade) *InMemoryStore {
	return &InMemoryStore{
		departments: make(map[domain.RecordID]*models.Department),
		cascade:     cascade,
	}
}

func (s *InMemoryStore) Create(ctx context.Context, department *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := requestcontext.Now(ctx)
	department.ID = domain.RecordID(s.nextID)
	department.CreatedAt = now
	department.UpdatedAt = now
	stored := *department
	s.departments[stored.ID] = &stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RecordID) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		clone := *d
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Update(ctx context.Context, department *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.departments[department.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	department.OwnerID = current.OwnerID
	department.CreatedAt = current.CreatedAt
	department.UpdatedAt = requestcontext.Now(ctx)
	stored := *department
	s.departments[stored.ID] = &stored
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[id]; !ok {
		return sentinel.ErrNotFound
	}
	if s.cascade != nil {
		if _, err := s.cascade.DeleteByDepartment(ctx, id); err != nil {
			return err
		}
	}
	delete(s.departments, id)
	return nil
}

// OwnerOf returns the identity that created the department.
func (s *InMemoryStore) OwnerOf(_ context.Context, id domain.RecordID) (domain.RecordID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[id]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return d.OwnerID, nil
}
