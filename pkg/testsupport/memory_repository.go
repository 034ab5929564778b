package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-game-config/configuration"
)

// MemoryRepository is an in-memory configuration.Repository that records
// how often each method was called. Set Err* fields to inject failures.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]configuration.Record
	calls   map[string]int
	now     func() time.Time

	ErrGet    error
	ErrList   error
	ErrCreate error
	ErrUpdate error
	ErrDelete error
	ErrPing   error
}

// NewMemoryRepository returns an empty repository stamping records with now.
func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MemoryRepository{
		records: map[string]configuration.Record{},
		calls:   map[string]int{},
		now:     now,
	}
}

// Calls returns how many times method was invoked.
func (m *MemoryRepository) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Put stores rec as is, bypassing validation and call counting.
func (m *MemoryRepository) Put(rec configuration.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
}

// Len returns the number of stored records.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryRepository) record(method string) {
	m.calls[method]++
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*configuration.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetByID")

	if m.ErrGet != nil {
		return nil, m.ErrGet
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryRepository) GetByName(ctx context.Context, name string) (*configuration.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetByName")

	if m.ErrGet != nil {
		return nil, m.ErrGet
	}
	for _, rec := range m.records {
		if rec.Name == name {
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetAll(ctx context.Context, opts configuration.ListOptions) ([]configuration.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetAll")

	if m.ErrList != nil {
		return nil, m.ErrList
	}

	out := make([]configuration.Record, 0, len(m.records))
	for _, rec := range m.records {
		if opts.SearchTerm != "" &&
			!strings.Contains(rec.Name, opts.SearchTerm) &&
			!strings.Contains(rec.JSONConfig, opts.SearchTerm) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if opts.Skip != nil && *opts.Skip > 0 {
		if *opts.Skip >= len(out) {
			return []configuration.Record{}, nil
		}
		out = out[*opts.Skip:]
	}
	if opts.Take != nil {
		take := max(*opts.Take, 0)
		if take < len(out) {
			out = out[:take]
		}
	}
	return out, nil
}

func (m *MemoryRepository) Create(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create")

	if m.ErrCreate != nil {
		return nil, m.ErrCreate
	}
	if m.nameTaken(candidate.Name, "") {
		return nil, &configuration.DuplicateNameError{Name: candidate.Name}
	}

	now := m.now().UTC().Truncate(time.Microsecond)
	rec := configuration.Record{
		ID:         uuid.NewString(),
		Name:       candidate.Name,
		JSONConfig: candidate.JSONConfig,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.records[rec.ID] = rec
	return &rec, nil
}

func (m *MemoryRepository) Update(ctx context.Context, candidate configuration.Record) (*configuration.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Update")

	if m.ErrUpdate != nil {
		return nil, m.ErrUpdate
	}
	rec, ok := m.records[candidate.ID]
	if !ok {
		return nil, &configuration.NotFoundError{ID: candidate.ID}
	}
	if m.nameTaken(candidate.Name, candidate.ID) {
		return nil, &configuration.DuplicateNameError{Name: candidate.Name}
	}

	updatedAt := m.now().UTC().Truncate(time.Microsecond)
	if !updatedAt.After(rec.UpdatedAt) {
		updatedAt = rec.UpdatedAt.Add(time.Microsecond)
	}
	rec.Name = candidate.Name
	rec.JSONConfig = candidate.JSONConfig
	rec.UpdatedAt = updatedAt
	m.records[rec.ID] = rec
	return &rec, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete")

	if m.ErrDelete != nil {
		return m.ErrDelete
	}
	if _, ok := m.records[id]; !ok {
		return &configuration.NotFoundError{ID: id}
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryRepository) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exists")

	if m.ErrGet != nil {
		return false, m.ErrGet
	}
	return m.nameTaken(name, ""), nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Ping")
	return m.ErrPing
}

func (m *MemoryRepository) nameTaken(name, exceptID string) bool {
	for id, rec := range m.records {
		if rec.Name == name && id != exceptID {
			return true
		}
	}
	return false
}
