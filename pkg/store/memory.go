package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-clinicform/pkg/model"
)

type memoryRecord struct {
	Record
	sections map[string]model.AnswerSet
}

// Memory keeps records in process. Answers are copied on the way in and
// out.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
}

func (m *Memory) CreateRecord(ctx context.Context, label string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &memoryRecord{
		Record: Record{
			ID:        uuid.NewString(),
			Label:     label,
			CreatedAt: m.now().UTC(),
		},
		sections: make(map[string]model.AnswerSet),
	}
	m.records[rec.ID] = rec
	return rec.snapshot(), nil
}

func (m *Memory) ListRecords(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Fetch(ctx context.Context, recordID, section string) (model.AnswerSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordID]
	if !ok {
		return nil, fmt.Errorf("%w: record %q", ErrNotFound, recordID)
	}
	answers, ok := rec.sections[section]
	if !ok {
		return nil, fmt.Errorf("%w: section %q of record %q", ErrNotFound, section, recordID)
	}
	return answers.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, recordID, section string, answers model.AnswerSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordID]
	if !ok {
		return fmt.Errorf("%w: record %q", ErrNotFound, recordID)
	}
	rec.sections[section] = answers.Clone()
	return nil
}

func (r *memoryRecord) snapshot() Record {
	out := r.Record
	out.Sections = make([]string, 0, len(r.sections))
	for name := range r.sections {
		out.Sections = append(out.Sections, name)
	}
	sort.Strings(out.Sections)
	return out
}
