// Package store persists the answers of each record section and serves note
// templates. Memory is the in-process implementation; pgstore the
// PostgreSQL one.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// ErrNotFound is returned for unknown records, sections, and templates.
var ErrNotFound = errors.New("store: not found")

// Record is a patient file. Each consultation stage saves one section.
type Record struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	Sections  []string  `json:"sections"`
}

// Store fetches and updates answers keyed by record id and section.
type Store interface {
	Fetch(ctx context.Context, recordID, section string) (model.AnswerSet, error)
	Update(ctx context.Context, recordID, section string, answers model.AnswerSet) error
	CreateRecord(ctx context.Context, label string) (Record, error)
	ListRecords(ctx context.Context) ([]Record, error)
}

// TemplateSource fetches the note template of a stage.
type TemplateSource interface {
	Template(ctx context.Context, slug string) (string, error)
}

// SectionSink saves submitted answers into one record section.
type SectionSink struct {
	Store    Store
	RecordID string
	Section  string
}

// Submit writes answers through Update.
func (s SectionSink) Submit(ctx context.Context, answers model.AnswerSet) error {
	return s.Store.Update(ctx, s.RecordID, s.Section, answers)
}
