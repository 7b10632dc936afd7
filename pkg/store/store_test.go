package store_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/store"
)

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	rec, err := m.CreateRecord(ctx, "Durand")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Fatalf("record id %q is not a uuid: %v", rec.ID, err)
	}

	if _, err := m.Fetch(ctx, rec.ID, "pre-operatoire"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unsaved section, got %v", err)
	}

	answers := model.AnswerSet{"nom": "Durand", "examens": []string{"pano"}}
	if err := m.Update(ctx, rec.ID, "pre-operatoire", answers); err != nil {
		t.Fatalf("update: %v", err)
	}
	answers["nom"] = "changed"

	got, err := m.Fetch(ctx, rec.ID, "pre-operatoire")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := model.AnswerSet{"nom": "Durand", "examens": []string{"pano"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	records, err := m.ListRecords(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Label != "Durand" {
		t.Fatalf("unexpected records %+v", records)
	}
	if diff := cmp.Diff([]string{"pre-operatoire"}, records[0].Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_UnknownRecord(t *testing.T) {
	m := store.NewMemory()
	if err := m.Update(context.Background(), "nope", "s", model.AnswerSet{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Fetch(context.Background(), "nope", "s"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSectionSink(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	rec, _ := m.CreateRecord(ctx, "Martin")

	sink := store.SectionSink{Store: m, RecordID: rec.ID, Section: "post-op-3-mois"}
	if err := sink.Submit(ctx, model.AnswerSet{"douleur": float64(1)}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := m.Fetch(ctx, rec.ID, "post-op-3-mois")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got["douleur"] != float64(1) {
		t.Fatalf("unexpected answers %v", got)
	}

	missing := store.SectionSink{Store: m, RecordID: "nope", Section: "x"}
	if err := missing.Submit(ctx, model.AnswerSet{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSTemplates(t *testing.T) {
	src := store.FSTemplates{FS: fstest.MapFS{
		"suivi.tpl": {Data: []byte("Bonjour {{ nom }}")},
	}}

	tpl, err := src.Template(context.Background(), "suivi")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if tpl != "Bonjour {{ nom }}" {
		t.Fatalf("unexpected template %q", tpl)
	}

	for _, slug := range []string{"absent", "", "../suivi", "a/b"} {
		if _, err := src.Template(context.Background(), slug); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("slug %q: expected ErrNotFound, got %v", slug, err)
		}
	}
}

type failingTemplates struct{ err error }

func (f failingTemplates) Template(context.Context, string) (string, error) {
	return "", f.err
}

func TestTemplateChain(t *testing.T) {
	ctx := context.Background()
	first := store.FSTemplates{FS: fstest.MapFS{"a.tpl": {Data: []byte("from first")}}}
	second := store.FSTemplates{FS: fstest.MapFS{
		"a.tpl": {Data: []byte("shadowed")},
		"b.tpl": {Data: []byte("from second")},
	}}
	chain := store.TemplateChain{first, nil, second}

	for slug, want := range map[string]string{"a": "from first", "b": "from second"} {
		got, err := chain.Template(ctx, slug)
		if err != nil || got != want {
			t.Errorf("Template(%q) = %q, %v; want %q", slug, got, err, want)
		}
	}
	if _, err := chain.Template(ctx, "c"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing template err = %v, want ErrNotFound", err)
	}

	boom := errors.New("connection refused")
	broken := store.TemplateChain{failingTemplates{err: boom}, second}
	if _, err := broken.Template(ctx, "b"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want the source failure", err)
	}
}
