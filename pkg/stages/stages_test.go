package stages_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/note"
	"github.com/goliatone/go-clinicform/pkg/session"
	"github.com/goliatone/go-clinicform/pkg/stages"
	"github.com/goliatone/go-clinicform/pkg/store"
)

func loadDefault(t *testing.T) *stages.Catalog {
	t.Helper()
	c, err := stages.Default(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestDefault_Order(t *testing.T) {
	c := loadDefault(t)

	var slugs []string
	for _, stage := range c.Stages() {
		slugs = append(slugs, stage.Slug)
	}
	want := []string{"premiere-consultation", "pre-operatoire", "post-op-3-mois", "post-op-6-mois"}
	if diff := cmp.Diff(want, slugs); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}

	next, ok := c.Next("pre-operatoire")
	if !ok || next.Slug != "post-op-3-mois" {
		t.Fatalf("Next(pre-operatoire) = %v, %v", next.Slug, ok)
	}
	if _, ok := c.Next("post-op-6-mois"); ok {
		t.Fatal("last stage should have no successor")
	}
	if _, ok := c.Next("inconnu"); ok {
		t.Fatal("unknown stage should have no successor")
	}
}

func TestDefault_LookupErrors(t *testing.T) {
	c := loadDefault(t)

	if _, err := c.Schema("inconnu"); !errors.Is(err, stages.ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
	if _, err := c.Template(context.Background(), "inconnu"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok := c.Stage("inconnu"); ok {
		t.Fatal("unexpected stage")
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
}

func TestDefault_EveryTemplateRendersDefaults(t *testing.T) {
	c := loadDefault(t)
	ctx := context.Background()

	for _, stage := range c.Stages() {
		t.Run(stage.Slug, func(t *testing.T) {
			form, err := c.Schema(stage.Slug)
			if err != nil {
				t.Fatalf("schema: %v", err)
			}
			s, err := session.New(form, session.WithClock(fixedClock), session.WithLocation(time.UTC))
			if err != nil {
				t.Fatalf("session: %v", err)
			}
			if err := s.LoadTemplate(ctx, c, stage.Slug); err != nil {
				t.Fatalf("load template: %v", err)
			}
			got := s.Note()
			if got == note.FailureMessage || got == note.NoTemplateMessage {
				t.Fatalf("note did not render: %q", got)
			}
			if !strings.Contains(got, "05/03/2024") {
				t.Fatalf("note lacks the default date: %q", got)
			}
		})
	}
}

func TestPostOp3Note(t *testing.T) {
	c := loadDefault(t)
	form, err := c.Schema("post-op-3-mois")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	s, err := session.New(form, session.WithClock(fixedClock), session.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := s.LoadTemplate(context.Background(), c, "post-op-3-mois"); err != nil {
		t.Fatalf("load template: %v", err)
	}

	for name, value := range map[string]any{
		"douleur":           float64(1),
		"isq":               float64(72),
		"complication":      true,
		"complication_type": []string{"infection"},
		"mise_en_charge":    true,
	} {
		if err := s.Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	want := "CONTRÔLE À 3 MOIS du 05/03/2024\n\n" +
		"Douleur : légère\n\n" +
		"Cicatrisation : bonne\n\n" +
		"Stabilité implantaire : ISQ 72\n\n" +
		"Complication : infection\n\n" +
		"Mise en charge prothétique autorisée."
	if diff := cmp.Diff(want, s.Note()); diff != "" {
		t.Fatalf("note mismatch (-want +got):\n%s", diff)
	}
	if !s.Complete() {
		t.Fatalf("unexpected missing fields %v", s.Missing())
	}
}

func TestLoad_Bundle(t *testing.T) {
	files := fstest.MapFS{
		"catalog.yaml": {Data: []byte("stages:\n  - slug: bilan\n    schema: bilan.yaml\n    template: bilan.tpl\n")},
		"bilan.yaml":   {Data: []byte("metadata:\n  name: Bilan\nsections:\n  - title: A\n    fields:\n      - type: text\n        name: nom\n")},
		"bilan.tpl":    {Data: []byte("Nom : {{ nom }}")},
	}
	c, err := stages.Load(context.Background(), files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stage, ok := c.Stage("bilan")
	if !ok || stage.Title != "Bilan" {
		t.Fatalf("stage title should fall back to the schema name: %+v", stage)
	}
	tpl, err := c.Template(context.Background(), "bilan")
	if err != nil || tpl != "Nom : {{ nom }}" {
		t.Fatalf("template = %q, %v", tpl, err)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no index": {},
		"empty":    {"catalog.yaml": {Data: []byte("stages: []\n")}},
		"duplicate": {
			"catalog.yaml": {Data: []byte("stages:\n  - slug: a\n    schema: a.yaml\n  - slug: a\n    schema: a.yaml\n")},
			"a.yaml":       {Data: []byte("sections:\n  - title: A\n    fields:\n      - type: text\n        name: x\n")},
		},
		"name collision": {
			"catalog.yaml": {Data: []byte("stages:\n  - slug: a\n    schema: a.yaml\n")},
			"a.yaml":       {Data: []byte("sections:\n  - title: A\n    fields:\n      - type: text\n        name: x\n      - type: text\n        name: x\n")},
		},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := stages.Load(context.Background(), files); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
