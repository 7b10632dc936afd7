package export_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/export"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/testsupport"
)

const bilanSchema = `
metadata:
  name: Bilan
sections:
  - title: Motif
    fields:
      - type: text
        name: motif
        label: Motif
        required: true
      - type: conditional-checkbox
        name: tabac
        label: Tabac
        fields:
          - type: text
            name: paquets
            label: Paquets
  - title: Examen
    fields:
      - type: steps
        name: douleur
        label: Douleur
        steps: [aucune, légère, forte]
`

func ptr(f float64) *float64 { return &f }

func TestFormatValue(t *testing.T) {
	choice := model.Field{Kind: model.KindSingleChoice, Options: []model.Option{
		{Value: "f", Label: "Féminin"},
		{Value: "m", Label: "Masculin"},
	}}
	multi := choice
	multi.Kind = model.KindMultiChoice

	cases := []struct {
		name  string
		field model.Field
		value any
		want  string
	}{
		{"blank", model.Field{Kind: model.KindText}, "", ""},
		{"whitespace only", model.Field{Kind: model.KindText}, " \t ", ""},
		{"whitespace choice", choice, "  ", ""},
		{"nil", model.Field{Kind: model.KindBoolean}, nil, ""},
		{"text", model.Field{Kind: model.KindText}, "contrôle", "contrôle"},
		{"date", model.Field{Kind: model.KindText, InputType: model.InputDate}, "2024-03-05", "05/03/2024"},
		{"choice label", choice, "f", "Féminin"},
		{"choice unknown value", choice, "x", "x"},
		{"multi", multi, []any{"m", "f"}, "Masculin, Féminin"},
		{"multi strings", multi, []string{"f"}, "Féminin"},
		{"step index", model.Field{Kind: model.KindSteppedRange, Steps: []string{"0", "+", "++"}}, float64(2), "++"},
		{"step string index", model.Field{Kind: model.KindSteppedRange, Steps: []string{"0", "+"}}, "1", "+"},
		{"step out of range", model.Field{Kind: model.KindSteppedRange, Steps: []string{"0"}}, float64(4), "4"},
		{"range unit", model.Field{Kind: model.KindContinuousRange, Min: ptr(0), Max: ptr(60), Unit: "mm"}, float64(42.5), "42.5 mm"},
		{"boolean yes", model.Field{Kind: model.KindBoolean}, true, "Oui"},
		{"boolean no", model.Field{Kind: model.KindConditionalBoolean}, false, "Non"},
		{"chart", model.Field{Kind: model.KindChart}, `{"11":"Absent","12":"Normal","21":"Absent"}`, "Absent: 11, 21"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := export.FormatValue(tc.field, tc.value); got != tc.want {
				t.Fatalf("FormatValue(%v) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestFormatter_Translated(t *testing.T) {
	f := export.NewFormatter(nil, "en-GB", nil)
	if got := f.Format(model.Field{Kind: model.KindBoolean}, true); got != "Yes" {
		t.Fatalf("got %q, want Yes", got)
	}
}

func TestBuild_VisibleFieldsOnly(t *testing.T) {
	schema := testsupport.MustParseSchema(t, bilanSchema)

	hidden := export.Build(schema, model.AnswerSet{"motif": "contrôle", "tabac": false, "paquets": "10"})
	var names []string
	for _, section := range hidden.Sections {
		for _, entry := range section.Entries {
			names = append(names, entry.Name)
		}
	}
	if diff := cmp.Diff([]string{"motif", "tabac", "douleur"}, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	shown := export.Build(schema, model.AnswerSet{"tabac": true})
	want := []export.Entry{
		{Name: "motif", Label: "Motif", Missing: true},
		{Name: "tabac", Label: "Tabac", Value: "Oui"},
		{Name: "paquets", Label: "Paquets", Depth: 1},
	}
	if diff := cmp.Diff(want, shown.Sections[0].Entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func bilanAnswers() model.AnswerSet {
	return model.AnswerSet{"motif": "contrôle", "tabac": true, "paquets": "", "douleur": float64(1)}
}

func TestTextSink_SinglePage(t *testing.T) {
	schema := testsupport.MustParseSchema(t, bilanSchema)
	out, err := export.TextSink{}.Export(context.Background(), schema, bilanAnswers())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Bilan\n=====\n\nMotif\n-----\nMotif : contrôle\nTabac : Oui\n  Paquets : Non renseigné\n\nExamen\n------\nDouleur : légère\nPage 1/1\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTextSink_Pagination(t *testing.T) {
	schema := testsupport.MustParseSchema(t, bilanSchema)
	doc := export.Build(schema, bilanAnswers())

	out, err := export.TextSink{LinesPerPage: 6}.Layout(doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Bilan\n=====\nPage 1/3\n" +
		"\fMotif\n-----\nMotif : contrôle\nTabac : Oui\n  Paquets : Non renseigné\nPage 2/3\n" +
		"\fExamen\n------\nDouleur : légère\nPage 3/3\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTextSink_RejectsTinyPages(t *testing.T) {
	if _, err := (export.TextSink{LinesPerPage: 3}).Layout(export.Document{}); err == nil {
		t.Fatal("expected error for short page")
	}
}

func TestTextSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (export.TextSink{}).Export(ctx, model.FormSchema{}, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestTextSink_Renderer(t *testing.T) {
	schema := testsupport.MustParseSchema(t, bilanSchema)
	out, err := export.TextSink{}.Render(context.Background(), schema, render.RenderOptions{
		Values: model.AnswerSet{"tabac": true},
		Locale: "en",
		Note:   "Note finale",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Bilan\n=====\n\nMotif\n-----\nMotif : Not answered\nTabac : Yes\n  Paquets : Not answered\n\nExamen\n------\nDouleur : Not answered\n\nNote finale\nPage 1/1\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}
