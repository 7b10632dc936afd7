package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/model"
)

func TestAnswerSetMerge_PriorWins(t *testing.T) {
	base := model.AnswerSet{"nom": "Dupont", "tabac": false, "motifs": []string{"a"}}
	merged := base.Merge(map[string]any{"nom": "Durand", "age": 42.0})

	want := model.AnswerSet{"nom": "Durand", "tabac": false, "motifs": []string{"a"}, "age": 42.0}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if base["nom"] != "Dupont" {
		t.Fatalf("merge mutated receiver: %v", base["nom"])
	}
}

func TestAnswerSetClone_CopiesSlices(t *testing.T) {
	base := model.AnswerSet{"motifs": []string{"a", "b"}}
	clone := base.Clone()
	clone["motifs"].([]string)[0] = "z"

	if got := base["motifs"].([]string)[0]; got != "a" {
		t.Fatalf("clone shares slice storage, got %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"spaces", "  ", false},
		{"empty strings", []string{}, true},
		{"empty any slice", []any{}, true},
		{"zero", 0.0, false},
		{"false", false, false},
		{"text", "x", false},
		{"values", []string{"a"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := model.IsBlank(tc.value); got != tc.want {
				t.Fatalf("IsBlank(%#v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestFormSchemaAllFields_EveryBranch(t *testing.T) {
	schema := model.FormSchema{
		Sections: []model.Section{{
			Title: "Anamnèse",
			Fields: []model.Field{
				{Kind: model.KindConditionalBoolean, Name: "tabac", Fields: []model.Field{
					{Kind: model.KindText, Name: "cigarettes"},
				}},
				{Kind: model.KindConditionalChoice, Name: "anesthesie", Options: []model.Option{
					{Value: "generale"},
					{Value: "locale", Fields: []model.Field{{Kind: model.KindText, Name: "dose"}}},
				}},
			},
		}},
	}

	var names []string
	for _, field := range schema.AllFields() {
		names = append(names, field.Name)
	}
	want := []string{"tabac", "cigarettes", "anesthesie", "dose"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if title, ok := schema.SectionOf("dose"); !ok || title != "Anamnèse" {
		t.Fatalf("SectionOf(dose) = %q, %v", title, ok)
	}
	if _, ok := schema.Lookup("absent"); ok {
		t.Fatalf("Lookup found a field that does not exist")
	}
}
