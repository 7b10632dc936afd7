package visibility_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/visibility"
)

func revealSchema() model.FormSchema {
	return model.FormSchema{Sections: []model.Section{{
		Title: "Bilan",
		Fields: []model.Field{
			{Kind: model.KindConditionalBoolean, Name: "allergie", Fields: []model.Field{
				{Kind: model.KindText, Name: "allergie_detail"},
			}},
			{Kind: model.KindConditionalChoice, Name: "anesthesie", Options: []model.Option{
				{Value: "generale", Fields: []model.Field{{Kind: model.KindText, Name: "jeune"}}},
				{Value: "locale", Fields: []model.Field{{Kind: model.KindText, Name: "dose"}}},
			}},
			{Kind: model.KindUnknown, DeclaredKind: "signature", Name: "signature"},
		},
	}}}
}

func TestWalk_FollowsSelectedBranches(t *testing.T) {
	cases := []struct {
		name    string
		answers model.AnswerSet
		want    []string
	}{
		{"nothing selected", model.AnswerSet{}, []string{"allergie", "anesthesie"}},
		{"checkbox true", model.AnswerSet{"allergie": true}, []string{"allergie", "allergie_detail", "anesthesie"}},
		{"checkbox truthy string", model.AnswerSet{"allergie": "true"}, []string{"allergie", "anesthesie"}},
		{"locale", model.AnswerSet{"anesthesie": "locale", "jeune": "6h"}, []string{"allergie", "anesthesie", "dose"}},
		{"unknown option", model.AnswerSet{"anesthesie": "sedation"}, []string{"allergie", "anesthesie"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			visibility.WalkSchema(revealSchema(), tc.answers, func(_ model.Section, field model.Field, _ int) {
				got = append(got, field.Name)
			})
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_ReportsDepth(t *testing.T) {
	depths := map[string]int{}
	visibility.WalkSchema(revealSchema(), model.AnswerSet{"allergie": true}, func(_ model.Section, field model.Field, depth int) {
		depths[field.Name] = depth
	})
	if depths["allergie_detail"] != 1 || depths["allergie"] != 0 {
		t.Fatalf("unexpected depths: %v", depths)
	}
}

func TestVisible(t *testing.T) {
	visible := visibility.Visible(revealSchema(), model.AnswerSet{"anesthesie": "generale"})
	if !visible["jeune"] || visible["dose"] || visible["signature"] {
		t.Fatalf("unexpected visible set: %v", visible)
	}
}
