package schema_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/schema"
)

const yamlSchema = `
metadata:
  name: Première consultation
sections:
  - title: Identité
    fields:
      - type: text
        name: nom
        label: Nom
        required: true
      - type: date
        name: date_consultation
        default: now
      - type: radio
        name: sexe
        options: [F, M]
      - type: checkbox
        name: consentement
      - type: checkbox
        name: examens
        options:
          - value: pano
            default: true
          - cbct
      - type: steps
        name: douleur
        steps: [0, 1, 2, 3]
      - type: slider
        name: ouverture
        min: 0
        max: 60
        unit: mm
      - type: conditional-checkbox
        name: tabac
        fields:
          - type: text
            name: paquets
      - type: teeth
        name: schema_dentaire
`

func TestParse_YAMLAliases(t *testing.T) {
	result, err := schema.Parse([]byte(yamlSchema), "consult.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("unexpected issues: %v", err)
	}

	got := map[string]model.FieldKind{}
	for _, field := range result.Schema.AllFields() {
		got[field.Name] = field.Kind
	}
	want := map[string]model.FieldKind{
		"nom":               model.KindText,
		"date_consultation": model.KindText,
		"sexe":              model.KindSingleChoice,
		"consentement":      model.KindBoolean,
		"examens":           model.KindMultiChoice,
		"douleur":           model.KindSteppedRange,
		"ouverture":         model.KindContinuousRange,
		"tabac":             model.KindConditionalBoolean,
		"paquets":           model.KindText,
		"schema_dentaire":   model.KindChart,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	date, _ := result.Schema.Lookup("date_consultation")
	if !date.IsDate() || date.Default != "now" {
		t.Fatalf("date alias not applied: %+v", date)
	}
	sexe, _ := result.Schema.Lookup("sexe")
	if diff := cmp.Diff([]model.Option{{Value: "F", Label: "F"}, {Value: "M", Label: "M"}}, sexe.Options); diff != "" {
		t.Fatalf("scalar options mismatch (-want +got):\n%s", diff)
	}
	douleur, _ := result.Schema.Lookup("douleur")
	if diff := cmp.Diff([]string{"0", "1", "2", "3"}, douleur.Steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	ouverture, _ := result.Schema.Lookup("ouverture")
	if ouverture.Max == nil || *ouverture.Max != 60 || ouverture.Unit != "mm" {
		t.Fatalf("range attributes lost: %+v", ouverture)
	}
	if result.Schema.Metadata.Name != "Première consultation" {
		t.Fatalf("metadata name = %q", result.Schema.Metadata.Name)
	}
}

func TestParse_JSONShorthandFields(t *testing.T) {
	doc := `{"name":"Contrôle","fields":[{"type":"text","name":"remarques"}]}`
	result, err := schema.Parse([]byte(doc), "controle.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Schema.Sections) != 1 || result.Schema.Sections[0].Title != "Contrôle" {
		t.Fatalf("expected one implicit section, got %+v", result.Schema.Sections)
	}
}

func TestParse_QuarantinesUnknownKinds(t *testing.T) {
	doc := `{"sections":[{"title":"S","fields":[
		{"type":"signature","name":"sig"},
		{"type":"text","name":"nom"}
	]}]}`
	result, err := schema.Parse([]byte(doc), "quarantine.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("quarantine should only warn: %v", err)
	}
	sig, ok := result.Schema.Lookup("sig")
	if !ok || sig.Kind != model.KindUnknown || sig.DeclaredKind != "signature" {
		t.Fatalf("field not quarantined: %+v", sig)
	}
	if len(result.Warnings()) != 1 || result.Warnings()[0].Field != "sig" {
		t.Fatalf("expected one warning for sig, got %+v", result.Warnings())
	}
}

func TestParse_NameCollision(t *testing.T) {
	doc := `{"sections":[{"title":"S","fields":[
		{"type":"conditional-select","name":"anesthesie","options":[
			{"value":"locale","fields":[{"type":"text","name":"dose"}]},
			{"value":"generale","fields":[{"type":"text","name":"dose"}]}
		]}
	]}]}`
	result, err := schema.Parse([]byte(doc), "collision.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !errors.Is(result.Err(), schema.ErrNameCollision) {
		t.Fatalf("expected ErrNameCollision, got %v", result.Err())
	}
}

func TestParse_StructureViolation(t *testing.T) {
	doc := `{"sections":[{"title":"S","fields":[{"name":"sans_type","required":"oui"}]}]}`
	result, err := schema.Parse([]byte(doc), "structure.json")
	if err == nil && !errors.Is(result.Err(), schema.ErrStructure) {
		t.Fatalf("expected a structural error, got %v", result.Err())
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	if _, err := schema.Parse([]byte("   "), "empty.json"); err == nil {
		t.Fatalf("expected an error for an empty document")
	}
	result, err := schema.Parse([]byte(`{"metadata":{"name":"vide"}}`), "nosections.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !errors.Is(result.Err(), schema.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema, got %v", result.Err())
	}
}

func TestCheck_Warnings(t *testing.T) {
	zero, one := 0.0, 1.0
	form := model.FormSchema{Sections: []model.Section{{Title: "S", Fields: []model.Field{
		{Kind: model.KindSingleChoice, Name: "vide"},
		{Kind: model.KindSteppedRange, Name: "paliers"},
		{Kind: model.KindContinuousRange, Name: "plage", Min: &one, Max: &zero},
		{Kind: model.KindMultiChoice, Name: "multi", Options: []model.Option{
			{Value: "a", Fields: []model.Field{{Kind: model.KindText, Name: "jamais"}}},
		}},
		{Kind: model.KindText, Name: ""},
	}}}}

	issues := schema.Check(form)
	var warnings, errs []string
	for _, issue := range issues {
		switch issue.Severity {
		case schema.SeverityWarning:
			warnings = append(warnings, issue.Field)
		case schema.SeverityError:
			errs = append(errs, issue.Path)
		}
	}
	if diff := cmp.Diff([]string{"vide", "paliers", "plage", "multi"}, warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sections[0].fields[4]"}, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Sources(t *testing.T) {
	files := fstest.MapFS{"forms/controle.yaml": {Data: []byte(yamlSchema)}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/controle.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(yamlSchema))
	}))
	defer server.Close()

	loader := schema.NewLoader(
		schema.WithFileSystem(files),
		schema.WithHTTPClient(server.Client()),
	)

	ctx := context.Background()
	fromFS, err := loader.Load(ctx, schema.SourceFromFS("forms/controle.yaml"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	fromURL, err := loader.Load(ctx, schema.SourceFromURL(server.URL+"/controle.yaml"))
	if err != nil {
		t.Fatalf("load url: %v", err)
	}
	if diff := cmp.Diff(fromFS.Schema, fromURL.Schema); diff != "" {
		t.Fatalf("fs and url schemas differ (-fs +url):\n%s", diff)
	}

	if _, err := loader.Load(ctx, schema.SourceFromURL(server.URL+"/absent.yaml")); err == nil {
		t.Fatalf("expected an error for a 404")
	}
	if _, err := schema.NewLoader().Load(ctx, schema.SourceFromURL(server.URL+"/controle.yaml")); err == nil {
		t.Fatalf("expected URL sources to be disabled without a client")
	}
}

func TestLoader_Decorators(t *testing.T) {
	files := fstest.MapFS{"f.json": {Data: []byte(`{"sections":[{"title":"S","fields":[{"type":"text","name":"nom"}]}]}`)}}
	loader := schema.NewLoader(
		schema.WithFileSystem(files),
		schema.WithDecorators(model.DecoratorFunc(func(form *model.FormSchema) error {
			form.Sections[0].Fields[0].Required = true
			return nil
		})),
	)
	result, err := loader.Load(context.Background(), schema.SourceFromFS("f.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !result.Schema.Sections[0].Fields[0].Required {
		t.Fatalf("decorator not applied")
	}
}
