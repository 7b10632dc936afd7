package vanilla_test

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-clinicform/pkg/chart"
	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/render"
	"github.com/goliatone/go-clinicform/pkg/renderers/vanilla"
	"github.com/goliatone/go-clinicform/pkg/testsupport"
)

const consultationSchema = `
metadata:
  name: Consultation
sections:
  - title: Motif
    fields:
      - type: text
        name: nom
        label: Nom <b>patient</b>
        required: true
        help: Nom <script>x</script>usuel
      - type: conditional-checkbox
        name: tabac
        label: Tabac
        fields:
          - type: text
            name: paquets
            label: Paquets
            required: true
      - type: conditional-select
        name: suivi
        label: Suivi
        options:
          - value: oui
            label: Oui
            fields:
              - type: date
                name: date_suivi
                label: Date
          - value: non
            label: Non
      - type: checkbox
        name: examens
        label: Examens
        options: [pano, cbct]
  - title: Examen
    fields:
      - type: steps
        name: douleur
        label: Douleur
        steps: [aucune, légère, forte]
      - type: range
        name: ouverture
        label: Ouverture
        min: 0
        max: 60
        unit: mm
      - type: teeth
        name: dents
        label: Schéma
      - type: signature
        name: signature
`

func renderForm(t *testing.T, options render.RenderOptions) string {
	t.Helper()

	schema := testsupport.MustParseSchema(t, consultationSchema)
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), schema, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Errorf("output unexpectedly contains %q", fragment)
		}
	}
}

func TestRenderer_EditableForm(t *testing.T) {
	html := renderForm(t, render.RenderOptions{
		Values: model.AnswerSet{
			"tabac":   true,
			"suivi":   "non",
			"douleur": float64(1),
			"dents":   `{"11":"Missing"}`,
		},
	})

	assertContains(t, html,
		`<div class="cf-field cf-field--missing" id="cf-nom" data-kind="text" data-depth="0">`,
		`Nom <b>patient</b> <span class="cf-required" aria-hidden="true">*</span>`,
		`aria-required="true" aria-invalid="true" aria-describedby="cf-nom-help"`,
		`>Nom usuel</small>`,
		`<div class="cf-reveal" id="cf-tabac-reveal" data-reveal-for="tabac">`,
		`<div class="cf-field cf-field--missing" id="cf-paquets" data-kind="text" data-depth="1">`,
		`<div class="cf-field cf-field--wide" id="cf-suivi"`,
		`<input type="radio" name="suivi" value="non" checked> Non`,
		`<input type="hidden" name="examens" value="">`,
		`<input type="hidden" name="tabac" value="false">`,
		`<select id="cf-douleur-input" name="douleur">`,
		`<option value="1" selected>légère</option>`,
		`<input type="number" id="cf-ouverture-input" name="ouverture" min="0" max="60" value="">`,
		`<span class="cf-unit">mm</span>`,
		`<div class="cf-field cf-field--wide" id="cf-dents"`,
		`<select name="dents[11]"><option value="Normal">Normal</option><option value="Missing" selected>Missing</option>`,
		`<p class="cf-chart__summary">Missing: 11</p>`,
		`href="#cf-nom"`,
		`href="#cf-paquets"`,
		`2 champ(s) à compléter`,
		`<button type="submit">Enregistrer</button>`,
	)
	assertNotContains(t, html,
		"<script>",
		`id="cf-date_suivi"`,
		`id="cf-signature"`,
		`Formulaire complet`,
	)
	if strings.Index(html, `href="#cf-nom"`) > strings.Index(html, `href="#cf-paquets"`) {
		t.Fatal("missing panel is not in schema order")
	}
}

func TestRenderer_ChartSummaryUsesFieldStates(t *testing.T) {
	schema := testsupport.MustParseSchema(t, `
metadata:
  name: Bilan
sections:
  - title: Examen
    fields:
      - type: teeth
        name: dents
        label: Schéma
        states: [Saine, Absente, Couronne]
`)
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), schema, render.RenderOptions{
		Values: model.AnswerSet{"dents": `{"21":"Couronne","11":"Absente"}`},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	assertContains(t, html, `<p class="cf-chart__summary">Absente: 11; Couronne: 21</p>`)
	assertNotContains(t, html, `Saine:`)
}

func TestRenderer_UnansweredRangesPostNothing(t *testing.T) {
	html := renderForm(t, render.RenderOptions{Values: model.AnswerSet{}})
	assertContains(t, html,
		`<option value="" selected>Non renseigné</option>`,
		`<option value="0">aucune</option>`,
		`name="ouverture" min="0" max="60" value=""`,
	)
	assertNotContains(t, html, `type="range"`, `<option value="0" selected>`)

	schema := testsupport.MustParseSchema(t, consultationSchema)
	got := vanilla.DecodeForm(schema, url.Values{"douleur": {""}, "ouverture": {" "}})
	want := model.AnswerSet{"douleur": nil, "ouverture": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded answers mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"douleur", "ouverture"} {
		if !model.IsBlank(got[name]) {
			t.Errorf("%s decoded as %v, want blank", name, got[name])
		}
	}
}

func TestRenderer_RevealsSelectedBranch(t *testing.T) {
	html := renderForm(t, render.RenderOptions{
		Values: model.AnswerSet{"nom": "Durand", "suivi": "oui", "tabac": false, "paquets": "stale"},
	})
	assertContains(t, html,
		`id="cf-date_suivi" data-kind="text" data-depth="1"`,
		`<input type="date" id="cf-date_suivi-input" name="date_suivi" value="">`,
		`Formulaire complet`,
	)
	assertNotContains(t, html, `id="cf-paquets"`, `cf-field--missing`)
}

func TestRenderer_EscapesValues(t *testing.T) {
	html := renderForm(t, render.RenderOptions{
		Values: model.AnswerSet{"nom": `Du"rand <i>`},
		Note:   "<b>Note</b> & suite\nligne",
	})
	assertContains(t, html,
		`value="Du&#34;rand &lt;i&gt;"`,
		`<div class="cf-note__text"><p>Note &amp; suite<br/>ligne</p></div>`,
	)
	assertNotContains(t, html, `<b>Note</b>`)
}

func TestRenderer_ReadOnly(t *testing.T) {
	html := renderForm(t, render.RenderOptions{
		ReadOnly: true,
		Missing:  []string{},
		Values: model.AnswerSet{
			"nom":       "Durand",
			"tabac":     true,
			"douleur":   float64(2),
			"examens":   []any{"pano"},
			"ouverture": float64(42),
		},
	})
	assertContains(t, html,
		`data-readonly="true"`,
		`<div class="cf-value">Durand</div>`,
		`<div class="cf-value">Oui</div>`,
		`<div class="cf-value">Non renseigné</div>`,
		`<div class="cf-value">forte</div>`,
		`<div class="cf-value">pano</div>`,
		`<div class="cf-value">42 mm</div>`,
		`id="cf-paquets"`,
	)
	assertNotContains(t, html,
		`<input`,
		`<button`,
		`cf-field--missing`,
		`cf-missing`,
	)
}

func TestRenderer_HiddenFieldsAndLocale(t *testing.T) {
	html := renderForm(t, render.RenderOptions{
		Locale: "en-GB",
		Action: "/records/abc/pre-op",
		Method: "POST",
		Hidden: render.MergeHiddenFields(nil, render.SectionField("pre-op"), render.RecordField("abc")),
	})
	assertContains(t, html,
		`method="post" action="/records/abc/pre-op"`,
		`<button type="submit">Save</button>`,
		`1 field(s) to complete`,
	)
	record := strings.Index(html, `<input type="hidden" name="record_id" value="abc">`)
	section := strings.Index(html, `<input type="hidden" name="section" value="pre-op">`)
	if record < 0 || section < 0 || record > section {
		t.Fatalf("hidden fields not rendered in name order: record=%d section=%d", record, section)
	}
}

func TestRenderer_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	page := `<main data-form="{{ form.name }}">{% for item in missing %}[{{ item.name }}]{% endfor %}</main>`
	if err := os.WriteFile(filepath.Join(dir, "templates", "form.tmpl"), []byte(page), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	renderer, err := vanilla.New(vanilla.WithTemplatesDir(dir))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), testsupport.MustParseSchema(t, consultationSchema), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), `<main data-form="Consultation">[nom]</main>`; got != want {
		t.Fatalf("render = %q, want %q", got, want)
	}
}

type stubTemplateRenderer struct {
	name string
	data any
}

func (s *stubTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return s.RenderTemplate(name, data, out...)
}

func (s *stubTemplateRenderer) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	s.name = name
	s.data = data
	return "<stub>", nil
}

func (s *stubTemplateRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (s *stubTemplateRenderer) RegisterFunc(string, any) error { return nil }

func (s *stubTemplateRenderer) GlobalContext(any) error { return nil }

func TestRenderer_UsesInjectedTemplateRenderer(t *testing.T) {
	stub := &stubTemplateRenderer{}
	renderer, err := vanilla.New(vanilla.WithTemplateRenderer(stub))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	schema := testsupport.MustParseSchema(t, consultationSchema)

	out, err := renderer.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "<stub>" {
		t.Fatalf("unexpected output %q", out)
	}
	if stub.name != vanilla.FormTemplate {
		t.Fatalf("rendered %q, want %q", stub.name, vanilla.FormTemplate)
	}
	data, ok := stub.data.(map[string]any)
	if !ok {
		t.Fatalf("template data is %T", stub.data)
	}
	if sections, _ := data["sections"].([]any); len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %v", data["sections"])
	}
	if missing, _ := data["missing"].([]any); len(missing) != 1 {
		t.Fatalf("expected nom only in missing panel, got %v", data["missing"])
	}
}

func TestFullRow(t *testing.T) {
	cases := []struct {
		name  string
		field model.Field
		want  bool
	}{
		{"textarea", model.Field{Kind: model.KindText, InputType: model.InputTextarea}, true},
		{"text", model.Field{Kind: model.KindText}, false},
		{"chart", model.Field{Kind: model.KindChart}, true},
		{"short choice", model.Field{Kind: model.KindSingleChoice, Options: make([]model.Option, 3)}, false},
		{"long choice", model.Field{Kind: model.KindSingleChoice, Options: make([]model.Option, 4)}, true},
		{"flat conditional", model.Field{Kind: model.KindConditionalChoice, Options: []model.Option{{Value: "a"}}}, false},
		{"nested conditional", model.Field{Kind: model.KindConditionalChoice, Options: []model.Option{
			{Value: "a", Fields: []model.Field{{Kind: model.KindText, Name: "x"}}},
		}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := vanilla.FullRow(tc.field); got != tc.want {
				t.Fatalf("FullRow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecodeForm(t *testing.T) {
	schema := testsupport.MustParseSchema(t, consultationSchema)
	form := url.Values{
		"nom":       {"Durand"},
		"tabac":     {"false", "true"},
		"suivi":     {"oui"},
		"examens":   {"", "pano"},
		"douleur":   {"2"},
		"ouverture": {"42.5"},
		"dents[11]": {"Missing"},
		"dents[12]": {"Bogus"},
		"ignored":   {"x"},
	}

	dents := chart.Baseline(chart.DefaultStates)
	dents["11"] = chart.StateMissing
	want := model.AnswerSet{
		"nom":       "Durand",
		"tabac":     true,
		"suivi":     "oui",
		"examens":   []string{"pano"},
		"douleur":   float64(2),
		"ouverture": 42.5,
		"dents":     dents.Encode(),
	}
	if diff := cmp.Diff(want, vanilla.DecodeForm(schema, form)); diff != "" {
		t.Fatalf("decoded answers mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeForm_UncheckedMarkers(t *testing.T) {
	schema := testsupport.MustParseSchema(t, consultationSchema)
	got := vanilla.DecodeForm(schema, url.Values{"tabac": {"false"}, "examens": {""}})
	want := model.AnswerSet{"tabac": false, "examens": []string{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded answers mismatch (-want +got):\n%s", diff)
	}
}
