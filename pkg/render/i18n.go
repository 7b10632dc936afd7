package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslation is reported when a key has no message.
var ErrMissingTranslation = errors.New("render: missing translation")

// Translator resolves chrome strings (panel titles, button labels, boolean
// words). Schema labels are authored text and are never translated.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog is a Translator backed by locale → key → fmt pattern. Locales fall
// back to their language ("fr-CA" → "fr").
type Catalog map[string]map[string]string

// Translate implements Translator.
func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		messages, ok := c[candidate]
		if !ok {
			continue
		}
		if pattern, ok := messages[key]; ok {
			if len(args) == 0 {
				return pattern, nil
			}
			return fmt.Sprintf(pattern, args...), nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

// Chrome keys used by the renderers and exporters.
const (
	KeyMissingTitle  = "missing.title"
	KeyMissingMarker = "missing.marker"
	KeyMissingCount  = "missing.count"
	KeyComplete      = "missing.none"
	KeySubmit        = "form.submit"
	KeyNoteTitle     = "note.title"
	KeyYes           = "bool.yes"
	KeyNo            = "bool.no"
	KeyChartNormal   = "chart.normal"
	KeyNoAnswer      = "value.none"

	// Terminal prompts.
	KeyFillMissing   = "prompt.fill_missing"
	KeyChartEdit     = "prompt.chart_edit"
	KeyChartSite     = "prompt.chart_site"
	KeyChartState    = "prompt.chart_state"
	KeyInvalidNumber = "prompt.invalid_number"
	KeyInvalidDate   = "prompt.invalid_date"
	KeyOutOfRange    = "prompt.out_of_range"
	KeyUnknownSite   = "prompt.unknown_site"
)

// DefaultCatalog carries the French messages the product ships with and an
// English fallback.
var DefaultCatalog = Catalog{
	"fr": {
		KeyMissingTitle:  "Champs obligatoires manquants",
		KeyMissingMarker: "Champ obligatoire",
		KeyMissingCount:  "%d champ(s) à compléter",
		KeyComplete:      "Formulaire complet",
		KeySubmit:        "Enregistrer",
		KeyNoteTitle:     "Compte rendu",
		KeyYes:           "Oui",
		KeyNo:            "Non",
		KeyChartNormal:   "RAS",
		KeyNoAnswer:      "Non renseigné",
		KeyFillMissing:   "Compléter les %d champ(s) manquant(s) ?",
		KeyChartEdit:     "Modifier le schéma dentaire ?",
		KeyChartSite:     "Dent (numérotation FDI)",
		KeyChartState:    "État de la dent %s",
		KeyInvalidNumber: "Nombre invalide",
		KeyInvalidDate:   "Date invalide (JJ/MM/AAAA)",
		KeyOutOfRange:    "Valeur hors limites (%s à %s)",
		KeyUnknownSite:   "Dent inconnue",
	},
	"en": {
		KeyMissingTitle:  "Missing required fields",
		KeyMissingMarker: "Required field",
		KeyMissingCount:  "%d field(s) to complete",
		KeyComplete:      "Form complete",
		KeySubmit:        "Save",
		KeyNoteTitle:     "Note",
		KeyYes:           "Yes",
		KeyNo:            "No",
		KeyChartNormal:   "Nothing to report",
		KeyNoAnswer:      "Not answered",
		KeyFillMissing:   "Complete the %d missing field(s)?",
		KeyChartEdit:     "Edit the dental chart?",
		KeyChartSite:     "Tooth (FDI numbering)",
		KeyChartState:    "State of tooth %s",
		KeyInvalidNumber: "Invalid number",
		KeyInvalidDate:   "Invalid date (DD/MM/YYYY)",
		KeyOutOfRange:    "Value out of range (%s to %s)",
		KeyUnknownSite:   "Unknown tooth",
	},
}

// DefaultLocale is used when callers do not pick one.
const DefaultLocale = "fr-FR"

// Translate resolves key with t, falling back to DefaultCatalog and finally
// to the key itself.
func Translate(t Translator, locale, key string, args ...any) string {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	if t != nil {
		if msg, err := t.Translate(locale, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if msg, err := DefaultCatalog.Translate(locale, key, args...); err == nil {
		return msg
	}
	if msg, err := DefaultCatalog.Translate(DefaultLocale, key, args...); err == nil {
		return msg
	}
	return key
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return nil
	}
	chain := []string{locale}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		chain = append(chain, strings.ToLower(locale[:i]))
	}
	return chain
}
