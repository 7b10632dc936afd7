// Package note renders clinical notes from a text template and the answers
// of a form session. Templates use pongo2 syntax with the helpers returned
// by Helpers, for example:
//
//	Patient : {{ uppercase(nom) }}
//	{% if equals(anesthesie, "locale") %}Anesthésie locale, {{ dose }}.{% endif %}
//	Schéma dentaire : {{ format_teeth(schema_dentaire) }}
//
// Rendering never fails from the caller's point of view: compile and
// evaluation errors produce FailureMessage and are logged.
package note
