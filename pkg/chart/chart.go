// Package chart models the dental chart answer: one state per tooth for the
// 32 permanent teeth in FDI notation, stored in the AnswerSet as a JSON
// string.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// Sites lists the canonical site identifiers in chart order: upper arch
// right to left, then lower arch right to left.
var Sites = []string{
	"18", "17", "16", "15", "14", "13", "12", "11",
	"21", "22", "23", "24", "25", "26", "27", "28",
	"48", "47", "46", "45", "44", "43", "42", "41",
	"31", "32", "33", "34", "35", "36", "37", "38",
}

// Default states. The first state of any state list is the baseline.
const (
	StateNormal  = "Normal"
	StateMissing = "Missing"
	StateImplant = "Implant"
)

// DefaultStates is used when a chart field does not override its states.
var DefaultStates = []string{StateNormal, StateMissing, StateImplant}

var (
	// ErrUnknownSite is returned for identifiers outside Sites.
	ErrUnknownSite = errors.New("chart: unknown site")
	// ErrUnknownState is returned for states outside the field's state list.
	ErrUnknownState = errors.New("chart: unknown state")
)

var siteIndex = func() map[string]int {
	out := make(map[string]int, len(Sites))
	for i, site := range Sites {
		out[site] = i
	}
	return out
}()

// IsSite reports whether id belongs to the canonical set.
func IsSite(id string) bool {
	_, ok := siteIndex[id]
	return ok
}

// StatesFor returns the state list of a chart field.
func StatesFor(field model.Field) []string {
	if len(field.States) > 0 {
		return field.States
	}
	return DefaultStates
}

// Chart maps every canonical site to its state.
type Chart map[string]string

// Baseline returns a chart with every site in the first state.
func Baseline(states []string) Chart {
	base := StateNormal
	if len(states) > 0 {
		base = states[0]
	}
	out := make(Chart, len(Sites))
	for _, site := range Sites {
		out[site] = base
	}
	return out
}

// Parse decodes a stored chart value, either its JSON string form or an
// already decoded map, and merges it over the baseline so every site has a
// state. Unknown sites and states outside the list are ignored. On a decode
// error the baseline is returned together with the error.
func Parse(value any, states []string) (Chart, error) {
	if len(states) == 0 {
		states = DefaultStates
	}
	out := Baseline(states)

	raw, err := decode(value)
	if err != nil {
		return out, err
	}
	for site, state := range raw {
		if !IsSite(site) {
			continue
		}
		s, ok := state.(string)
		if !ok || !slices.Contains(states, s) {
			continue
		}
		out[site] = s
	}
	return out, nil
}

func decode(value any) (map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(v), &raw); err != nil {
			return nil, fmt.Errorf("chart: decode: %w", err)
		}
		return raw, nil
	case Chart:
		return toAnyMap(v), nil
	case map[string]string:
		return toAnyMap(v), nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("chart: unsupported value %T", value)
	}
}

func toAnyMap[M ~map[string]string](in M) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Encode serialises the chart to its JSON string form. Keys are emitted in
// sorted order so equal charts encode identically.
func (c Chart) Encode() string {
	data, err := json.Marshal(map[string]string(c))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Set changes the state of one site.
func (c Chart) Set(site, state string, states []string) error {
	if !IsSite(site) {
		return fmt.Errorf("%w %q", ErrUnknownSite, site)
	}
	if len(states) == 0 {
		states = DefaultStates
	}
	if !slices.Contains(states, state) {
		return fmt.Errorf("%w %q", ErrUnknownState, state)
	}
	c[site] = state
	return nil
}

// Load reads the chart stored under field.Name. A corrupt stored value
// yields the baseline together with the decode error.
func Load(answers model.AnswerSet, field model.Field) (Chart, error) {
	return Parse(answers[field.Name], StatesFor(field))
}

// Store writes the serialised chart under field.Name.
func Store(answers model.AnswerSet, field model.Field, c Chart) {
	answers[field.Name] = c.Encode()
}

// SetState updates one site of the chart stored under field.Name and writes
// the whole chart back. A corrupt stored value is replaced by the baseline.
func SetState(answers model.AnswerSet, field model.Field, site, state string) error {
	current, _ := Load(answers, field)
	if err := current.Set(site, state, StatesFor(field)); err != nil {
		return err
	}
	Store(answers, field, current)
	return nil
}

// Group lists the sites sharing a non-baseline state.
type Group struct {
	State string   `json:"state"`
	Sites []string `json:"sites"`
}

// Summarize groups sites by state, skipping the baseline state, following
// the declared order of states and the canonical order of sites.
func Summarize(c Chart, states []string) []Group {
	if len(states) == 0 {
		states = DefaultStates
	}
	var out []Group
	for _, state := range states[1:] {
		var sites []string
		for _, site := range Sites {
			if c[site] == state {
				sites = append(sites, site)
			}
		}
		if len(sites) > 0 {
			out = append(out, Group{State: state, Sites: sites})
		}
	}
	return out
}
