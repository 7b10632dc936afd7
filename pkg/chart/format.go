package chart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// NothingToReport is returned when every site is normal.
	NothingToReport = "RAS"
	// InvalidData is returned for values that cannot be read as a chart.
	InvalidData = "Données du schéma dentaire invalides"
)

// FormatTeeth renders a one-line summary of a chart value, JSON string or
// decoded map: "State: id, id; State: id". States appear in the order they
// are first met when walking site ids in ascending numeric order. Entries in
// the "Normal" state are skipped. It never fails; unreadable input yields
// InvalidData.
func FormatTeeth(value any) string {
	raw, err := decode(value)
	if err != nil {
		return InvalidData
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return siteLess(keys[i], keys[j]) })

	var order []string
	groups := make(map[string][]string)
	for _, key := range keys {
		state, ok := stateString(raw[key])
		if !ok || state == StateNormal {
			continue
		}
		if _, seen := groups[state]; !seen {
			order = append(order, state)
		}
		groups[state] = append(groups[state], key)
	}
	if len(order) == 0 {
		return NothingToReport
	}

	parts := make([]string, 0, len(order))
	for _, state := range order {
		parts = append(parts, state+": "+strings.Join(groups[state], ", "))
	}
	return strings.Join(parts, "; ")
}

// FormatGroups renders a Summarize result as "State: id, id; State: id",
// or NothingToReport when no site leaves the baseline.
func FormatGroups(groups []Group) string {
	if len(groups) == 0 {
		return NothingToReport
	}
	parts := make([]string, 0, len(groups))
	for _, group := range groups {
		parts = append(parts, group.State+": "+strings.Join(group.Sites, ", "))
	}
	return strings.Join(parts, "; ")
}

func stateString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// siteLess orders numeric ids numerically ahead of any other key.
func siteLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
