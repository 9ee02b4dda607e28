// Package rename maps input field names to output column headers.
package rename

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

type entry struct {
	in  string
	out string
}

// Map holds OUTNAME=INNAME rules. Lookups ignore case. The zero value is an
// empty map ready to use.
type Map struct {
	entries map[string]entry
}

// Parse builds a Map from OUTNAME=INNAME tokens. Only the first '=' splits a
// token, so output names may not contain '=' but input names may. A later
// rule for the same input name replaces an earlier one.
func Parse(args []string) (Map, error) {
	var m Map
	for _, arg := range args {
		out, in, ok := strings.Cut(arg, "=")
		if !ok {
			return Map{}, fmt.Errorf("invalid rename %q: expected OUTNAME=INNAME", arg)
		}
		m.Set(in, out)
	}
	return m, nil
}

// FromPairs builds a Map from an OUTNAME to INNAME mapping, as read from a
// config file. Entries are applied in OUTNAME order so duplicates resolve
// deterministically.
func FromPairs(pairs map[string]string) Map {
	outs := make([]string, 0, len(pairs))
	for out := range pairs {
		outs = append(outs, out)
	}
	sort.Strings(outs)
	var m Map
	for _, out := range outs {
		m.Set(pairs[out], out)
	}
	return m
}

// Set maps input name in to output name out.
func (m *Map) Set(in, out string) {
	if m.entries == nil {
		m.entries = map[string]entry{}
	}
	m.entries[key(in)] = entry{in: in, out: out}
}

// Lookup returns the output name for in, ignoring case.
func (m Map) Lookup(in string) (string, bool) {
	e, ok := m.entries[key(in)]
	return e.out, ok
}

// Len returns the number of rules.
func (m Map) Len() int { return len(m.entries) }

// Merge returns a new Map holding the rules of m overridden by those of other.
func (m Map) Merge(other Map) Map {
	var out Map
	for _, e := range m.entries {
		out.Set(e.in, e.out)
	}
	for _, e := range other.entries {
		out.Set(e.in, e.out)
	}
	return out
}

// key folds name with a fresh Caser; a Caser keeps state between calls.
func key(name string) string { return cases.Fold().String(name) }
