package command

import (
	"fmt"
	"strings"
)

// ParseFields parses "key=value" pairs as typed on a command line. Values stay
// strings; Validate coerces them to the field's type.
func ParseFields(pairs []string) (Fields, error) {
	fields := make(Fields, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("field %q given twice", key)
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, nil
}

// SplitPairs splits a typed line into "key=value" pairs. A new pair starts
// only at a word of the form key=...; other words continue the previous value,
// so "name=Lead Vox mute=true" yields two pairs.
func SplitPairs(line string) []string {
	var pairs []string
	for _, word := range strings.Fields(line) {
		key, _, ok := strings.Cut(word, "=")
		if (ok && isFieldKey(key)) || len(pairs) == 0 {
			pairs = append(pairs, word)
			continue
		}
		pairs[len(pairs)-1] += " " + word
	}
	return pairs
}

func isFieldKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

// Hint lists the inputs an operator still has to supply for req: target kind
// selectors and the fields RequiredFields reports, minus those already present
func Hint(req Request) ([]string, error) {
	def, ok := registry[req.Operation]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}

	var out []string
	missing := func(id string) {
		if _, ok := req.Fields[id]; !ok {
			out = append(out, id)
		}
	}
	for _, ts := range def.Targets {
		if ts.KindField != "" {
			missing(ts.KindField)
		}
		if ts.Alias != "" {
			if _, ok := req.Fields[ts.Alias]; ok {
				continue
			}
		}
		if idx := ts.indexField(req.Fields); idx != "" {
			missing(idx)
		}
	}

	specs, err := RequiredFields(req)
	if err != nil {
		return nil, err
	}
	for _, fs := range specs {
		missing(fs.ID)
	}
	return out, nil
}
