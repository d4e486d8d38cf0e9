package command

import (
	"fmt"
)

// Validate turns the raw fields of req into a ParameterSet. It reads every
// target and field the operation declares, then any fields that depend on
// them. Fields the operation does not declare are ignored. The first
// ValidationError is returned and no ParameterSet is produced.
func Validate(req Request) (*ParameterSet, error) {
	def, ok := registry[req.Operation]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
	fields := req.Fields
	if fields == nil {
		fields = Fields{}
	}

	ps := newParameterSet(req.Operation)
	for _, ts := range def.Targets {
		t, err := ts.read(req.Operation, fields)
		if err != nil {
			return nil, err
		}
		ps.targets[ts.Role] = t
	}

	for _, fs := range def.Fields {
		v, err := fs.read(req.Operation, fields)
		if err != nil {
			return nil, err
		}
		ps.values[fs.ID] = v
	}

	if def.dependent == nil {
		return ps, nil
	}
	for {
		progressed := false
		for _, fs := range def.dependent(ps) {
			if ps.Has(fs.ID) {
				continue
			}
			v, err := fs.read(req.Operation, fields)
			if err != nil {
				return nil, err
			}
			ps.values[fs.ID] = v
			progressed = true
		}
		if !progressed {
			return ps, nil
		}
	}
}

// RequiredFields lists the fields Validate would read for req given the values
// it already carries. UIs use it to show or hide dependent inputs.
func RequiredFields(req Request) ([]FieldSpec, error) {
	def, ok := registry[req.Operation]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
	out := make([]FieldSpec, 0, len(def.Fields))
	for _, fs := range def.Fields {
		out = append(out, fs.clone())
	}
	if def.dependent == nil {
		return out, nil
	}

	// Read what is readable; stop at the first field that is missing or bad.
	ps := newParameterSet(req.Operation)
	for _, fs := range def.Fields {
		v, err := fs.read(req.Operation, req.Fields)
		if err != nil {
			return out, nil
		}
		ps.values[fs.ID] = v
	}
	seen := make(map[string]bool)
	for {
		progressed := false
		for _, fs := range def.dependent(ps) {
			if seen[fs.ID] {
				continue
			}
			seen[fs.ID] = true
			out = append(out, fs)
			progressed = true
			if v, err := fs.read(req.Operation, req.Fields); err == nil {
				ps.values[fs.ID] = v
			}
		}
		if !progressed {
			return out, nil
		}
	}
}
