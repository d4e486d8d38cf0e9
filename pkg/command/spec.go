package command

import (
	"math"
	"strings"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// Numbering names a transform between the operator-facing number and the
// number sent on the wire
type Numbering string

const (
	NumberingNone        Numbering = ""
	NumberingScene       Numbering = "scene"        // reserved band excluded, otherwise unchanged
	NumberingCueList     Numbering = "cue_list"     // wire = presented - 1
	NumberingMIDIChannel Numbering = "midi_channel" // wire = presented - 1
)

// FieldSpec describes one operator field of an operation
type FieldSpec struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      ValueType `json:"-"`
	TypeName  string    `json:"type"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	Step      float64   `json:"step,omitempty"`
	MaxLength int       `json:"maxLength,omitempty"`
	Choices   string    `json:"choices,omitempty"`
	Numbering Numbering `json:"numbering,omitempty"`

	intChoices  *console.Choices[int]
	textChoices *console.Choices[string]
}

func newField(id, label string, typ ValueType) FieldSpec {
	return FieldSpec{ID: id, Label: label, Type: typ, TypeName: typ.String()}
}

func (f FieldSpec) clone() FieldSpec {
	if f.Min != nil {
		lo := *f.Min
		f.Min = &lo
	}
	if f.Max != nil {
		hi := *f.Max
		f.Max = &hi
	}
	return f
}

func boolField(id, label string) FieldSpec {
	return newField(id, label, TypeBool)
}

func intField(id, label string, lo, hi int) FieldSpec {
	f := newField(id, label, TypeInt)
	fmin, fmax := float64(lo), float64(hi)
	f.Min, f.Max = &fmin, &fmax
	return f
}

func floatField(id, label string, lo, hi, step float64) FieldSpec {
	f := newField(id, label, TypeFloat)
	f.Min, f.Max = &lo, &hi
	f.Step = step
	return f
}

func intChoiceField(id, label string, table *console.Choices[int]) FieldSpec {
	f := newField(id, label, TypeInt)
	f.intChoices = table
	f.Choices = table.Name()
	return f
}

func stringChoiceField(id, label string, table *console.Choices[string]) FieldSpec {
	f := newField(id, label, TypeString)
	f.textChoices = table
	f.Choices = table.Name()
	return f
}

func textField(id, label string, maxLength int) FieldSpec {
	f := newField(id, label, TypeString)
	f.MaxLength = maxLength
	return f
}

func numberedField(id, label string, numbering Numbering) FieldSpec {
	f := newField(id, label, TypeInt)
	f.Numbering = numbering
	return f
}

// check validates an already coerced value against the field's constraints
func (f FieldSpec) check(op Operation, v Value) error {
	switch f.Type {
	case TypeInt:
		if err := f.checkRange(op, float64(v.Int())); err != nil {
			return err
		}
		if f.intChoices != nil && !f.intChoices.Contains(v.Int()) {
			return invalid(op, f.ID, RuleChoice, v.Int(), "not a member of %s", f.intChoices.Name())
		}
	case TypeFloat:
		if err := f.checkRange(op, v.Float()); err != nil {
			return err
		}
		if f.Step > 0 {
			n := v.Float() / f.Step
			if math.Abs(n-math.Round(n)) > 1e-9 {
				return invalid(op, f.ID, RuleStep, v.Float(), "must be a multiple of %g", f.Step)
			}
		}
	case TypeString:
		if f.textChoices != nil && !f.textChoices.Contains(v.Str()) {
			return invalid(op, f.ID, RuleChoice, v.Str(), "not a member of %s", f.textChoices.Name())
		}
		if f.MaxLength > 0 {
			if len(v.Str()) > f.MaxLength {
				return invalid(op, f.ID, RuleLength, v.Str(), "at most %d characters", f.MaxLength)
			}
			if i := strings.IndexFunc(v.Str(), func(r rune) bool { return r < 0x20 || r > 0x7E }); i >= 0 {
				return invalid(op, f.ID, RuleCharset, v.Str(), "printable ASCII only")
			}
		}
	}
	return nil
}

func (f FieldSpec) checkRange(op Operation, x float64) error {
	if f.Min != nil && x < *f.Min {
		return invalid(op, f.ID, RuleRange, x, "must be at least %g", *f.Min)
	}
	if f.Max != nil && x > *f.Max {
		return invalid(op, f.ID, RuleRange, x, "must be at most %g", *f.Max)
	}
	return nil
}

// read coerces and checks the raw value of the field
func (f FieldSpec) read(op Operation, fields Fields) (Value, error) {
	raw, ok := fields[f.ID]
	if !ok || raw == nil {
		return Value{}, invalid(op, f.ID, RuleRequired, nil, "missing")
	}

	var v Value
	switch f.Type {
	case TypeBool:
		b, err := toBool(raw)
		if err != nil {
			return Value{}, invalid(op, f.ID, RuleType, raw, "%v", err)
		}
		v = BoolValue(b)
	case TypeInt:
		i, err := toInt(raw)
		if err != nil {
			return Value{}, invalid(op, f.ID, intRule(err), raw, "%v", err)
		}
		v = IntValue(i)
	case TypeFloat:
		x, err := toFloat(raw)
		if err != nil {
			return Value{}, invalid(op, f.ID, RuleType, raw, "%v", err)
		}
		v = FloatValue(x)
	case TypeString:
		s, err := toText(raw)
		if err != nil {
			return Value{}, invalid(op, f.ID, RuleType, raw, "%v", err)
		}
		v = StringValue(s)
	}

	if err := f.check(op, v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// TargetSpec describes where an operation reads a (kind, index) pair from.
// KindField carries the kind id and is empty when the kind is Fixed. Prefix
// is applied to the kind-specific index field, and Alias names a generic
// index field accepted in its place.
type TargetSpec struct {
	Role      Role                `json:"role"`
	Space     Space               `json:"-"`
	KindField string              `json:"kindField,omitempty"`
	Prefix    string              `json:"prefix,omitempty"`
	Alias     string              `json:"alias,omitempty"`
	Fixed     bool                `json:"fixed,omitempty"`
	Kind      console.ChannelKind `json:"-"`
	Requires  console.Capability  `json:"-"`
	Kinds     []string            `json:"kinds"`
}

func channelTarget(role Role, kindField, prefix, alias string, requires console.Capability) TargetSpec {
	ts := TargetSpec{
		Role:      role,
		Space:     SpaceChannel,
		KindField: kindField,
		Prefix:    prefix,
		Alias:     alias,
		Requires:  requires,
	}
	for _, k := range console.KindsWith(requires) {
		ts.Kinds = append(ts.Kinds, k.ID())
	}
	return ts
}

func fixedTarget(role Role, kind console.ChannelKind) TargetSpec {
	return TargetSpec{
		Role:  role,
		Space: SpaceChannel,
		Fixed: true,
		Kind:  kind,
		Kinds: []string{kind.ID()},
	}
}

func socketTarget() TargetSpec {
	ts := TargetSpec{
		Role:      RoleSocket,
		Space:     SpaceSocket,
		KindField: "socketType",
		Alias:     "socketNo",
	}
	for _, k := range console.SocketKinds() {
		ts.Kinds = append(ts.Kinds, k.ID())
	}
	return ts
}

// read parses the kind and the raw index. Applicability and range are left to
// the resolver.
func (ts TargetSpec) read(op Operation, fields Fields) (Target, error) {
	t := Target{Role: ts.Role, Space: ts.Space, Requires: ts.Requires}

	var indexField string
	switch {
	case ts.Fixed:
		t.Channel = ts.Kind
		indexField = ts.Kind.Field(ts.Prefix)
	default:
		raw, ok := fields[ts.KindField]
		if !ok || raw == nil {
			return Target{}, invalid(op, ts.KindField, RuleRequired, nil, "missing")
		}
		id, isString := raw.(string)
		if !isString {
			return Target{}, invalid(op, ts.KindField, RuleType, raw, "kind must be a string id")
		}
		id = strings.TrimSpace(id)
		if ts.Space == SpaceSocket {
			k, ok := console.ParseSocketKind(id)
			if !ok {
				return Target{}, invalid(op, ts.KindField, RuleChoice, id, "unknown socket kind")
			}
			t.Socket = k
			indexField = k.Field(ts.Prefix)
		} else {
			k, ok := console.ParseChannelKind(id)
			if !ok {
				return Target{}, invalid(op, ts.KindField, RuleChoice, id, "unknown channel kind")
			}
			t.Channel = k
			indexField = k.Field(ts.Prefix)
		}
	}

	index, err := ts.readIndex(op, indexField, fields)
	if err != nil {
		return Target{}, err
	}
	t.Index = index
	return t, nil
}

func (ts TargetSpec) readIndex(op Operation, field string, fields Fields) (int, error) {
	read := func(name string) (int, bool, error) {
		raw, ok := fields[name]
		if !ok || raw == nil {
			return 0, false, nil
		}
		i, err := toInt(raw)
		if err != nil {
			return 0, true, invalid(op, name, intRule(err), raw, "%v", err)
		}
		return i, true, nil
	}

	index, found, err := read(field)
	if err != nil {
		return 0, err
	}
	if ts.Alias == "" || ts.Alias == field {
		if !found {
			return 0, invalid(op, field, RuleRequired, nil, "missing")
		}
		return index, nil
	}

	alias, aliasFound, err := read(ts.Alias)
	if err != nil {
		return 0, err
	}
	switch {
	case found && aliasFound && index != alias:
		return 0, invalid(op, ts.Alias, RuleConflict, alias, "%s is %d", field, index)
	case found:
		return index, nil
	case aliasFound:
		return alias, nil
	default:
		return 0, invalid(op, field, RuleRequired, nil, "missing")
	}
}

// indexField names the kind-specific index field for the kind currently
// selected in fields, or "" while no known kind is selected
func (ts TargetSpec) indexField(fields Fields) string {
	if ts.Fixed {
		return ts.Kind.Field(ts.Prefix)
	}
	id, _ := fields[ts.KindField].(string)
	id = strings.TrimSpace(id)
	if ts.Space == SpaceSocket {
		if k, ok := console.ParseSocketKind(id); ok {
			return k.Field(ts.Prefix)
		}
		return ""
	}
	if k, ok := console.ParseChannelKind(id); ok {
		return k.Field(ts.Prefix)
	}
	return ""
}
