// Package command turns operator intents into canonical, bounds-checked
// console commands. A request flows through Validate, Resolve and Encode; the
// Dispatcher sequences the three and hands the result to a Transport.
package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// Operation identifies an operator intent such as "mute" or "parametricEq"
type Operation string

// Fields holds the loosely typed field values collected by the UI layer
type Fields map[string]any

// Request is one operation plus its raw field values
type Request struct {
	Operation Operation `json:"operation" yaml:"operation"`
	Fields    Fields    `json:"fields" yaml:"fields"`
}

// ValueType is the type of a validated value
type ValueType uint8

const (
	TypeBool ValueType = iota + 1
	TypeInt
	TypeFloat
	TypeString
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a validated scalar
type Value struct {
	typ ValueType
	b   bool
	i   int
	f   float64
	s   string
}

func BoolValue(b bool) Value       { return Value{typ: TypeBool, b: b} }
func IntValue(i int) Value         { return Value{typ: TypeInt, i: i} }
func FloatValue(f float64) Value   { return Value{typ: TypeFloat, f: f} }
func StringValue(s string) Value   { return Value{typ: TypeString, s: s} }
func (v Value) Type() ValueType    { return v.typ }
func (v Value) Bool() bool         { return v.b }
func (v Value) Int() int           { return v.i }
func (v Value) Float() float64     { return v.f }
func (v Value) Str() string        { return v.s }
func (v Value) IsZero() bool       { return v.typ == 0 }
func (v Value) String() string     { return fmt.Sprint(v.Interface()) }
func (v Value) Equal(o Value) bool { return v == o }

// Interface returns the value as bool, int, float64 or string
func (v Value) Interface() any {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	default:
		return nil
	}
}

// Space separates channel addresses from socket addresses
type Space uint8

const (
	SpaceChannel Space = iota + 1
	SpaceSocket
)

func (s Space) String() string {
	switch s {
	case SpaceChannel:
		return "channel"
	case SpaceSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// Role names the part a target plays in a command
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
	RoleSocket      Role = "socket"
)

// Target is a validated but not yet resolved (kind, index) pair
type Target struct {
	Role     Role
	Space    Space
	Channel  console.ChannelKind
	Socket   console.SocketKind
	Index    int
	Requires console.Capability
}

// KindID returns the wire id of the target's kind
func (t Target) KindID() string {
	if t.Space == SpaceSocket {
		return t.Socket.ID()
	}
	return t.Channel.ID()
}

// Address is a resolved target. The kind tag keeps channel and socket address
// spaces apart even when the numeric index is the same.
type Address struct {
	Space Space  `json:"space"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%s/%d", a.Space, a.Kind, a.Index)
}

// ParameterSet is the output of Validate. Every value in it has passed range
// and cross-field checks; a ParameterSet is never partially valid.
type ParameterSet struct {
	op      Operation
	values  map[string]Value
	targets map[Role]Target
}

func newParameterSet(op Operation) *ParameterSet {
	return &ParameterSet{
		op:      op,
		values:  make(map[string]Value),
		targets: make(map[Role]Target),
	}
}

// Operation returns the operation the set was validated for
func (p *ParameterSet) Operation() Operation { return p.op }

// Has reports whether field was validated into the set
func (p *ParameterSet) Has(field string) bool {
	_, ok := p.values[field]
	return ok
}

// Value returns the validated value of field
func (p *ParameterSet) Value(field string) (Value, bool) {
	v, ok := p.values[field]
	return v, ok
}

func (p *ParameterSet) Bool(field string) bool     { return p.values[field].Bool() }
func (p *ParameterSet) Int(field string) int       { return p.values[field].Int() }
func (p *ParameterSet) Float(field string) float64 { return p.values[field].Float() }
func (p *ParameterSet) Text(field string) string   { return p.values[field].Str() }

// Target returns the symbolic target for role
func (p *ParameterSet) Target(role Role) (Target, bool) {
	t, ok := p.targets[role]
	return t, ok
}

// Fields returns the validated field names in sorted order
func (p *ParameterSet) Fields() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolution is the output of Resolve: concrete addresses per role plus the
// wire form of renumbered fields
type Resolution struct {
	addresses map[Role]Address
	wire      map[string]Value
}

// Address returns the resolved address for role
func (r *Resolution) Address(role Role) (Address, bool) {
	a, ok := r.addresses[role]
	return a, ok
}

// Wire returns the wire form of a renumbered field
func (r *Resolution) Wire(field string) (Value, bool) {
	v, ok := r.wire[field]
	return v, ok
}

// Transport delivers a finished command to the console. A command is
// delivered whole or not at all.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
}
