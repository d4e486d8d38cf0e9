package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Command is the terminal artifact handed to a transport: an operation name
// plus a flat parameter mapping with no symbolic references left. Commands are
// immutable once built.
type Command struct {
	name   string
	params map[string]Value
}

// Name returns the wire operation name, e.g. "mute_on"
func (c Command) Name() string { return c.name }

// Len returns the number of parameters
func (c Command) Len() int { return len(c.params) }

// Has reports whether the command carries key
func (c Command) Has(key string) bool {
	_, ok := c.params[key]
	return ok
}

// Param returns the value of key as bool, int, float64 or string
func (c Command) Param(key string) (any, bool) {
	v, ok := c.params[key]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// Int returns an integer parameter
func (c Command) Int(key string) (int, bool) {
	v, ok := c.params[key]
	if !ok || v.Type() != TypeInt {
		return 0, false
	}
	return v.Int(), true
}

// Bool returns a boolean parameter
func (c Command) Bool(key string) (bool, bool) {
	v, ok := c.params[key]
	if !ok || v.Type() != TypeBool {
		return false, false
	}
	return v.Bool(), true
}

// Float returns a real parameter
func (c Command) Float(key string) (float64, bool) {
	v, ok := c.params[key]
	if !ok || v.Type() != TypeFloat {
		return 0, false
	}
	return v.Float(), true
}

// Text returns a string parameter
func (c Command) Text(key string) (string, bool) {
	v, ok := c.params[key]
	if !ok || v.Type() != TypeString {
		return "", false
	}
	return v.Str(), true
}

// Keys returns the parameter names in sorted order
func (c Command) Keys() []string {
	keys := make([]string, 0, len(c.params))
	for k := range c.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Params returns a copy of the parameters
func (c Command) Params() map[string]any {
	out := make(map[string]any, len(c.params))
	for k, v := range c.params {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether both commands have the same name and parameters
func (c Command) Equal(o Command) bool {
	if c.name != o.name || len(c.params) != len(o.params) {
		return false
	}
	for k, v := range c.params {
		if ov, ok := o.params[k]; !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.name)
	for _, k := range c.Keys() {
		fmt.Fprintf(&b, " %s=%v", k, c.params[k].Interface())
	}
	return b.String()
}

type commandJSON struct {
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params"`
}

// MarshalJSON encodes the command with sorted parameter keys, so equal
// commands always produce identical bytes
func (c Command) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(commandJSON{Operation: c.name, Params: c.Params()}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// builder assembles a command; only the encoder uses it
type builder struct {
	name   string
	params map[string]Value
}

func newBuilder(name string) *builder {
	return &builder{name: name, params: make(map[string]Value)}
}

func (b *builder) set(key string, v Value) *builder {
	b.params[key] = v
	return b
}

func (b *builder) setInt(key string, i int) *builder       { return b.set(key, IntValue(i)) }
func (b *builder) setBool(key string, v bool) *builder     { return b.set(key, BoolValue(v)) }
func (b *builder) setFloat(key string, f float64) *builder { return b.set(key, FloatValue(f)) }
func (b *builder) setText(key string, s string) *builder   { return b.set(key, StringValue(s)) }

func (b *builder) build() Command {
	return Command{name: b.name, params: b.params}
}
