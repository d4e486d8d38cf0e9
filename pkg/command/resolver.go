package command

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// Resolve maps the symbolic targets of ps onto console addresses and applies
// the numbering transforms of scenes, cue lists and MIDI channels. Every
// target is checked even if an earlier one failed; the failures are combined.
func Resolve(ps *ParameterSet) (*Resolution, error) {
	if ps == nil {
		return nil, ErrNoParameters
	}
	def, ok := registry[ps.Operation()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, ps.Operation())
	}

	res := &Resolution{
		addresses: make(map[Role]Address, len(def.Targets)),
		wire:      make(map[string]Value),
	}

	var errs error
	for _, ts := range def.Targets {
		t, ok := ps.Target(ts.Role)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s target was not validated", ps.Operation(), ts.Role))
			continue
		}
		addr, err := resolveTarget(ps.Operation(), t)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		res.addresses[ts.Role] = addr
	}

	for _, fs := range def.Fields {
		if fs.Numbering == NumberingNone {
			continue
		}
		wire, err := renumber(ps.Operation(), fs, ps.Int(fs.ID))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		res.wire[fs.ID] = IntValue(wire)
	}

	if errs != nil {
		return nil, errs
	}
	return res, nil
}

// ResolveChannel checks a channel index against its kind; within range the
// address index is the index itself
func ResolveChannel(kind console.ChannelKind, index int) (Address, error) {
	return resolveTarget("", Target{Role: RoleSource, Space: SpaceChannel, Channel: kind, Index: index})
}

// ResolveSocket checks a socket index against its kind
func ResolveSocket(kind console.SocketKind, index int) (Address, error) {
	return resolveTarget("", Target{Role: RoleSocket, Space: SpaceSocket, Socket: kind, Index: index})
}

func resolveTarget(op Operation, t Target) (Address, error) {
	fail := func(reason Reason, format string, args ...any) (Address, error) {
		return Address{}, &AddressingError{
			Operation: op,
			Role:      t.Role,
			Kind:      t.KindID(),
			Index:     t.Index,
			Reason:    reason,
			Detail:    fmt.Sprintf(format, args...),
		}
	}

	switch t.Space {
	case SpaceSocket:
		if !t.Socket.Valid() {
			return fail(ReasonNotApplicable, "unknown socket kind")
		}
		if !t.Socket.Contains(t.Index) {
			return fail(ReasonOutOfRange, "valid range is 0..%d", t.Socket.Count()-1)
		}
	case SpaceChannel:
		if !t.Channel.Valid() {
			return fail(ReasonNotApplicable, "unknown channel kind")
		}
		if t.Requires != 0 && !t.Channel.Has(t.Requires) {
			return fail(ReasonNotApplicable, "%s cannot take part in this operation", t.Channel.Label())
		}
		if !t.Channel.Contains(t.Index) {
			return fail(ReasonOutOfRange, "valid range is 0..%d", t.Channel.Count()-1)
		}
	default:
		return fail(ReasonNotApplicable, "unknown address space")
	}
	return Address{Space: t.Space, Kind: t.KindID(), Index: t.Index}, nil
}

// renumber converts a presented number to its wire form
func renumber(op Operation, fs FieldSpec, n int) (int, error) {
	fail := func(reason Reason, format string, args ...any) (int, error) {
		return 0, &AddressingError{
			Operation: op,
			Role:      Role(fs.ID),
			Kind:      string(fs.Numbering),
			Index:     n,
			Reason:    reason,
			Detail:    fmt.Sprintf(format, args...),
		}
	}

	switch fs.Numbering {
	case NumberingScene:
		if n < 0 || n >= console.SceneCount {
			return fail(ReasonOutOfRange, "valid range is %d..%d", console.ReservedSceneCount, console.SceneCount-1)
		}
		if n < console.ReservedSceneCount {
			return fail(ReasonReserved, "scenes below %d are reserved utility scenes", console.ReservedSceneCount)
		}
		return n, nil
	case NumberingCueList:
		if n < 1 || n > console.CueListCount {
			return fail(ReasonOutOfRange, "valid range is 1..%d", console.CueListCount)
		}
		return n - 1, nil
	case NumberingMIDIChannel:
		if n < console.MIDIChannelMin || n > console.MIDIChannelMax {
			return fail(ReasonOutOfRange, "valid range is %d..%d", console.MIDIChannelMin, console.MIDIChannelMax)
		}
		return n - 1, nil
	default:
		return n, nil
	}
}
