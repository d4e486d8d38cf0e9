package command

import (
	"fmt"
)

func errUnresolved(field string) error {
	return fmt.Errorf("%s has no resolved wire value", field)
}

// Encode builds the Command for a validated and resolved request. Kind
// specific index fields are replaced by the neutral channelType/channelNo,
// destinationChannelType/destinationChannelNo and socketType/socketNo pairs.
func Encode(ps *ParameterSet, res *Resolution) (Command, error) {
	if ps == nil {
		return Command{}, ErrNoParameters
	}
	def, ok := registry[ps.Operation()]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownOperation, ps.Operation())
	}
	if res == nil {
		return Command{}, fmt.Errorf("%s: encode without resolution", ps.Operation())
	}

	b := newBuilder("")
	for _, ts := range def.Targets {
		addr, ok := res.Address(ts.Role)
		if !ok {
			return Command{}, fmt.Errorf("%s: %s target is unresolved", ps.Operation(), ts.Role)
		}
		switch {
		case ts.Role == RoleSocket:
			b.setText("socketType", addr.Kind)
			b.setInt("socketNo", addr.Index)
		case ts.Role == RoleDestination:
			b.setText("destinationChannelType", addr.Kind)
			b.setInt("destinationChannelNo", addr.Index)
		case ts.Fixed:
			// the kind is implied by the command
			b.setInt("channelNo", addr.Index)
		default:
			b.setText("channelType", addr.Kind)
			b.setInt("channelNo", addr.Index)
		}
	}

	name, err := def.encode(ps, res, b)
	if err != nil {
		return Command{}, fmt.Errorf("%s: %w", ps.Operation(), err)
	}
	b.name = name
	return b.build(), nil
}
