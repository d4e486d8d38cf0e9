// Package console describes the topology of an Allen & Heath dLive system:
// channel kinds, socket kinds, their index ranges and the choice tables used
// when building control commands.
package console

import (
	"strings"
)

// Capability flags the operations a channel kind participates in
type Capability uint16

const (
	CapMute Capability = 1 << iota
	CapFaderLevel
	CapMainMix
	CapSendSource
	CapSendDestination
	CapRouteDestination
	CapDCAAssign
	CapMuteGroupAssign
	CapName
	CapColour
	CapEQ
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapMute, "mute"},
	{CapFaderLevel, "fader_level"},
	{CapMainMix, "main_mix"},
	{CapSendSource, "send_source"},
	{CapSendDestination, "send_destination"},
	{CapRouteDestination, "route_destination"},
	{CapDCAAssign, "dca_assign"},
	{CapMuteGroupAssign, "mute_group_assign"},
	{CapName, "name"},
	{CapColour, "colour"},
	{CapEQ, "eq"},
}

// String returns the capability names joined with "|"
func (c Capability) String() string {
	var parts []string
	for _, n := range capabilityNames {
		if c&n.cap != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ChannelKind is one of the console's addressable signal-path categories
type ChannelKind uint8

const (
	Input ChannelKind = iota
	MonoGroup
	StereoGroup
	MonoAux
	StereoAux
	MonoFXSend
	StereoFXSend
	FXReturn
	MonoMatrix
	StereoMatrix
	StereoUFXSend
	StereoUFXReturn
	DCA
	MuteGroup
	channelKindCount
)

// kindInfo carries the static data of one kind
type kindInfo struct {
	id    string
	label string
	count int
	field string
	caps  Capability
}

const (
	capsAll          = CapMute | CapFaderLevel | CapName | CapColour
	capsSource       = CapMainMix | CapSendSource
	capsAssignable   = CapDCAAssign | CapMuteGroupAssign
	capsStripWithEQ  = capsAll | capsAssignable | CapEQ
	capsFXSendStrips = capsAll | capsAssignable | CapSendDestination
)

var channelKinds = [channelKindCount]kindInfo{
	Input:           {"input", "Input Channel", InputChannelCount, "input", capsStripWithEQ | capsSource},
	MonoGroup:       {"mono_group", "Mono Group", MonoGroupCount, "monoGroup", capsStripWithEQ | capsSource | CapRouteDestination},
	StereoGroup:     {"stereo_group", "Stereo Group", StereoGroupCount, "stereoGroup", capsStripWithEQ | capsSource | CapRouteDestination},
	MonoAux:         {"mono_aux", "Mono Aux", MonoAuxCount, "monoAux", capsStripWithEQ | CapSendDestination | CapRouteDestination},
	StereoAux:       {"stereo_aux", "Stereo Aux", StereoAuxCount, "stereoAux", capsStripWithEQ | CapSendDestination | CapRouteDestination},
	MonoFXSend:      {"mono_fx_send", "Mono FX Send", MonoFXSendCount, "monoFxSend", capsFXSendStrips},
	StereoFXSend:    {"stereo_fx_send", "Stereo FX Send", StereoFXSendCount, "stereoFxSend", capsFXSendStrips},
	FXReturn:        {"fx_return", "FX Return", FXReturnCount, "fxReturn", capsStripWithEQ | capsSource},
	MonoMatrix:      {"mono_matrix", "Mono Matrix", MonoMatrixCount, "monoMatrix", capsStripWithEQ | CapSendDestination | CapRouteDestination},
	StereoMatrix:    {"stereo_matrix", "Stereo Matrix", StereoMatrixCount, "stereoMatrix", capsStripWithEQ | CapSendDestination | CapRouteDestination},
	StereoUFXSend:   {"stereo_ufx_send", "Stereo UFX Send", StereoUFXSendCount, "stereoUfxSend", capsFXSendStrips},
	StereoUFXReturn: {"stereo_ufx_return", "Stereo UFX Return", StereoUFXReturnCount, "stereoUfxReturn", capsAll | capsAssignable | capsSource},
	DCA:             {"dca", "DCA", DCACount, "dca", capsAll},
	MuteGroup:       {"mute_group", "Mute Group", MuteGroupCount, "muteGroup", CapMute | CapName},
}

// ChannelKinds returns every channel kind in catalog order
func ChannelKinds() []ChannelKind {
	out := make([]ChannelKind, 0, channelKindCount)
	for k := ChannelKind(0); k < channelKindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseChannelKind looks a kind up by its wire id (e.g. "mono_group")
func ParseChannelKind(id string) (ChannelKind, bool) {
	for k := ChannelKind(0); k < channelKindCount; k++ {
		if channelKinds[k].id == id {
			return k, true
		}
	}
	return 0, false
}

// Valid reports whether k is a member of the catalog
func (k ChannelKind) Valid() bool { return k < channelKindCount }

// ID returns the wire id of the kind
func (k ChannelKind) ID() string { return k.info().id }

// Label returns the human-readable label stem
func (k ChannelKind) Label() string { return k.info().label }

// Count returns the number of channels of this kind; valid indices are [0, Count)
func (k ChannelKind) Count() int { return k.info().count }

// Capabilities returns the operations the kind participates in
func (k ChannelKind) Capabilities() Capability { return k.info().caps }

// Has reports whether the kind participates in every capability in c
func (k ChannelKind) Has(c Capability) bool {
	return k.Valid() && k.info().caps&c == c
}

// Contains reports whether index lies within [0, Count)
func (k ChannelKind) Contains(index int) bool {
	return k.Valid() && index >= 0 && index < k.info().count
}

// Field returns the operator-facing field that carries the channel number for
// this kind. A non-empty prefix yields e.g. "destinationMonoAux".
func (k ChannelKind) Field(prefix string) string {
	return prefixed(prefix, k.info().field)
}

func (k ChannelKind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return k.info().id
}

func (k ChannelKind) info() kindInfo {
	if !k.Valid() {
		return kindInfo{id: "unknown"}
	}
	return channelKinds[k]
}

// KindsWith returns the channel kinds that carry every capability in c
func KindsWith(c Capability) []ChannelKind {
	var out []ChannelKind
	for _, k := range ChannelKinds() {
		if k.Has(c) {
			out = append(out, k)
		}
	}
	return out
}

// SocketKind is a physical preamp location, addressed separately from channels
type SocketKind uint8

const (
	MixRackSocket SocketKind = iota
	DXCardSocket
	socketKindCount
)

var socketKinds = [socketKindCount]kindInfo{
	MixRackSocket: {"mixrack_socket", "MixRack Socket", MixRackSocketCount, "mixrackSocket", 0},
	DXCardSocket:  {"dx_card_socket", "DX Card Socket", DXCardSocketCount, "dxCardSocket", 0},
}

// SocketKinds returns every socket kind in catalog order
func SocketKinds() []SocketKind {
	return []SocketKind{MixRackSocket, DXCardSocket}
}

// ParseSocketKind looks a socket kind up by its wire id
func ParseSocketKind(id string) (SocketKind, bool) {
	for k := SocketKind(0); k < socketKindCount; k++ {
		if socketKinds[k].id == id {
			return k, true
		}
	}
	return 0, false
}

func (k SocketKind) Valid() bool { return k < socketKindCount }

func (k SocketKind) ID() string { return k.info().id }

func (k SocketKind) Label() string { return k.info().label }

func (k SocketKind) Count() int { return k.info().count }

func (k SocketKind) Contains(index int) bool {
	return k.Valid() && index >= 0 && index < k.info().count
}

// Field returns the operator-facing field carrying the socket number
func (k SocketKind) Field(prefix string) string {
	return prefixed(prefix, k.info().field)
}

func (k SocketKind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return k.info().id
}

func (k SocketKind) info() kindInfo {
	if !k.Valid() {
		return kindInfo{id: "unknown"}
	}
	return socketKinds[k]
}

func prefixed(prefix, field string) string {
	if prefix == "" || field == "" {
		return field
	}
	return prefix + strings.ToUpper(field[:1]) + field[1:]
}
