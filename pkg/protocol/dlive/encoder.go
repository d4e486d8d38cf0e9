package dlive

import (
	"errors"
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// ErrUnknownCommand is returned for command names the console does not know
var ErrUnknownCommand = errors.New("unknown command")

// Encoder turns commands into dLive MIDI messages
type Encoder struct {
	base uint8 // wire MIDI channel, 0-11
}

// NewEncoder creates a new Encoder for the console's base MIDI channel,
// numbered 1-12 as on the console's MIDI setup screen
func NewEncoder(baseChannel int) (*Encoder, error) {
	if baseChannel < BaseChannelMin || baseChannel > BaseChannelMax {
		return nil, fmt.Errorf("base MIDI channel %d outside %d-%d", baseChannel, BaseChannelMin, BaseChannelMax)
	}
	return &Encoder{base: uint8(baseChannel - 1)}, nil
}

// BaseChannel returns the operator-facing base MIDI channel
func (e *Encoder) BaseChannel() int {
	return int(e.base) + 1
}

// Encode returns the messages that carry cmd, in send order
func (e *Encoder) Encode(cmd command.Command) ([]midi.Message, error) {
	fn, ok := encoders[cmd.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name())
	}
	msgs, err := fn(e, params{cmd})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.Name(), err)
	}
	return msgs, nil
}

// Bytes returns the encoded messages of cmd as one contiguous buffer
func (e *Encoder) Bytes(cmd command.Command) ([]byte, error) {
	msgs, err := e.Encode(cmd)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, m := range msgs {
		out = append(out, m.Bytes()...)
	}
	return out, nil
}

var encoders = map[string]func(*Encoder, params) ([]midi.Message, error){
	"mute_on":                            (*Encoder).mute,
	"mute_off":                           (*Encoder).mute,
	"fader_level":                        (*Encoder).faderLevel,
	"channel_assignment_to_main_mix_on":  (*Encoder).mainMix,
	"channel_assignment_to_main_mix_off": (*Encoder).mainMix,
	"aux_fx_matrix_send_level":           (*Encoder).sendLevel,
	"input_to_group_aux_on":              (*Encoder).routeOn,
	"dca_assignment_on":                  (*Encoder).dcaAssign,
	"dca_assignment_off":                 (*Encoder).dcaAssign,
	"mute_group_assignment_on":           (*Encoder).muteGroupAssign,
	"mute_group_assignment_off":          (*Encoder).muteGroupAssign,
	"set_socket_preamp_gain":             (*Encoder).preampGain,
	"set_socket_preamp_pad":              preampSwitch(paramPreampPad),
	"set_socket_preamp_48v":              preampSwitch(paramPreamp48v),
	"set_channel_name":                   (*Encoder).channelName,
	"set_channel_colour":                 (*Encoder).channelColour,
	"scene_recall":                       (*Encoder).sceneRecall,
	"cue_list_recall":                    (*Encoder).cueListRecall,
	"go_next_previous":                   (*Encoder).goNextPrevious,
	"parametric_eq":                      (*Encoder).parametricEQ,
	"hpf_frequency":                      (*Encoder).hpfFrequency,
	"set_hpf_on_off":                     (*Encoder).hpfOnOff,
	"set_ufx_global_key":                 ufxGlobal(systemUFXKey, "key"),
	"set_ufx_global_scale":               ufxGlobal(systemUFXScale, "scale"),
	"set_ufx_unit_parameter":             (*Encoder).ufxUnitParameter,
}

// params reads typed command parameters, failing on the first missing one
type params struct {
	cmd command.Command
}

func (p params) number(key string) (int, error) {
	v, ok := p.cmd.Int(key)
	if !ok {
		return 0, fmt.Errorf("missing int param %q", key)
	}
	return v, nil
}

func (p params) data(key string) (uint8, error) {
	v, err := p.number(key)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > console.MIDIDataMax {
		return 0, fmt.Errorf("param %q = %d is not a 7-bit value", key, v)
	}
	return uint8(v), nil
}

func (p params) flag(key string) (bool, error) {
	v, ok := p.cmd.Bool(key)
	if !ok {
		return false, fmt.Errorf("missing bool param %q", key)
	}
	return v, nil
}

func (p params) decimal(key string) (float64, error) {
	v, ok := p.cmd.Float(key)
	if !ok {
		return 0, fmt.Errorf("missing float param %q", key)
	}
	return v, nil
}

func (p params) text(key string) (string, error) {
	v, ok := p.cmd.Text(key)
	if !ok {
		return "", fmt.Errorf("missing string param %q", key)
	}
	return v, nil
}

// channel resolves a (type, number) param pair to a MIDI channel and note
func (e *Encoder) channel(p params, typeKey, noKey string) (uint8, uint8, error) {
	kind := console.Input
	if typeKey != "" {
		id, err := p.text(typeKey)
		if err != nil {
			return 0, 0, err
		}
		var ok bool
		if kind, ok = console.ParseChannelKind(id); !ok {
			return 0, 0, fmt.Errorf("unknown channel kind %q", id)
		}
	}
	no, err := p.number(noKey)
	if err != nil {
		return 0, 0, err
	}
	if !kind.Contains(no) {
		return 0, 0, fmt.Errorf("%s %d out of range", kind, no)
	}
	addr := channelAddresses[kind]
	return e.base + addr.offset, addr.note + uint8(no), nil
}

func (e *Encoder) source(p params) (uint8, uint8, error) {
	return e.channel(p, "channelType", "channelNo")
}

func (e *Encoder) socket(p params) (uint8, uint8, error) {
	id, err := p.text("socketType")
	if err != nil {
		return 0, 0, err
	}
	kind, ok := console.ParseSocketKind(id)
	if !ok {
		return 0, 0, fmt.Errorf("unknown socket kind %q", id)
	}
	no, err := p.number("socketNo")
	if err != nil {
		return 0, 0, err
	}
	if !kind.Contains(no) {
		return 0, 0, fmt.Errorf("%s %d out of range", kind, no)
	}
	addr := socketAddresses[kind]
	return e.base + addr.offset, addr.note + uint8(no), nil
}

// nrpn sets parameter param of channel note ch to value
func nrpn(midiCh, ch, param, value uint8) []midi.Message {
	return []midi.Message{
		midi.ControlChange(midiCh, ccNRPNMSB, ch),
		midi.ControlChange(midiCh, ccNRPNLSB, param),
		midi.ControlChange(midiCh, ccDataEntry, value),
	}
}

func single(msg midi.Message, err error) ([]midi.Message, error) {
	if err != nil {
		return nil, err
	}
	return []midi.Message{msg}, nil
}

func onOff(on bool) uint8 {
	if on {
		return VelocityOn
	}
	return VelocityOff
}

func (e *Encoder) mute(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	on := p.cmd.Name() == "mute_on"
	// the console expects the release as a zero-velocity note on
	return []midi.Message{
		midi.NoteOn(midiCh, ch, onOff(on)),
		midi.NoteOn(midiCh, ch, 0),
	}, nil
}

func (e *Encoder) faderLevel(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	level, err := p.data("level")
	if err != nil {
		return nil, err
	}
	return nrpn(midiCh, ch, paramFaderLevel, level), nil
}

func (e *Encoder) mainMix(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	on := p.cmd.Name() == "channel_assignment_to_main_mix_on"
	return nrpn(midiCh, ch, paramMainMix, onOff(on)), nil
}

func (e *Encoder) sendLevel(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	sndCh, snd, err := e.channel(p, "destinationChannelType", "destinationChannelNo")
	if err != nil {
		return nil, err
	}
	level, err := p.data("level")
	if err != nil {
		return nil, err
	}
	return single(sysEx(midiCh, sysExSendLevel, ch, sndCh, snd, level))
}

func (e *Encoder) routeOn(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.channel(p, "", "channelNo")
	if err != nil {
		return nil, err
	}
	sndCh, snd, err := e.channel(p, "destinationChannelType", "destinationChannelNo")
	if err != nil {
		return nil, err
	}
	on, err := p.flag("shouldEnable")
	if err != nil {
		return nil, err
	}
	return single(sysEx(midiCh, sysExRouteOn, ch, sndCh, snd, onOff(on)))
}

func (e *Encoder) dcaAssign(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	dca, err := p.number("dcaNo")
	if err != nil {
		return nil, err
	}
	if dca < 0 || dca >= console.DCACount {
		return nil, fmt.Errorf("dca %d out of range", dca)
	}
	value := uint8(assignDCAOff + dca)
	if p.cmd.Name() == "dca_assignment_on" {
		value = uint8(assignDCAOn + dca)
	}
	return nrpn(midiCh, ch, paramAssign, value), nil
}

func (e *Encoder) muteGroupAssign(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	group, err := p.number("muteGroupNo")
	if err != nil {
		return nil, err
	}
	if group < 0 || group >= console.MuteGroupCount {
		return nil, fmt.Errorf("mute group %d out of range", group)
	}
	value := uint8(assignMuteGroup + group)
	if p.cmd.Name() == "mute_group_assignment_on" {
		value = uint8(assignMuteGroupOn + group)
	}
	return nrpn(midiCh, ch, paramAssign, value), nil
}

// scale maps x in [lo, hi] linearly onto 0-127
func scale(x, lo, hi float64) uint8 {
	if x <= lo {
		return 0
	}
	if x >= hi {
		return console.MIDIDataMax
	}
	return uint8(math.Round((x - lo) / (hi - lo) * console.MIDIDataMax))
}

func (e *Encoder) preampGain(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.socket(p)
	if err != nil {
		return nil, err
	}
	gain, err := p.decimal("gain")
	if err != nil {
		return nil, err
	}
	return nrpn(midiCh, ch, paramPreampGain, scale(gain, console.PreampMinimumGain, console.PreampMaximumGain)), nil
}

func preampSwitch(param uint8) func(*Encoder, params) ([]midi.Message, error) {
	return func(e *Encoder, p params) ([]midi.Message, error) {
		midiCh, ch, err := e.socket(p)
		if err != nil {
			return nil, err
		}
		on, err := p.flag("shouldEnable")
		if err != nil {
			return nil, err
		}
		return nrpn(midiCh, ch, param, onOff(on)), nil
	}
}

func (e *Encoder) channelName(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	name, err := p.text("name")
	if err != nil {
		return nil, err
	}
	body := append([]byte{midiCh, sysExName, ch}, name...)
	return single(sysEx(body...))
}

func (e *Encoder) channelColour(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	colour, err := p.data("colour")
	if err != nil {
		return nil, err
	}
	return single(sysEx(midiCh, sysExColour, ch, colour))
}

func (e *Encoder) sceneRecall(p params) ([]midi.Message, error) {
	scene, err := p.number("sceneNo")
	if err != nil {
		return nil, err
	}
	if scene < 0 || scene >= console.SceneCount {
		return nil, fmt.Errorf("scene %d out of range", scene)
	}
	return []midi.Message{
		midi.ControlChange(e.base, ccBankSelect, uint8(scene>>7)),
		midi.ProgramChange(e.base, uint8(scene&0x7F)),
	}, nil
}

func (e *Encoder) cueListRecall(p params) ([]midi.Message, error) {
	id, err := p.number("recallId")
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= console.CueListCount {
		return nil, fmt.Errorf("cue list %d out of range", id)
	}
	return []midi.Message{
		midi.ControlChange(e.base, ccNRPNMSB, paramCueRecall),
		midi.ControlChange(e.base, ccNRPNLSB, paramCueRecall),
		midi.ControlChange(e.base, ccDataEntry, uint8(id>>7)),
		midi.ControlChange(e.base, ccDataEntryLSB, uint8(id&0x7F)),
	}, nil
}

func (e *Encoder) goNextPrevious(p params) ([]midi.Message, error) {
	cc, err := p.data("controlNumber")
	if err != nil {
		return nil, err
	}
	value, err := p.data("controlValue")
	if err != nil {
		return nil, err
	}
	return []midi.Message{midi.ControlChange(e.base, cc, value)}, nil
}

func (e *Encoder) parametricEQ(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.source(p)
	if err != nil {
		return nil, err
	}
	band, err := p.number("bandNo")
	if err != nil {
		return nil, err
	}
	if band < 0 || band >= console.EQBandCount {
		return nil, fmt.Errorf("eq band %d out of range", band)
	}
	typ, err := p.text("type")
	if err != nil {
		return nil, err
	}
	typeValue, ok := eqTypes[typ]
	if !ok {
		return nil, fmt.Errorf("unknown eq type %q", typ)
	}
	freq, err := p.data("frequency")
	if err != nil {
		return nil, err
	}

	param := uint8(paramEQBase + 4*band)
	msgs := nrpn(midiCh, ch, param, typeValue)
	msgs = append(msgs, nrpn(midiCh, ch, param+1, freq)...)
	if width, ok := p.cmd.Float("width"); ok {
		msgs = append(msgs, nrpn(midiCh, ch, param+2, scale(width, console.EQMinimumWidth, console.EQMaximumWidth))...)
	}
	if gain, ok := p.cmd.Float("gain"); ok {
		msgs = append(msgs, nrpn(midiCh, ch, param+3, scale(gain, console.EQMinimumGain, console.EQMaximumGain))...)
	}
	return msgs, nil
}

func (e *Encoder) hpfFrequency(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.channel(p, "", "channelNo")
	if err != nil {
		return nil, err
	}
	freq, err := p.data("frequency")
	if err != nil {
		return nil, err
	}
	return nrpn(midiCh, ch, paramHPFFrequency, freq), nil
}

func (e *Encoder) hpfOnOff(p params) ([]midi.Message, error) {
	midiCh, ch, err := e.channel(p, "", "channelNo")
	if err != nil {
		return nil, err
	}
	on, err := p.flag("shouldEnable")
	if err != nil {
		return nil, err
	}
	return nrpn(midiCh, ch, paramHPFOnOff, onOff(on)), nil
}

func ufxGlobal(system uint8, key string) func(*Encoder, params) ([]midi.Message, error) {
	return func(e *Encoder, p params) ([]midi.Message, error) {
		value, err := p.data(key)
		if err != nil {
			return nil, err
		}
		return nrpn(e.base+ufxOffset, paramSystem, system, value), nil
	}
}

func (e *Encoder) ufxUnitParameter(p params) ([]midi.Message, error) {
	midiCh, err := p.number("midiChannel")
	if err != nil {
		return nil, err
	}
	if midiCh < 0 || midiCh > 15 {
		return nil, fmt.Errorf("midi channel %d out of range", midiCh)
	}
	cc, err := p.data("controlNumber")
	if err != nil {
		return nil, err
	}
	value, err := p.data("value")
	if err != nil {
		return nil, err
	}
	return []midi.Message{midi.ControlChange(uint8(midiCh), cc, value)}, nil
}
