package command

import (
	"slices"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// Registered operations
const (
	OpMute                 Operation = "mute"
	OpFaderLevel           Operation = "faderLevel"
	OpAssignToMainMix      Operation = "assignToMainMix"
	OpAuxFxMatrixSendLevel Operation = "auxFxMatrixSendLevel"
	OpInputToGroupAuxOn    Operation = "inputToGroupAuxOn"
	OpDCAAssign            Operation = "dcaAssign"
	OpMuteGroupAssign      Operation = "muteGroupAssign"
	OpSetSocketPreampGain  Operation = "setSocketPreampGain"
	OpSetSocketPreampPad   Operation = "setSocketPreampPad"
	OpSetSocketPreamp48v   Operation = "setSocketPreamp48v"
	OpSetChannelName       Operation = "setChannelName"
	OpSetChannelColour     Operation = "setChannelColour"
	OpRecallScene          Operation = "recallScene"
	OpRecallCueList        Operation = "recallCueList"
	OpGoNextPrevious       Operation = "goNextPrevious"
	OpParametricEQ         Operation = "parametricEq"
	OpHPFFrequency         Operation = "hpfFrequency"
	OpSetHPFOnOff          Operation = "setHpfOnOff"
	OpSetUFXGlobalKey      Operation = "setUfxGlobalKey"
	OpSetUFXGlobalScale    Operation = "setUfxGlobalScale"
	OpSetUFXUnitParameter  Operation = "setUfxUnitParameter"
)

const (
	fieldBand        = "band"
	fieldScene       = "scene"
	fieldRecallID    = "recallId"
	fieldMIDIChannel = "midiChannel"

	// NameMaxLength is the longest channel name the console stores
	NameMaxLength = 8
)

// Definition describes one operation: the targets it addresses, the fields it
// reads and how its command is built
type Definition struct {
	Operation   Operation    `json:"operation"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Targets     []TargetSpec `json:"targets"`
	Fields      []FieldSpec  `json:"fields"`

	// dependent returns fields whose presence depends on values already
	// read. It is called until it yields nothing new.
	dependent func(ps *ParameterSet) []FieldSpec
	// encode adds the operation's own params and returns the command name
	encode func(ps *ParameterSet, res *Resolution, b *builder) (string, error)
}

// Target returns the target spec for role
func (d *Definition) Target(role Role) (TargetSpec, bool) {
	for _, t := range d.Targets {
		if t.Role == role {
			return t, true
		}
	}
	return TargetSpec{}, false
}

// clone copies d down to the bounds and kind lists so callers cannot reach
// the registry through the result
func (d Definition) clone() Definition {
	targets := make([]TargetSpec, len(d.Targets))
	for i, t := range d.Targets {
		t.Kinds = slices.Clone(t.Kinds)
		targets[i] = t
	}
	fields := make([]FieldSpec, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = f.clone()
	}
	d.Targets, d.Fields = targets, fields
	return d
}

func channel(requires console.Capability) TargetSpec {
	return channelTarget(RoleSource, "channelType", "", "channelNo", requires)
}

func destination(requires console.Capability) TargetSpec {
	return channelTarget(RoleDestination, "destinationChannelType", "destination", "destinationChannelNo", requires)
}

func fixedInput() TargetSpec { return fixedTarget(RoleSource, console.Input) }

// toggle picks the command name from a boolean field
func toggle(field, on, off string) func(*ParameterSet, *Resolution, *builder) (string, error) {
	return func(ps *ParameterSet, _ *Resolution, _ *builder) (string, error) {
		if ps.Bool(field) {
			return on, nil
		}
		return off, nil
	}
}

// copyInt copies validated int fields to params, renaming each from -> to
func copyInt(name string, pairs ...string) func(*ParameterSet, *Resolution, *builder) (string, error) {
	return func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
		for i := 0; i+1 < len(pairs); i += 2 {
			b.setInt(pairs[i+1], ps.Int(pairs[i]))
		}
		return name, nil
	}
}

func enable(name, field string) func(*ParameterSet, *Resolution, *builder) (string, error) {
	return func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
		b.setBool("shouldEnable", ps.Bool(field))
		return name, nil
	}
}

var definitions = []Definition{
	{
		Operation:   OpMute,
		Name:        "Mute",
		Description: "Mute or unmute a channel",
		Targets:     []TargetSpec{channel(console.CapMute)},
		Fields:      []FieldSpec{boolField("mute", "Mute")},
		encode:      toggle("mute", "mute_on", "mute_off"),
	},
	{
		Operation:   OpFaderLevel,
		Name:        "Fader Level",
		Description: "Set the fader level of a channel",
		Targets:     []TargetSpec{channel(console.CapFaderLevel)},
		Fields:      []FieldSpec{intChoiceField("level", "Level", console.FaderLevelChoices)},
		encode:      copyInt("fader_level", "level", "level"),
	},
	{
		Operation:   OpAssignToMainMix,
		Name:        "Assign a channel to the main mix",
		Description: "Assign or unassign a channel to the main mix",
		Targets:     []TargetSpec{channel(console.CapMainMix)},
		Fields:      []FieldSpec{boolField("assign", "Assign to Main Mix")},
		encode:      toggle("assign", "channel_assignment_to_main_mix_on", "channel_assignment_to_main_mix_off"),
	},
	{
		Operation:   OpAuxFxMatrixSendLevel,
		Name:        "Aux / FX / Matrix Send Level",
		Description: "Set the send level from a channel to an aux / fx send / matrix",
		Targets: []TargetSpec{
			channel(console.CapSendSource),
			destination(console.CapSendDestination),
		},
		Fields: []FieldSpec{intChoiceField("level", "Level", console.FaderLevelChoices)},
		encode: copyInt("aux_fx_matrix_send_level", "level", "level"),
	},
	{
		Operation:   OpInputToGroupAuxOn,
		Name:        "Input to Group / Aux / Matrix",
		Description: "Send an input to a group / aux / matrix",
		Targets: []TargetSpec{
			fixedInput(),
			destination(console.CapRouteDestination),
		},
		Fields: []FieldSpec{boolField("on", "On")},
		encode: enable("input_to_group_aux_on", "on"),
	},
	{
		Operation:   OpDCAAssign,
		Name:        "Assign to DCA",
		Description: "Assign a channel to a DCA",
		Targets:     []TargetSpec{channel(console.CapDCAAssign)},
		Fields: []FieldSpec{
			intField("destinationDca", "DCA", 0, console.DCACount-1),
			boolField("assign", "Assign to DCA"),
		},
		encode: func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
			b.setInt("dcaNo", ps.Int("destinationDca"))
			if ps.Bool("assign") {
				return "dca_assignment_on", nil
			}
			return "dca_assignment_off", nil
		},
	},
	{
		Operation:   OpMuteGroupAssign,
		Name:        "Assign to Mute Group",
		Description: "Assign a channel to a mute group",
		Targets:     []TargetSpec{channel(console.CapMuteGroupAssign)},
		Fields: []FieldSpec{
			intField("destinationMuteGroup", "Mute Group", 0, console.MuteGroupCount-1),
			boolField("assign", "Assign to Mute Group"),
		},
		encode: func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
			b.setInt("muteGroupNo", ps.Int("destinationMuteGroup"))
			if ps.Bool("assign") {
				return "mute_group_assignment_on", nil
			}
			return "mute_group_assignment_off", nil
		},
	},
	{
		Operation:   OpSetSocketPreampGain,
		Name:        "Set Socket Preamp Gain",
		Description: "Set the preamp gain of a MixRack or DX card socket",
		Targets:     []TargetSpec{socketTarget()},
		Fields: []FieldSpec{
			floatField("gain", "Gain", console.PreampMinimumGain, console.PreampMaximumGain, console.PreampGainStep),
		},
		encode: func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
			b.setFloat("gain", ps.Float("gain"))
			return "set_socket_preamp_gain", nil
		},
	},
	{
		Operation:   OpSetSocketPreampPad,
		Name:        "Set Socket Preamp Pad",
		Description: "Enable or disable the pad of a MixRack or DX card socket",
		Targets:     []TargetSpec{socketTarget()},
		Fields:      []FieldSpec{boolField("pad", "Pad")},
		encode:      enable("set_socket_preamp_pad", "pad"),
	},
	{
		Operation:   OpSetSocketPreamp48v,
		Name:        "Set Socket Preamp 48v",
		Description: "Enable or disable 48v of a MixRack or DX card socket",
		Targets:     []TargetSpec{socketTarget()},
		Fields:      []FieldSpec{boolField("phantom", "48V")},
		encode:      enable("set_socket_preamp_48v", "phantom"),
	},
	{
		Operation:   OpSetChannelName,
		Name:        "Set Channel Name",
		Description: "Set the name of a channel",
		Targets:     []TargetSpec{channel(console.CapName)},
		Fields:      []FieldSpec{textField("name", "Name", NameMaxLength)},
		encode: func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
			b.setText("name", ps.Text("name"))
			return "set_channel_name", nil
		},
	},
	{
		Operation:   OpSetChannelColour,
		Name:        "Set Channel Colour",
		Description: "Set the colour of a channel",
		Targets:     []TargetSpec{channel(console.CapColour)},
		Fields:      []FieldSpec{intChoiceField("colour", "Colour", console.ChannelColourChoices)},
		encode:      copyInt("set_channel_colour", "colour", "colour"),
	},
	{
		Operation:   OpRecallScene,
		Name:        "Recall Scene",
		Description: "Recall a scene; scenes 1-8 are reserved utility scenes",
		Fields:      []FieldSpec{numberedField(fieldScene, "Scene", NumberingScene)},
		encode:      wired("scene_recall", fieldScene, "sceneNo"),
	},
	{
		Operation:   OpRecallCueList,
		Name:        "Recall Cue List",
		Description: "Recall a cue list",
		Fields:      []FieldSpec{numberedField(fieldRecallID, "Recall ID", NumberingCueList)},
		encode:      wired("cue_list_recall", fieldRecallID, "recallId"),
	},
	{
		Operation:   OpGoNextPrevious,
		Name:        "Go Next/Previous (Surface Only)",
		Description: "Trigger Go/Next/Previous with the MIDI CC messages defined in the console settings",
		Fields: []FieldSpec{
			intField("controlNumber", "Control Number", 0, console.MIDIDataMax),
			intField("controlValue", "Control Value", 0, console.MIDIDataMax),
		},
		encode: copyInt("go_next_previous", "controlNumber", "controlNumber", "controlValue", "controlValue"),
	},
	{
		Operation:   OpParametricEQ,
		Name:        "Parametric EQ",
		Description: "Set the type, frequency, width and gain of a parametric EQ band",
		Targets:     []TargetSpec{channel(console.CapEQ)},
		Fields:      []FieldSpec{intField(fieldBand, "Band", 0, console.EQBandCount-1)},
		dependent:   eqFieldSpecs,
		encode: func(ps *ParameterSet, _ *Resolution, b *builder) (string, error) {
			return "parametric_eq", encodeEQ(ps, b)
		},
	},
	{
		Operation:   OpHPFFrequency,
		Name:        "HPF Frequency",
		Description: "Set the high pass filter frequency of an input channel",
		Targets:     []TargetSpec{fixedInput()},
		Fields:      []FieldSpec{intChoiceField("frequency", "Frequency", console.HPFFrequencyChoices)},
		encode:      copyInt("hpf_frequency", "frequency", "frequency"),
	},
	{
		Operation:   OpSetHPFOnOff,
		Name:        "Set HPF On/Off",
		Description: "Enable or disable the high pass filter of an input channel",
		Targets:     []TargetSpec{fixedInput()},
		Fields:      []FieldSpec{boolField("hpf", "HPF")},
		encode:      enable("set_hpf_on_off", "hpf"),
	},
	{
		Operation:   OpSetUFXGlobalKey,
		Name:        "Set UFX Global Key",
		Description: "Set the global key for all UFX units",
		Fields:      []FieldSpec{intChoiceField("key", "Key", console.UFXKeyChoices)},
		encode:      copyInt("set_ufx_global_key", "key", "key"),
	},
	{
		Operation:   OpSetUFXGlobalScale,
		Name:        "Set UFX Global Scale",
		Description: "Set the global scale for all UFX units",
		Fields:      []FieldSpec{intChoiceField("scale", "Scale", console.UFXScaleChoices)},
		encode:      copyInt("set_ufx_global_scale", "scale", "scale"),
	},
	{
		Operation:   OpSetUFXUnitParameter,
		Name:        "Set UFX Unit Parameter",
		Description: "Set a UFX parameter with the MIDI channel and control message defined in the console settings",
		Fields: []FieldSpec{
			midiChannelField(),
			intField("controlNumber", "Control Number", 0, console.MIDIDataMax),
			intField("controlValue", "Control Value", 0, console.MIDIDataMax),
		},
		encode: func(ps *ParameterSet, res *Resolution, b *builder) (string, error) {
			ch, ok := res.Wire(fieldMIDIChannel)
			if !ok {
				return "", errUnresolved(fieldMIDIChannel)
			}
			b.setInt("midiChannel", ch.Int())
			b.setInt("controlNumber", ps.Int("controlNumber"))
			b.setInt("value", ps.Int("controlValue"))
			return "set_ufx_unit_parameter", nil
		},
	},
}

func midiChannelField() FieldSpec {
	f := intField(fieldMIDIChannel, "MIDI Channel", console.MIDIChannelMin, console.MIDIChannelMax)
	f.Numbering = NumberingMIDIChannel
	return f
}

// wired emits the resolver's wire form of a renumbered field
func wired(name, field, param string) func(*ParameterSet, *Resolution, *builder) (string, error) {
	return func(_ *ParameterSet, res *Resolution, b *builder) (string, error) {
		v, ok := res.Wire(field)
		if !ok {
			return "", errUnresolved(field)
		}
		b.setInt(param, v.Int())
		return name, nil
	}
}

var registry = func() map[Operation]*Definition {
	m := make(map[Operation]*Definition, len(definitions))
	for i := range definitions {
		d := &definitions[i]
		if _, dup := m[d.Operation]; dup {
			panic("command: duplicate operation " + string(d.Operation))
		}
		m[d.Operation] = d
	}
	return m
}()

// Lookup returns the definition of op
func Lookup(op Operation) (Definition, bool) {
	d, ok := registry[op]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// Operations lists every registered operation in a stable order
func Operations() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d.clone())
	}
	return out
}
