package dlive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

func build(t *testing.T, op command.Operation, fields command.Fields) command.Command {
	t.Helper()
	cmd, err := command.Build(command.Request{Operation: op, Fields: fields})
	if err != nil {
		t.Fatalf("Build(%s) error = %v", op, err)
	}
	return cmd
}

func header(body ...byte) []byte {
	out := append([]byte{SysExStart}, sysExHeader...)
	out = append(out, body...)
	return append(out, SysExEnd)
}

func TestNewEncoder(t *testing.T) {
	tests := []struct {
		channel int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{12, false},
		{13, true},
	}

	for _, tt := range tests {
		e, err := NewEncoder(tt.channel)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewEncoder(%d) error = %v, wantErr %v", tt.channel, err, tt.wantErr)
		}
		if err == nil && e.BaseChannel() != tt.channel {
			t.Errorf("BaseChannel() = %d, want %d", e.BaseChannel(), tt.channel)
		}
	}
}

func TestEncoderBytes(t *testing.T) {
	tests := []struct {
		name   string
		base   int
		op     command.Operation
		fields command.Fields
		want   []byte
	}{
		{
			"mute input", 1, command.OpMute,
			command.Fields{"channelType": "input", "input": 3, "mute": true},
			[]byte{0x90, 0x03, 0x7F, 0x90, 0x03, 0x00},
		},
		{
			"unmute dca on channel 12", 12, command.OpMute,
			command.Fields{"channelType": "dca", "dca": 0, "mute": false},
			[]byte{0x9F, 0x36, 0x3F, 0x9F, 0x36, 0x00},
		},
		{
			"fader level", 1, command.OpFaderLevel,
			command.Fields{"channelType": "mono_group", "monoGroup": 2, "level": 107},
			[]byte{0xB1, 0x63, 0x02, 0xB1, 0x62, 0x17, 0xB1, 0x06, 0x6B},
		},
		{
			"main mix", 2, command.OpAssignToMainMix,
			command.Fields{"channelType": "stereo_group", "stereoGroup": 1, "assign": true},
			[]byte{0xB2, 0x63, 0x41, 0xB2, 0x62, 0x18, 0xB2, 0x06, 0x7F},
		},
		{
			"send level", 1, command.OpAuxFxMatrixSendLevel,
			command.Fields{
				"channelType": "input", "input": 0,
				"destinationChannelType": "stereo_aux", "destinationStereoAux": 4, "level": 0,
			},
			header(0x00, 0x0D, 0x00, 0x02, 0x44, 0x00),
		},
		{
			"input to group", 1, command.OpInputToGroupAuxOn,
			command.Fields{"input": 7, "destinationChannelType": "mono_matrix", "destinationMonoMatrix": 1, "on": false},
			header(0x00, 0x0C, 0x07, 0x03, 0x01, 0x3F),
		},
		{
			"dca assign", 1, command.OpDCAAssign,
			command.Fields{"channelType": "input", "input": 1, "destinationDca": 3, "assign": true},
			[]byte{0xB0, 0x63, 0x01, 0xB0, 0x62, 0x40, 0xB0, 0x06, 0x43},
		},
		{
			"mute group unassign", 1, command.OpMuteGroupAssign,
			command.Fields{"channelType": "input", "input": 1, "destinationMuteGroup": 2, "assign": false},
			[]byte{0xB0, 0x63, 0x01, 0xB0, 0x62, 0x40, 0xB0, 0x06, 0x1A},
		},
		{
			"preamp gain max", 1, command.OpSetSocketPreampGain,
			command.Fields{"socketType": "dx_card_socket", "dxCardSocket": 2, "gain": 60},
			[]byte{0xB0, 0x63, 0x42, 0xB0, 0x62, 0x19, 0xB0, 0x06, 0x7F},
		},
		{
			"phantom", 1, command.OpSetSocketPreamp48v,
			command.Fields{"socketType": "mixrack_socket", "mixrackSocket": 0, "phantom": true},
			[]byte{0xB0, 0x63, 0x00, 0xB0, 0x62, 0x1B, 0xB0, 0x06, 0x7F},
		},
		{
			"name", 1, command.OpSetChannelName,
			command.Fields{"channelType": "input", "input": 5, "name": "Kick"},
			header(0x00, 0x03, 0x05, 'K', 'i', 'c', 'k'),
		},
		{
			"colour", 1, command.OpSetChannelColour,
			command.Fields{"channelType": "fx_return", "fxReturn": 0, "colour": 3},
			header(0x04, 0x06, 0x20, 0x03),
		},
		{
			"scene", 1, command.OpRecallScene,
			command.Fields{"scene": 300},
			[]byte{0xB0, 0x00, 0x02, 0xC0, 0x2C},
		},
		{
			"cue list", 1, command.OpRecallCueList,
			command.Fields{"recallId": 200},
			[]byte{0xB0, 0x63, 0x7F, 0xB0, 0x62, 0x7F, 0xB0, 0x06, 0x01, 0xB0, 0x26, 0x47},
		},
		{
			"go next", 3, command.OpGoNextPrevious,
			command.Fields{"controlNumber": 20, "controlValue": 127},
			[]byte{0xB2, 0x14, 0x7F},
		},
		{
			"hpf", 1, command.OpSetHPFOnOff,
			command.Fields{"input": 9, "hpf": true},
			[]byte{0xB0, 0x63, 0x09, 0xB0, 0x62, 0x21, 0xB0, 0x06, 0x7F},
		},
		{
			"ufx key", 1, command.OpSetUFXGlobalKey,
			command.Fields{"key": 5},
			[]byte{0xB4, 0x63, 0x7E, 0xB4, 0x62, 0x01, 0xB4, 0x06, 0x05},
		},
		{
			"ufx unit parameter", 1, command.OpSetUFXUnitParameter,
			command.Fields{"midiChannel": 16, "controlNumber": 1, "controlValue": 2},
			[]byte{0xBF, 0x01, 0x02},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEncoder(tt.base)
			if err != nil {
				t.Fatalf("NewEncoder() error = %v", err)
			}
			got, err := e.Bytes(build(t, tt.op, tt.fields))
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Bytes() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeEQ(t *testing.T) {
	e, _ := NewEncoder(1)

	highPass := build(t, command.OpParametricEQ, command.Fields{
		"channelType": "input", "input": 0, "band": 0,
		"band0Type": "high_pass", "band0Frequency": 10, "band0Width": 1.5,
	})
	msgs, err := e.Encode(highPass)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	// type, frequency and width; no gain
	if len(msgs) != 9 {
		t.Fatalf("Encode() returned %d messages, want 9", len(msgs))
	}
	for _, m := range msgs {
		b := m.Bytes()
		if b[1] == ccNRPNLSB && b[2] == paramEQBase+3 {
			t.Error("high pass encoded a gain parameter")
		}
	}

	bell := build(t, command.OpParametricEQ, command.Fields{
		"channelType": "input", "input": 0, "band": 2,
		"band2Frequency": 72, "band2Width": 0.1, "band2Gain": 15,
	})
	got, err := e.Bytes(bell)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	want := []byte{
		0xB0, 0x63, 0x00, 0xB0, 0x62, 0x38, 0xB0, 0x06, 0x02,
		0xB0, 0x63, 0x00, 0xB0, 0x62, 0x39, 0xB0, 0x06, 0x48,
		0xB0, 0x63, 0x00, 0xB0, 0x62, 0x3A, 0xB0, 0x06, 0x00,
		0xB0, 0x63, 0x00, 0xB0, 0x62, 0x3B, 0xB0, 0x06, 0x7F,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes() = % X, want % X", got, want)
	}
}

func TestChannelAddressesDoNotOverlap(t *testing.T) {
	type wire struct{ offset, note int }
	seen := make(map[wire]string)

	for _, kind := range console.ChannelKinds() {
		addr, ok := channelAddresses[kind]
		if !ok {
			t.Fatalf("no address for %s", kind)
		}
		if addr.offset > 4 {
			t.Errorf("%s: offset %d leaves the MIDI channel range", kind, addr.offset)
		}
		for i := 0; i < kind.Count(); i++ {
			note := int(addr.note) + i
			if note > console.MIDIDataMax {
				t.Fatalf("%s %d: note %d is not 7-bit", kind, i, note)
			}
			w := wire{int(addr.offset), note}
			if other, dup := seen[w]; dup {
				t.Fatalf("%s %d collides with %s", kind, i, other)
			}
			seen[w] = kind.ID()
		}
	}
}

func TestSocketAddressesDoNotOverlap(t *testing.T) {
	seen := make(map[int]string)
	for _, kind := range console.SocketKinds() {
		addr := socketAddresses[kind]
		for i := 0; i < kind.Count(); i++ {
			note := int(addr.note) + i
			if note > console.MIDIDataMax {
				t.Fatalf("%s %d: note %d is not 7-bit", kind, i, note)
			}
			if other, dup := seen[note]; dup {
				t.Fatalf("%s %d collides with %s", kind, i, other)
			}
			seen[note] = kind.ID()
		}
	}
}

func TestEncodeUnknownCommand(t *testing.T) {
	e, _ := NewEncoder(1)
	if _, err := e.Encode(command.Command{}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Encode() error = %v, want ErrUnknownCommand", err)
	}
}

func TestEncodedSysExIsValid(t *testing.T) {
	e, _ := NewEncoder(1)
	cmd := build(t, command.OpSetChannelName, command.Fields{
		"channelType": "stereo_ufx_return", "stereoUfxReturn": 7, "name": "Verb~1",
	})
	msgs, err := e.Encode(cmd)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Encode() returned %d messages", len(msgs))
	}
	if err := checkSysEx(msgs[0].Bytes()); err != nil {
		t.Errorf("checkSysEx() error = %v", err)
	}
}

func TestSysExFraming(t *testing.T) {
	tests := []struct {
		name    string
		body    []byte
		wantErr bool
	}{
		{"colour", []byte{0x00, sysExColour, 0x05, 0x02}, false},
		{"name", append([]byte{0x00, sysExName, 0x05}, "Lead Vox"...), false},
		{"empty body", nil, true},
		{"8-bit name", append([]byte{0x00, sysExName, 0x05}, "Chœur"...), true},
		{"status byte in body", []byte{0x00, sysExColour, 0x90, 0x02}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := sysEx(tt.body...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sysEx() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrSysExFrame) {
					t.Errorf("sysEx() error = %v, want ErrSysExFrame", err)
				}
				return
			}
			if got, want := msg.Bytes(), header(tt.body...); !bytes.Equal(got, want) {
				t.Errorf("sysEx() = % X, want % X", got, want)
			}
		})
	}
}

func TestCheckSysEx(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", header(0x00, sysExColour, 0x01, 0x03), false},
		{"too short", []byte{SysExStart, SysExEnd}, true},
		{"bad start", append([]byte{0x90}, header(0x01)[1:]...), true},
		{"bad end", header(0x01)[:len(header(0x01))-1], true},
		{"foreign header", []byte{SysExStart, 0x43, 0x10, 0x4C, 0x00, 0x00, 0x00, 0x00, 0x01, SysExEnd}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSysEx(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSysEx() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
