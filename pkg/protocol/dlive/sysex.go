package dlive

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// SysEx framing bytes
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// ErrSysExFrame is returned when a SysEx message would not be a well formed
// dLive message
var ErrSysExFrame = errors.New("malformed dLive sysex")

// sysEx frames body behind the dLive header and checks the finished message
func sysEx(body ...byte) (midi.Message, error) {
	data := make([]byte, 0, len(sysExHeader)+len(body))
	data = append(data, sysExHeader...)
	data = append(data, body...)
	msg := midi.SysEx(data)
	if err := checkSysEx(msg.Bytes()); err != nil {
		return nil, err
	}
	return msg, nil
}

// checkSysEx verifies the F0/F7 framing, the A&H header and that every byte
// between them is 7-bit
func checkSysEx(data []byte) error {
	if len(data) < len(sysExHeader)+3 {
		return fmt.Errorf("%w: %d bytes is shorter than header and body", ErrSysExFrame, len(data))
	}
	if data[0] != SysExStart || data[len(data)-1] != SysExEnd {
		return fmt.Errorf("%w: framed by 0x%02X..0x%02X", ErrSysExFrame, data[0], data[len(data)-1])
	}
	if !bytes.Equal(data[1:1+len(sysExHeader)], sysExHeader) {
		return fmt.Errorf("%w: header % X", ErrSysExFrame, data[1:1+len(sysExHeader)])
	}
	for i, b := range data[1 : len(data)-1] {
		if b > console.MIDIDataMax {
			return fmt.Errorf("%w: byte 0x%02X at offset %d", ErrSysExFrame, b, i+1)
		}
	}
	return nil
}
