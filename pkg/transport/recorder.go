package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/protocol/dlive"
)

// Recorder defaults
const (
	DefaultTicksPerQuarter = 480
	DefaultTempo           = 120.0
	DefaultSpacing         = 240 // ticks between commands (an eighth note)
)

// ErrEmptyRecording is returned when writing a recording with no commands
var ErrEmptyRecording = errors.New("nothing recorded")

// Recorder collects encoded commands and writes them as a Standard MIDI
// File, one command per step, for offline inspection or replay from a DAW
type Recorder struct {
	encoder         *dlive.Encoder
	ticksPerQuarter uint16
	tempo           float64
	spacing         uint32

	mu       sync.Mutex
	commands [][]midi.Message
}

// NewRecorder creates a new Recorder
func NewRecorder(encoder *dlive.Encoder) *Recorder {
	return &Recorder{
		encoder:         encoder,
		ticksPerQuarter: DefaultTicksPerQuarter,
		tempo:           DefaultTempo,
		spacing:         DefaultSpacing,
	}
}

// SetSpacing sets the number of ticks between recorded commands
func (r *Recorder) SetSpacing(ticks uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spacing = ticks
}

// Send encodes cmd and appends it to the recording
func (r *Recorder) Send(_ context.Context, cmd command.Command) error {
	msgs, err := r.encoder.Encode(cmd)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, msgs)
	return nil
}

// Len returns the number of recorded commands
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// GenerateMIDI renders the recording as a format 0 SMF
func (r *Recorder) GenerateMIDI() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.commands) == 0 {
		return nil, ErrEmptyRecording
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(r.ticksPerQuarter)

	var track smf.Track

	// Tempo meta event
	microsecondsPerBeat := uint32(60000000.0 / r.tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	// Messages of one command share a tick; commands are spaced apart
	for i, msgs := range r.commands {
		for j, m := range msgs {
			var delta uint32
			if i > 0 && j == 0 {
				delta = r.spacing
			}
			track.Add(delta, m)
		}
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile writes the recording to filename
func (r *Recorder) WriteMIDIFile(filename string) error {
	data, err := r.GenerateMIDI()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
