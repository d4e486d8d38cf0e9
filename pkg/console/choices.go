package console

import (
	"fmt"
	"math"
)

// Choice is one (id, label) entry of an enumerated table
type Choice[T comparable] struct {
	ID    T      `json:"id"`
	Label string `json:"label"`
}

// Choices is an ordered, read-only choice table
type Choices[T comparable] struct {
	name  string
	items []Choice[T]
	index map[T]int
}

// NewChoices builds a table; the order of items is preserved
func NewChoices[T comparable](name string, items ...Choice[T]) *Choices[T] {
	c := &Choices[T]{
		name:  name,
		items: append([]Choice[T](nil), items...),
		index: make(map[T]int, len(items)),
	}
	for i, item := range items {
		if _, dup := c.index[item.ID]; !dup {
			c.index[item.ID] = i
		}
	}
	return c
}

// Name returns the table name
func (c *Choices[T]) Name() string { return c.name }

// Len returns the number of entries
func (c *Choices[T]) Len() int { return len(c.items) }

// Contains reports whether id is a member of the table
func (c *Choices[T]) Contains(id T) bool {
	_, ok := c.index[id]
	return ok
}

// Label returns the display label for id
func (c *Choices[T]) Label(id T) (string, bool) {
	i, ok := c.index[id]
	if !ok {
		return "", false
	}
	return c.items[i].Label, true
}

// All returns a copy of the entries in table order
func (c *Choices[T]) All() []Choice[T] {
	return append([]Choice[T](nil), c.items...)
}

// Without returns a new table with the given ids removed
func (c *Choices[T]) Without(name string, ids ...T) *Choices[T] {
	drop := make(map[T]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []Choice[T]
	for _, item := range c.items {
		if !drop[item.ID] {
			kept = append(kept, item)
		}
	}
	return NewChoices(name, kept...)
}

func (c *Choices[T]) verify() error {
	if len(c.items) == 0 {
		return fmt.Errorf("choice table %s is empty", c.name)
	}
	if len(c.index) != len(c.items) {
		return fmt.Errorf("choice table %s has duplicate ids", c.name)
	}
	return nil
}

// EQType is a parametric EQ filter shape
type EQType = string

const (
	EQTypeLFShelf  EQType = "lf_shelf"
	EQTypeHFShelf  EQType = "hf_shelf"
	EQTypeBell     EQType = "bell"
	EQTypeHighPass EQType = "high_pass"
	EQTypeLowPass  EQType = "low_pass"
)

// Enumerated tables. Built once at package init and never written afterwards.
var (
	EQTypeChoices = NewChoices("eq_type",
		Choice[string]{EQTypeLFShelf, "LF Shelf"},
		Choice[string]{EQTypeHFShelf, "HF Shelf"},
		Choice[string]{EQTypeBell, "Bell"},
		Choice[string]{EQTypeHighPass, "High Pass"},
		Choice[string]{EQTypeLowPass, "Low Pass"},
	)

	// Band 0 can cut or shelve the low end only, band 3 the high end only
	EQBand0TypeChoices = EQTypeChoices.Without("eq_band0_type", EQTypeHFShelf, EQTypeLowPass)
	EQBand3TypeChoices = EQTypeChoices.Without("eq_band3_type", EQTypeLFShelf, EQTypeHighPass)

	EQFrequencyChoices  = frequencyTable("eq_frequency", 20, 20000)
	HPFFrequencyChoices = frequencyTable("hpf_frequency", 20, 2000)
	FaderLevelChoices   = faderLevelTable()

	ChannelColourChoices = NewChoices("channel_colour",
		Choice[int]{0, "Off"},
		Choice[int]{1, "Red"},
		Choice[int]{2, "Green"},
		Choice[int]{3, "Yellow"},
		Choice[int]{4, "Blue"},
		Choice[int]{5, "Purple"},
		Choice[int]{6, "Light Blue"},
		Choice[int]{7, "White"},
	)

	UFXKeyChoices = NewChoices("ufx_key",
		Choice[int]{0, "C"},
		Choice[int]{1, "C#"},
		Choice[int]{2, "D"},
		Choice[int]{3, "D#"},
		Choice[int]{4, "E"},
		Choice[int]{5, "F"},
		Choice[int]{6, "F#"},
		Choice[int]{7, "G"},
		Choice[int]{8, "G#"},
		Choice[int]{9, "A"},
		Choice[int]{10, "A#"},
		Choice[int]{11, "B"},
	)

	UFXScaleChoices = NewChoices("ufx_scale",
		Choice[int]{0, "Major"},
		Choice[int]{1, "Minor"},
	)
)

// frequencyTable spreads 128 steps logarithmically between lo and hi Hz
func frequencyTable(name string, lo, hi float64) *Choices[int] {
	items := make([]Choice[int], 0, MIDIDataMax+1)
	for i := 0; i <= MIDIDataMax; i++ {
		hz := lo * math.Pow(hi/lo, float64(i)/MIDIDataMax)
		items = append(items, Choice[int]{ID: i, Label: formatHz(hz)})
	}
	return NewChoices(name, items...)
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.0f Hz", hz)
}

// Fader travel: 0x7F is +10 dB, 0x6B is 0 dB, 0x00 is -inf
const (
	faderTopDB    = 10
	faderBottomDB = -54
)

// FaderLevelID converts a dB value on the fader scale to its wire level id
func FaderLevelID(dB int) int {
	return int(math.Round(float64(dB-faderBottomDB) * MIDIDataMax / float64(faderTopDB-faderBottomDB)))
}

func faderLevelTable() *Choices[int] {
	var items []Choice[int]
	for dB := faderTopDB; dB > faderBottomDB; dB-- {
		items = append(items, Choice[int]{ID: FaderLevelID(dB), Label: fmt.Sprintf("%+d dB", dB)})
	}
	items = append(items, Choice[int]{ID: 0, Label: "-inf"})
	return NewChoices("fader_level", items...)
}

// SceneChoices lists the recallable scenes; reserved utility scenes are left out
func SceneChoices() *Choices[int] {
	items := make([]Choice[int], 0, SceneCount-ReservedSceneCount)
	for i := ReservedSceneCount; i < SceneCount; i++ {
		items = append(items, Choice[int]{ID: i, Label: fmt.Sprintf("Scene %d", i+1)})
	}
	return NewChoices("scene", items...)
}

// CueListChoices lists cue list recall ids as presented to the operator.
// The console counts from 0, so presented id n is sent as n-1.
func CueListChoices() *Choices[int] {
	items := make([]Choice[int], 0, CueListCount)
	for i := 1; i <= CueListCount; i++ {
		items = append(items, Choice[int]{ID: i, Label: fmt.Sprintf("ID %d", i)})
	}
	return NewChoices("cue_list", items...)
}

// IntTables returns the integer choice tables keyed by name
func IntTables() map[string]*Choices[int] {
	return map[string]*Choices[int]{
		FaderLevelChoices.Name():    FaderLevelChoices,
		EQFrequencyChoices.Name():   EQFrequencyChoices,
		HPFFrequencyChoices.Name():  HPFFrequencyChoices,
		ChannelColourChoices.Name(): ChannelColourChoices,
		UFXKeyChoices.Name():        UFXKeyChoices,
		UFXScaleChoices.Name():      UFXScaleChoices,
	}
}

// StringTables returns the string choice tables keyed by name
func StringTables() map[string]*Choices[string] {
	return map[string]*Choices[string]{
		EQTypeChoices.Name():      EQTypeChoices,
		EQBand0TypeChoices.Name(): EQBand0TypeChoices,
		EQBand3TypeChoices.Name(): EQBand3TypeChoices,
	}
}
