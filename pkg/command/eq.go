package command

import (
	"fmt"
	"strings"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// EQField is one of the neutral parametric EQ output fields
type EQField uint8

const (
	EQFieldType EQField = 1 << iota
	EQFieldFrequency
	// EQFieldWidth is the bell's Q/width
	EQFieldWidth
	// EQFieldFilterWidth is the width of a high or low pass filter. It is
	// sent under the same wire name as EQFieldWidth but belongs to the filter.
	EQFieldFilterWidth
	EQFieldGain
)

// EQFieldSet is a set of EQ fields
type EQFieldSet uint8

// Has reports whether f is in the set
func (s EQFieldSet) Has(f EQField) bool { return s&EQFieldSet(f) != 0 }

func (s EQFieldSet) String() string {
	names := []struct {
		f    EQField
		name string
	}{
		{EQFieldType, "type"},
		{EQFieldFrequency, "frequency"},
		{EQFieldWidth, "width"},
		{EQFieldFilterWidth, "filter_width"},
		{EQFieldGain, "gain"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func eqSet(fields ...EQField) EQFieldSet {
	var s EQFieldSet
	for _, f := range fields {
		s |= EQFieldSet(f)
	}
	return s
}

// eqBand holds what the operator can choose on one band. Bands with no type
// table are fixed to bell.
type eqBand struct {
	types *console.Choices[string]
}

var eqBands = [console.EQBandCount]eqBand{
	{types: console.EQBand0TypeChoices},
	{},
	{},
	{types: console.EQBand3TypeChoices},
}

// eqRules maps a filter shape to the fields it uses
var eqRules = map[console.EQType]EQFieldSet{
	console.EQTypeBell:     eqSet(EQFieldType, EQFieldFrequency, EQFieldWidth, EQFieldGain),
	console.EQTypeLFShelf:  eqSet(EQFieldType, EQFieldFrequency, EQFieldGain),
	console.EQTypeHFShelf:  eqSet(EQFieldType, EQFieldFrequency, EQFieldGain),
	console.EQTypeHighPass: eqSet(EQFieldType, EQFieldFrequency, EQFieldFilterWidth),
	console.EQTypeLowPass:  eqSet(EQFieldType, EQFieldFrequency, EQFieldFilterWidth),
}

// RequiredEQFields returns the fields that are meaningful for a band and type.
// Validation and encoding both go through it. Bands 1 and 2 are always bell,
// whatever type is passed. The second result is false when the band does not
// exist or cannot take the type.
func RequiredEQFields(band int, typ console.EQType) (EQFieldSet, bool) {
	if band < 0 || band >= console.EQBandCount {
		return 0, false
	}
	b := eqBands[band]
	if b.types == nil {
		typ = console.EQTypeBell
	} else if !b.types.Contains(typ) {
		return 0, false
	}
	set, ok := eqRules[typ]
	return set, ok
}

// EQBandHasTypeChoice reports whether the operator picks a type on band
func EQBandHasTypeChoice(band int) bool {
	return band >= 0 && band < console.EQBandCount && eqBands[band].types != nil
}

// Operator-facing EQ field ids, e.g. "band0Type", "band2Gain"
func eqTypeField(band int) string      { return fmt.Sprintf("band%dType", band) }
func eqFrequencyField(band int) string { return fmt.Sprintf("band%dFrequency", band) }
func eqWidthField(band int) string     { return fmt.Sprintf("band%dWidth", band) }
func eqGainField(band int) string      { return fmt.Sprintf("band%dGain", band) }

// eqType returns the selected type of band, bell for fixed bands
func eqType(ps *ParameterSet, band int) console.EQType {
	if !EQBandHasTypeChoice(band) {
		return console.EQTypeBell
	}
	return ps.Text(eqTypeField(band))
}

// eqFieldSpecs lists the fields the validator must check next. It asks for
// the type first on bands that have one, then for the full set.
func eqFieldSpecs(ps *ParameterSet) []FieldSpec {
	band := ps.Int(fieldBand)
	if band < 0 || band >= console.EQBandCount {
		return nil
	}

	typeSpec := func() FieldSpec {
		return stringChoiceField(eqTypeField(band), "Type", eqBands[band].types)
	}
	if EQBandHasTypeChoice(band) && !ps.Has(eqTypeField(band)) {
		return []FieldSpec{typeSpec()}
	}

	set, ok := RequiredEQFields(band, eqType(ps, band))
	if !ok {
		return nil
	}

	var specs []FieldSpec
	if EQBandHasTypeChoice(band) {
		specs = append(specs, typeSpec())
	}
	if set.Has(EQFieldFrequency) {
		specs = append(specs, intChoiceField(eqFrequencyField(band), "Frequency", console.EQFrequencyChoices))
	}
	if set.Has(EQFieldWidth) || set.Has(EQFieldFilterWidth) {
		specs = append(specs, floatField(eqWidthField(band), "Width", console.EQMinimumWidth, console.EQMaximumWidth, 0))
	}
	if set.Has(EQFieldGain) {
		specs = append(specs, floatField(eqGainField(band), "Gain", console.EQMinimumGain, console.EQMaximumGain, console.EQGainStep))
	}
	return specs
}

// encodeEQ copies the band's fields onto the neutral output names
func encodeEQ(ps *ParameterSet, b *builder) error {
	band := ps.Int(fieldBand)
	typ := eqType(ps, band)
	set, ok := RequiredEQFields(band, typ)
	if !ok {
		return fmt.Errorf("parametric eq: band %d cannot take type %q", band, typ)
	}

	b.setInt("bandNo", band)
	if set.Has(EQFieldType) {
		b.setText("type", typ)
	}
	if set.Has(EQFieldFrequency) {
		b.setInt("frequency", ps.Int(eqFrequencyField(band)))
	}
	if set.Has(EQFieldWidth) || set.Has(EQFieldFilterWidth) {
		b.setFloat("width", ps.Float(eqWidthField(band)))
	}
	if set.Has(EQFieldGain) {
		b.setFloat("gain", ps.Float(eqGainField(band)))
	}
	return nil
}
