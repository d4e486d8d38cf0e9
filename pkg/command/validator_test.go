package command

import (
	"errors"
	"math"
	"testing"
)

func TestValidateUnknownOperation(t *testing.T) {
	_, err := Validate(Request{Operation: "explode"})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Validate() error = %v, want ErrUnknownOperation", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		op    Operation
		field Fields
		want  string
		rule  Rule
	}{
		{"missing kind", OpMute, Fields{"input": 1, "mute": true}, "channelType", RuleRequired},
		{"kind not a string", OpMute, Fields{"channelType": 3, "input": 1, "mute": true}, "channelType", RuleType},
		{"unknown kind", OpMute, Fields{"channelType": "monitor", "channelNo": 1, "mute": true}, "channelType", RuleChoice},
		{"missing index", OpMute, Fields{"channelType": "input", "mute": true}, "input", RuleRequired},
		{"index and alias disagree", OpMute, Fields{"channelType": "input", "input": 1, "channelNo": 2, "mute": true}, "channelNo", RuleConflict},
		{"fractional index", OpMute, Fields{"channelType": "input", "input": 1.5, "mute": true}, "input", RuleType},
		{"missing bool", OpMute, Fields{"channelType": "input", "input": 1}, "mute", RuleRequired},
		{"number as bool", OpMute, Fields{"channelType": "input", "input": 1, "mute": 1}, "mute", RuleType},
		{"level not in table", OpFaderLevel, Fields{"channelType": "input", "input": 1, "level": 1}, "level", RuleChoice},
		{"gain below minimum", OpSetSocketPreampGain, Fields{"socketType": "mixrack_socket", "socketNo": 0, "gain": 4.5}, "gain", RuleRange},
		{"gain above maximum", OpSetSocketPreampGain, Fields{"socketType": "mixrack_socket", "socketNo": 0, "gain": 60.5}, "gain", RuleRange},
		{"gain off step", OpSetSocketPreampGain, Fields{"socketType": "mixrack_socket", "socketNo": 0, "gain": 30.25}, "gain", RuleStep},
		{"gain not finite", OpSetSocketPreampGain, Fields{"socketType": "mixrack_socket", "socketNo": 0, "gain": math.NaN()}, "gain", RuleType},
		{"unknown socket kind", OpSetSocketPreampPad, Fields{"socketType": "stagebox", "socketNo": 0, "pad": true}, "socketType", RuleChoice},
		{"colour not in table", OpSetChannelColour, Fields{"channelType": "input", "input": 0, "colour": 8}, "colour", RuleChoice},
		{"name too long", OpSetChannelName, Fields{"channelType": "input", "input": 0, "name": "Lead Vocal"}, "name", RuleLength},
		{"name not ascii", OpSetChannelName, Fields{"channelType": "input", "input": 0, "name": "Chœur"}, "name", RuleCharset},
		{"dca out of table", OpDCAAssign, Fields{"channelType": "input", "input": 0, "destinationDca": 24, "assign": true}, "destinationDca", RuleRange},
		{"mute group negative", OpMuteGroupAssign, Fields{"channelType": "input", "input": 0, "destinationMuteGroup": -1, "assign": true}, "destinationMuteGroup", RuleRange},
		{"control number", OpGoNextPrevious, Fields{"controlNumber": 128, "controlValue": 0}, "controlNumber", RuleRange},
		{"control value", OpGoNextPrevious, Fields{"controlNumber": 0, "controlValue": -1}, "controlValue", RuleRange},
		{"midi channel zero", OpSetUFXUnitParameter, Fields{"midiChannel": 0, "controlNumber": 0, "controlValue": 0}, "midiChannel", RuleRange},
		{"midi channel seventeen", OpSetUFXUnitParameter, Fields{"midiChannel": 17, "controlNumber": 0, "controlValue": 0}, "midiChannel", RuleRange},
		{"ufx key", OpSetUFXGlobalKey, Fields{"key": 12}, "key", RuleChoice},
		{"eq band", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 4}, "band", RuleRange},
		{"eq band 0 excludes low pass", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 0, "band0Type": "low_pass"}, "band0Type", RuleChoice},
		{"eq band 0 excludes hf shelf", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 0, "band0Type": "hf_shelf"}, "band0Type", RuleChoice},
		{"eq band 3 excludes high pass", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 3, "band3Type": "high_pass"}, "band3Type", RuleChoice},
		{"eq band 3 excludes lf shelf", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 3, "band3Type": "lf_shelf"}, "band3Type", RuleChoice},
		{"eq bell needs width", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 2, "band2Frequency": 72, "band2Gain": 0}, "band2Width", RuleRequired},
		{"eq width range", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 1, "band1Frequency": 72, "band1Width": 1.6, "band1Gain": 0}, "band1Width", RuleRange},
		{"eq gain step", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 1, "band1Frequency": 72, "band1Width": 1, "band1Gain": 0.3}, "band1Gain", RuleStep},
		{"eq shelf needs gain", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 3, "band3Type": "hf_shelf", "band3Frequency": 72}, "band3Gain", RuleRequired},
		{"eq frequency", OpParametricEQ, Fields{"channelType": "input", "input": 0, "band": 0, "band0Type": "high_pass", "band0Frequency": 128}, "band0Frequency", RuleChoice},
		{"fixed input index", OpHPFFrequency, Fields{"channelNo": 3, "frequency": 10}, "input", RuleRequired},
		{"destination alias conflict", OpAuxFxMatrixSendLevel, Fields{
			"channelType": "input", "input": 0,
			"destinationChannelType": "mono_aux", "destinationMonoAux": 1, "destinationChannelNo": 2,
			"level": 0,
		}, "destinationChannelNo", RuleConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := Validate(Request{Operation: tt.op, Fields: tt.field})
			if err == nil {
				t.Fatalf("Validate() = %v, want error", ps.Fields())
			}
			if ps != nil {
				t.Error("Validate() returned a partial ParameterSet")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %T %v, want *ValidationError", err, err)
			}
			if ve.Field != tt.want || ve.Rule != tt.rule {
				t.Errorf("error on %s/%s, want %s/%s (%v)", ve.Field, ve.Rule, tt.want, tt.rule, err)
			}
			if IsAddressingError(err) {
				t.Error("validation failure reported as addressing error")
			}
		})
	}
}

func TestValidateCoercion(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{"int", 5, 5},
		{"integral float", 5.0, 5},
		{"string", "5", 5},
		{"padded string", " 5 ", 5},
		{"float string", "5.0", 5},
		{"uint8", uint8(5), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := Validate(Request{Operation: OpMute, Fields: Fields{
				"channelType": "input", "input": tt.input, "mute": true,
			}})
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			target, _ := ps.Target(RoleSource)
			if target.Index != tt.want {
				t.Errorf("Index = %d, want %d", target.Index, tt.want)
			}
		})
	}
}

func TestValidateAliasAgreement(t *testing.T) {
	ps, err := Validate(Request{Operation: OpMute, Fields: Fields{
		"channelType": "input", "input": 4, "channelNo": 4.0, "mute": "false",
	}})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ps.Bool("mute") {
		t.Error("mute = true, want false")
	}
}

func TestValidateReadsOnlyRequiredEQFields(t *testing.T) {
	ps, err := Validate(Request{Operation: OpParametricEQ, Fields: Fields{
		"channelType": "input", "input": 0, "band": 0,
		"band0Type": "high_pass", "band0Frequency": 5, "band0Width": 1,
		// gain is not read for a high pass, so a bad value is harmless
		"band0Gain": 99,
		"band1Gain": "bad",
	}})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, f := range []string{"band0Gain", "band1Gain"} {
		if ps.Has(f) {
			t.Errorf("ParameterSet has %s", f)
		}
	}
	for _, f := range []string{"band", "band0Type", "band0Frequency", "band0Width"} {
		if !ps.Has(f) {
			t.Errorf("ParameterSet lacks %s", f)
		}
	}
}

func TestValidateLeavesKindApplicabilityToResolve(t *testing.T) {
	// a DCA cannot be assigned to a DCA, but that is a topology failure
	ps, err := Validate(Request{Operation: OpDCAAssign, Fields: Fields{
		"channelType": "dca", "dca": 0, "destinationDca": 1, "assign": true,
	}})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := Resolve(ps); !IsAddressingError(err) {
		t.Errorf("Resolve() error = %v, want AddressingError", err)
	}
}

func TestRequiredFields(t *testing.T) {
	ids := func(specs []FieldSpec) []string {
		var out []string
		for _, s := range specs {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		fields Fields
		want   []string
	}{
		{"no band yet", Fields{}, []string{"band"}},
		{"band 1", Fields{"band": 1}, []string{"band", "band1Frequency", "band1Width", "band1Gain"}},
		{"band 0 type unknown", Fields{"band": 0}, []string{"band", "band0Type"}},
		{"band 0 high pass", Fields{"band": 0, "band0Type": "high_pass"}, []string{"band", "band0Type", "band0Frequency", "band0Width"}},
		{"band 3 shelf", Fields{"band": 3, "band3Type": "hf_shelf"}, []string{"band", "band3Type", "band3Frequency", "band3Gain"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := RequiredFields(Request{Operation: OpParametricEQ, Fields: tt.fields})
			if err != nil {
				t.Fatalf("RequiredFields() error = %v", err)
			}
			got := ids(specs)
			if len(got) != len(tt.want) {
				t.Fatalf("RequiredFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("RequiredFields()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRequiredEQFields(t *testing.T) {
	tests := []struct {
		band int
		typ  string
		ok   bool
		want EQFieldSet
	}{
		{0, "bell", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldWidth, EQFieldGain)},
		{0, "lf_shelf", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldGain)},
		{0, "high_pass", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldFilterWidth)},
		{0, "low_pass", false, 0},
		{1, "high_pass", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldWidth, EQFieldGain)},
		{2, "", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldWidth, EQFieldGain)},
		{3, "low_pass", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldFilterWidth)},
		{3, "hf_shelf", true, eqSet(EQFieldType, EQFieldFrequency, EQFieldGain)},
		{3, "lf_shelf", false, 0},
		{4, "bell", false, 0},
		{-1, "bell", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, ok := RequiredEQFields(tt.band, tt.typ)
			if ok != tt.ok || got != tt.want {
				t.Errorf("RequiredEQFields(%d, %q) = %v, %v, want %v, %v", tt.band, tt.typ, got, ok, tt.want, tt.ok)
			}
			if got.Has(EQFieldWidth) && got.Has(EQFieldFilterWidth) {
				t.Errorf("band %d %q has both bell width and filter width", tt.band, tt.typ)
			}
		})
	}
}

func TestValidateOversizedIntegers(t *testing.T) {
	tests := []struct {
		name   string
		op     Operation
		fields Fields
		field  string
	}{
		{"index", OpMute, Fields{"channelType": "input", "input": 1e20, "mute": true}, "input"},
		{"negative index", OpMute, Fields{"channelType": "input", "input": -1e20, "mute": true}, "input"},
		{"index string", OpMute, Fields{"channelType": "input", "input": "1e20", "mute": true}, "input"},
		{"largest float", OpMute, Fields{"channelType": "input", "input": math.MaxFloat64, "mute": true}, "input"},
		{"int field", OpGoNextPrevious, Fields{"controlNumber": 1e20, "controlValue": 1}, "controlNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(Request{Operation: tt.op, Fields: tt.fields})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.field || ve.Rule != RuleRange {
				t.Errorf("got field %q rule %s, want %q %s", ve.Field, ve.Rule, tt.field, RuleRange)
			}
		})
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	def, ok := Lookup(OpGoNextPrevious)
	if !ok {
		t.Fatal("Lookup() found no goNextPrevious")
	}
	*def.Fields[0].Max = 1000
	*def.Fields[0].Min = -1000

	mute, _ := Lookup(OpMute)
	mute.Targets[0].Kinds[0] = "changed"

	for _, d := range Operations() {
		for i := range d.Fields {
			if d.Fields[i].Max != nil {
				*d.Fields[i].Max = 1000
			}
		}
	}
	specs, err := RequiredFields(Request{Operation: OpGoNextPrevious})
	if err != nil {
		t.Fatalf("RequiredFields() error = %v", err)
	}
	*specs[0].Max = 1000

	_, err = Build(Request{Operation: OpGoNextPrevious, Fields: Fields{"controlNumber": 500, "controlValue": 1}})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "controlNumber" || ve.Rule != RuleRange {
		t.Errorf("Build() after changing a copy error = %v, want controlNumber range", err)
	}

	again, _ := Lookup(OpGoNextPrevious)
	if *again.Fields[0].Max != 127 || *again.Fields[0].Min != 0 {
		t.Errorf("registry bounds = [%v, %v], want [0, 127]", *again.Fields[0].Min, *again.Fields[0].Max)
	}
	mute, _ = Lookup(OpMute)
	if mute.Targets[0].Kinds[0] != "input" {
		t.Errorf("registry kinds[0] = %q, want input", mute.Targets[0].Kinds[0])
	}
}
