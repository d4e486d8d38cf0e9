package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFields(t *testing.T) {
	fields, err := ParseFields([]string{"channelType=input", "input = 3", "mute=true"})
	if err != nil {
		t.Fatalf("ParseFields() error = %v", err)
	}
	want := Fields{"channelType": "input", "input": "3", "mute": "true"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("ParseFields() = %v, want %v", fields, want)
	}

	cmd, err := Build(Request{Operation: OpMute, Fields: fields})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n, _ := cmd.Int("channelNo"); n != 3 {
		t.Errorf("channelNo = %d, want 3", n)
	}

	for _, bad := range [][]string{{"mute"}, {"=true"}, {"a=1", "a=2"}} {
		if _, err := ParseFields(bad); err == nil {
			t.Errorf("ParseFields(%q) succeeded", bad)
		}
	}
}

func TestSplitPairs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"channelType=input input=3 mute=true", []string{"channelType=input", "input=3", "mute=true"}},
		{"name=Lead Vox channelType=input", []string{"name=Lead Vox", "channelType=input"}},
		{"  name=Kick   In  ", []string{"name=Kick In"}},
		{"name=a=b c", []string{"name=a=b c"}},
		{"mute", []string{"mute"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := SplitPairs(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitPairs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name   string
		op     Operation
		fields Fields
		want   []string
	}{
		{"nothing yet", OpMute, Fields{}, []string{"channelType", "mute"}},
		{"kind chosen", OpMute, Fields{"channelType": "mono_aux"}, []string{"monoAux", "mute"}},
		{"alias given", OpMute, Fields{"channelType": "dca", "channelNo": 1}, []string{"mute"}},
		{"fixed input", OpSetHPFOnOff, Fields{}, []string{"input", "hpf"}},
		{"complete", OpRecallScene, Fields{"scene": 9}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hint(Request{Operation: tt.op, Fields: tt.fields})
			if err != nil {
				t.Fatalf("Hint() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hint() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Hint(Request{Operation: "explode"}); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Hint() error = %v, want ErrUnknownOperation", err)
	}
}
