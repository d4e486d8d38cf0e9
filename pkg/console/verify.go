package console

import (
	"fmt"
)

func init() {
	if err := Verify(); err != nil {
		panic("console: invalid catalog: " + err.Error())
	}
}

// Verify checks that every count is positive and every id is unique within
// its table
func Verify() error {
	ids := make(map[string]bool)
	fields := make(map[string]bool)
	for _, k := range ChannelKinds() {
		if k.Count() <= 0 {
			return fmt.Errorf("channel kind %s has count %d", k, k.Count())
		}
		if ids[k.ID()] {
			return fmt.Errorf("duplicate channel kind id %s", k.ID())
		}
		ids[k.ID()] = true
		if fields[k.Field("")] {
			return fmt.Errorf("duplicate channel kind field %s", k.Field(""))
		}
		fields[k.Field("")] = true
	}

	for _, k := range SocketKinds() {
		if k.Count() <= 0 {
			return fmt.Errorf("socket kind %s has count %d", k, k.Count())
		}
		if ids[k.ID()] {
			return fmt.Errorf("duplicate socket kind id %s", k.ID())
		}
		ids[k.ID()] = true
		if fields[k.Field("")] {
			return fmt.Errorf("duplicate socket kind field %s", k.Field(""))
		}
		fields[k.Field("")] = true
	}

	for _, t := range IntTables() {
		if err := t.verify(); err != nil {
			return err
		}
	}
	for _, t := range StringTables() {
		if err := t.verify(); err != nil {
			return err
		}
	}

	for name, n := range map[string]int{
		"scene":      SceneCount - ReservedSceneCount,
		"cue list":   CueListCount,
		"dca":        DCACount,
		"mute group": MuteGroupCount,
	} {
		if n <= 0 {
			return fmt.Errorf("%s count must be positive, got %d", name, n)
		}
	}
	return nil
}
