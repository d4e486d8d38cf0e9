package console

import (
	"sort"
	"strings"
)

// KindSummary is the read-only view of a channel or socket kind served to
// clients
type KindSummary struct {
	ID           string   `json:"id" yaml:"id"`
	Label        string   `json:"label" yaml:"label"`
	Count        int      `json:"count" yaml:"count"`
	Field        string   `json:"field" yaml:"field"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Channels summarises every channel kind in catalog order
func Channels() []KindSummary {
	out := make([]KindSummary, 0, channelKindCount)
	for _, k := range ChannelKinds() {
		out = append(out, KindSummary{
			ID:           k.ID(),
			Label:        k.Label(),
			Count:        k.Count(),
			Field:        k.Field(""),
			Capabilities: strings.Split(k.Capabilities().String(), "|"),
		})
	}
	return out
}

// Sockets summarises every socket kind in catalog order
func Sockets() []KindSummary {
	out := make([]KindSummary, 0, socketKindCount)
	for _, k := range SocketKinds() {
		out = append(out, KindSummary{ID: k.ID(), Label: k.Label(), Count: k.Count(), Field: k.Field("")})
	}
	return out
}

// TableNames returns the names of every choice table, sorted
func TableNames() []string {
	names := []string{"scene", "cue_list"}
	for name := range IntTables() {
		names = append(names, name)
	}
	for name := range StringTables() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the entries of the named choice table. The result is a
// []Choice[int] or []Choice[string].
func Table(name string) (any, bool) {
	switch name {
	case "scene":
		return SceneChoices().All(), true
	case "cue_list":
		return CueListChoices().All(), true
	}
	if t, ok := IntTables()[name]; ok {
		return t.All(), true
	}
	if t, ok := StringTables()[name]; ok {
		return t.All(), true
	}
	return nil, false
}
