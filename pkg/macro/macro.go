// Package macro loads named sequences of operation requests from YAML or JSON
// files and runs them through a dispatcher as one unit.
package macro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
)

// Format represents a macro file format
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// ErrNoSteps is returned for a macro without steps
var ErrNoSteps = errors.New("macro has no steps")

// Macro is a named, ordered list of requests
type Macro struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []command.Request `yaml:"steps" json:"steps"`
}

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects the format from file content. Anything that
// does not open a JSON object or array is treated as YAML.
func DetectFormatFromContent(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a macro in the given format. FormatUnknown falls back to
// content detection.
func Parse(data []byte, format Format) (*Macro, error) {
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}

	var m Macro
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse YAML macro: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse JSON macro: %w", err)
		}
	default:
		return nil, errors.New("cannot determine macro format")
	}

	if len(m.Steps) == 0 {
		return nil, ErrNoSteps
	}
	for i, step := range m.Steps {
		if step.Operation == "" {
			return nil, &command.StepError{Index: i, Err: errors.New("missing operation")}
		}
	}
	return &m, nil
}

// Load reads and parses a macro file
func Load(filename string) (*Macro, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read macro: %w", err)
	}
	m, err := Parse(data, DetectFormat(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return m, nil
}

// Resolve builds every step. The first failure is returned as a
// *command.StepError and no commands are returned.
func (m *Macro) Resolve() ([]command.Command, error) {
	cmds := make([]command.Command, 0, len(m.Steps))
	for i, step := range m.Steps {
		cmd, err := command.Build(step)
		if err != nil {
			return nil, &command.StepError{Index: i, Err: err}
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Run sends every step through d in order. Nothing is sent unless all steps
// resolve.
func (m *Macro) Run(ctx context.Context, d *command.Dispatcher) ([]command.Command, error) {
	return d.DispatchAll(ctx, m.Steps)
}
