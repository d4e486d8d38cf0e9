package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/config"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/transport"
)

func baseConfig() config.Config {
	var cfg config.Config
	cfg.Console.Port = 51325
	cfg.Console.MIDIChannel = 1
	cfg.Console.Timeout = time.Second
	cfg.Transport = config.TransportTCP
	cfg.Log.Level = "debug"
	return cfg
}

func TestFromConfigDryRun(t *testing.T) {
	cfg := baseConfig()
	cfg.Transport = config.TransportDryRun

	var logs bytes.Buffer
	a, err := FromConfig(cfg, Options{LogWriter: &logs})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	defer a.Close()

	if _, ok := a.Transport.(*transport.DryRun); !ok {
		t.Fatalf("Transport = %T, want *transport.DryRun", a.Transport)
	}
	if _, err := a.Dispatcher.Dispatch(context.Background(), command.Request{
		Operation: command.OpRecallScene,
		Fields:    command.Fields{"scene": 10},
	}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !strings.Contains(logs.String(), "dry-run") {
		t.Errorf("logs = %s", logs.String())
	}
}

func TestFromConfigTCP(t *testing.T) {
	cfg := baseConfig()
	if _, err := FromConfig(cfg, Options{LogWriter: &bytes.Buffer{}}); !errors.Is(err, config.ErrNoHost) {
		t.Errorf("FromConfig() without host error = %v, want ErrNoHost", err)
	}

	cfg.Console.Host = "192.0.2.10"
	a, err := FromConfig(cfg, Options{LogWriter: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	tcp, ok := a.Transport.(*transport.TCP)
	if !ok || tcp.Addr() != "192.0.2.10:51325" {
		t.Errorf("Transport = %#v", a.Transport)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFromConfigOverrides(t *testing.T) {
	cfg := baseConfig()
	rec := transport.NewRecorder(nil)
	a, err := FromConfig(cfg, Options{LogWriter: &bytes.Buffer{}, Transport: rec})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if a.Transport != command.Transport(rec) {
		t.Error("explicit transport was not used")
	}

	cfg.Console.MIDIChannel = 13
	if _, err := FromConfig(cfg, Options{LogWriter: &bytes.Buffer{}}); err == nil {
		t.Error("FromConfig() accepted MIDI channel 13")
	}
}
