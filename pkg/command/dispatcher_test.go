package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockTransport records every command it is given
type mockTransport struct {
	mu   sync.Mutex
	sent []Command
	err  error
}

func (m *mockTransport) Send(_ context.Context, cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, cmd)
	return nil
}

func (m *mockTransport) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatch(t *testing.T) {
	tr := &mockTransport{}
	d := NewDispatcher(tr, zap.NewNop())

	cmd, err := d.Dispatch(context.Background(), Request{
		Operation: OpMute,
		Fields:    Fields{"channelType": "input", "input": 0, "mute": true},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if tr.count() != 1 || !tr.sent[0].Equal(cmd) {
		t.Errorf("transport got %v, want [%s]", tr.sent, cmd)
	}
}

func TestDispatchStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		isType func(error) bool
	}{
		{
			"validation",
			Request{Operation: OpMute, Fields: Fields{"channelType": "input", "input": 0}},
			IsValidationError,
		},
		{
			"addressing",
			Request{Operation: OpMute, Fields: Fields{"channelType": "input", "input": 500, "mute": true}},
			IsAddressingError,
		},
		{
			"unknown operation",
			Request{Operation: "fly"},
			func(err error) bool { return errors.Is(err, ErrUnknownOperation) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &mockTransport{}
			d := NewDispatcher(tr, nil)
			_, err := d.Dispatch(context.Background(), tt.req)
			if !tt.isType(err) {
				t.Errorf("Dispatch() error = %v", err)
			}
			if tr.count() != 0 {
				t.Errorf("transport received %d commands", tr.count())
			}
		})
	}
}

func TestDispatchTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	core, logs := observer.New(zap.ErrorLevel)
	d := NewDispatcher(&mockTransport{err: boom}, zap.New(core))

	_, err := d.Dispatch(context.Background(), Request{
		Operation: OpRecallScene,
		Fields:    Fields{"scene": 10},
	})
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want %v", err, boom)
	}
	if logs.FilterMessage("send failed").Len() != 1 {
		t.Errorf("expected one send failure log, got %v", logs.All())
	}
	entry := logs.All()[0]
	if _, ok := entry.ContextMap()["request_id"]; !ok {
		t.Error("log entry has no request_id")
	}
}

func TestDispatchWithoutTransport(t *testing.T) {
	d := NewDispatcher(nil, nil)
	cmd, err := d.Dispatch(context.Background(), Request{
		Operation: OpSetUFXGlobalScale,
		Fields:    Fields{"scale": 0},
	})
	if !errors.Is(err, ErrNoTransport) {
		t.Errorf("Dispatch() error = %v, want ErrNoTransport", err)
	}
	if cmd.Name() != "set_ufx_global_scale" {
		t.Errorf("Name() = %q", cmd.Name())
	}
}

func TestDispatchAll(t *testing.T) {
	good := Request{Operation: OpRecallScene, Fields: Fields{"scene": 8}}
	bad := Request{Operation: OpRecallScene, Fields: Fields{"scene": 3}}

	t.Run("all valid", func(t *testing.T) {
		tr := &mockTransport{}
		cmds, err := NewDispatcher(tr, nil).DispatchAll(context.Background(), []Request{good, good})
		if err != nil {
			t.Fatalf("DispatchAll() error = %v", err)
		}
		if len(cmds) != 2 || tr.count() != 2 {
			t.Errorf("sent %d of %d commands", tr.count(), len(cmds))
		}
	})

	t.Run("one invalid sends nothing", func(t *testing.T) {
		tr := &mockTransport{}
		_, err := NewDispatcher(tr, nil).DispatchAll(context.Background(), []Request{good, bad})
		var se *StepError
		if !errors.As(err, &se) || se.Index != 1 {
			t.Fatalf("DispatchAll() error = %v, want step 1", err)
		}
		if !IsAddressingError(err) {
			t.Errorf("DispatchAll() error = %v, want AddressingError", err)
		}
		if tr.count() != 0 {
			t.Errorf("transport received %d commands", tr.count())
		}
	})
}

func TestDispatchConcurrent(t *testing.T) {
	tr := &mockTransport{}
	d := NewDispatcher(tr, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.Dispatch(context.Background(), Request{
				Operation: OpFaderLevel,
				Fields:    Fields{"channelType": "input", "input": i, "level": 107},
			})
			if err != nil {
				t.Errorf("Dispatch(%d) error = %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if tr.count() != 32 {
		t.Errorf("transport received %d commands, want 32", tr.count())
	}
}
