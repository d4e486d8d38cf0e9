// Package transport delivers encoded commands to a dLive console
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/protocol/dlive"
)

// DefaultTimeout bounds dialing and each write
const DefaultTimeout = 3 * time.Second

// ErrClosed is returned by Send after Close
var ErrClosed = errors.New("transport closed")

// TCP sends MIDI over TCP to a MixRack or surface. It connects on first use
// and reconnects on the next Send after a failed write. Each command goes out
// in a single write under a lock, so commands never interleave.
type TCP struct {
	addr    string
	timeout time.Duration
	encoder *dlive.Encoder
	logger  *zap.Logger
	dialer  net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewTCP creates a new TCP transport for addr ("host:port")
func NewTCP(addr string, encoder *dlive.Encoder, timeout time.Duration, logger *zap.Logger) *TCP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TCP{
		addr:    addr,
		timeout: timeout,
		encoder: encoder,
		logger:  logger.With(zap.String("console", addr)),
		dialer:  net.Dialer{Timeout: timeout},
	}
}

// Addr returns the console address
func (t *TCP) Addr() string { return t.addr }

// Send encodes cmd and writes it to the console
func (t *TCP) Send(ctx context.Context, cmd command.Command) error {
	payload, err := t.encoder.Bytes(cmd)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.conn == nil {
		conn, err := t.dialer.DialContext(ctx, "tcp", t.addr)
		if err != nil {
			return fmt.Errorf("dial %s: %w", t.addr, err)
		}
		t.logger.Info("connected")
		t.conn = conn
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = t.conn.SetWriteDeadline(deadline)

	if _, err := t.conn.Write(payload); err != nil {
		t.logger.Warn("write failed, dropping connection", zap.Error(err))
		_ = t.conn.Close()
		t.conn = nil
		return fmt.Errorf("write: %w", err)
	}
	t.logger.Debug("TX", zap.String("command", cmd.Name()), zap.String("bytes", fmt.Sprintf("% X", payload)))
	return nil
}

// Close closes the connection; later sends fail with ErrClosed
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
