package transport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/protocol/dlive"
)

// DryRun encodes commands and logs them instead of sending
type DryRun struct {
	encoder *dlive.Encoder
	logger  *zap.Logger

	mu    sync.Mutex
	count int
}

// NewDryRun creates a new dry-run transport
func NewDryRun(encoder *dlive.Encoder, logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{encoder: encoder, logger: logger}
}

// Send encodes cmd and logs the result
func (d *DryRun) Send(_ context.Context, cmd command.Command) error {
	msgs, err := d.encoder.Encode(cmd)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.count++
	d.mu.Unlock()

	for _, m := range msgs {
		d.logger.Info("dry-run",
			zap.String("command", cmd.String()),
			zap.String("message", m.String()),
			zap.String("bytes", fmt.Sprintf("% X", m.Bytes())))
	}
	return nil
}

// Count returns the number of commands seen
func (d *DryRun) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}
