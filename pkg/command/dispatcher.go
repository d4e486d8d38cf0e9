package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoTransport is returned by Dispatch when no transport is configured
var ErrNoTransport = errors.New("no transport configured")

// Build runs Validate, Resolve and Encode and returns the finished command.
// The first failure stops the pipeline.
func Build(req Request) (Command, error) {
	ps, err := Validate(req)
	if err != nil {
		return Command{}, err
	}
	res, err := Resolve(ps)
	if err != nil {
		return Command{}, err
	}
	return Encode(ps, res)
}

// Dispatcher builds commands and hands them to a transport. It holds no state
// between calls and is safe for concurrent use when the transport is.
type Dispatcher struct {
	transport Transport
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher sending through transport. A nil
// logger disables logging.
func NewDispatcher(transport Transport, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{transport: transport, logger: logger}
}

// Transport returns the configured transport
func (d *Dispatcher) Transport() Transport {
	return d.transport
}

// Resolve builds the command for req without sending it
func (d *Dispatcher) Resolve(req Request) (Command, error) {
	cmd, err := Build(req)
	if err != nil {
		d.logger.Debug("request rejected",
			zap.String("operation", string(req.Operation)),
			zap.Error(err))
		return Command{}, err
	}
	return cmd, nil
}

// Dispatch builds the command for req and sends it. Nothing is sent when any
// stage fails.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Command, error) {
	id := uuid.NewString()
	log := d.logger.With(
		zap.String("request_id", id),
		zap.String("operation", string(req.Operation)),
	)

	cmd, err := Build(req)
	if err != nil {
		log.Warn("request rejected", zap.Error(err))
		return Command{}, err
	}
	if d.transport == nil {
		return cmd, ErrNoTransport
	}

	if err := d.transport.Send(ctx, cmd); err != nil {
		log.Error("send failed", zap.String("command", cmd.String()), zap.Error(err))
		return cmd, fmt.Errorf("send %s: %w", cmd.Name(), err)
	}
	log.Info("command sent", zap.String("command", cmd.String()))
	return cmd, nil
}

// DispatchAll builds every request first and sends only if all of them are
// valid. The error names the index of the failing request.
func (d *Dispatcher) DispatchAll(ctx context.Context, reqs []Request) ([]Command, error) {
	cmds := make([]Command, 0, len(reqs))
	for i, req := range reqs {
		cmd, err := Build(req)
		if err != nil {
			return nil, &StepError{Index: i, Err: err}
		}
		cmds = append(cmds, cmd)
	}
	if d.transport == nil {
		return cmds, ErrNoTransport
	}

	batch := uuid.NewString()
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return cmds[:i], err
		}
		if err := d.transport.Send(ctx, cmd); err != nil {
			d.logger.Error("batch send failed",
				zap.String("batch_id", batch),
				zap.Int("step", i),
				zap.Error(err))
			return cmds[:i], &StepError{Index: i, Err: err}
		}
	}
	d.logger.Info("batch sent", zap.String("batch_id", batch), zap.Int("commands", len(cmds)))
	return cmds, nil
}

// StepError wraps the failure of one request in a batch
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Index, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }
