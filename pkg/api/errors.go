package api

import (
	"errors"
	"net/http"

	"go.uber.org/multierr"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
)

// Error kinds reported to clients
const (
	kindUnknownOperation = "unknown_operation"
	kindValidation       = "validation"
	kindAddressing       = "addressing"
	kindNoTransport      = "no_transport"
	kindTransport        = "transport"
)

type fieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type addressViolation struct {
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error      string             `json:"error"`
	Kind       string             `json:"kind"`
	Step       *int               `json:"step,omitempty"`
	Field      *fieldViolation    `json:"field,omitempty"`
	Addressing []addressViolation `json:"addressing,omitempty"`
}

// errorFor maps a dispatcher error to an HTTP status and response body
func errorFor(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var step *command.StepError
	if errors.As(err, &step) {
		body.Step = &step.Index
	}

	var (
		ve *command.ValidationError
		ae *command.AddressingError
	)
	switch {
	case errors.Is(err, command.ErrUnknownOperation):
		body.Kind = kindUnknownOperation
		return http.StatusNotFound, body
	case errors.As(err, &ve):
		body.Kind = kindValidation
		body.Field = &fieldViolation{Field: ve.Field, Rule: string(ve.Rule)}
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &ae):
		body.Kind = kindAddressing
		body.Addressing = addressViolations(err)
		return http.StatusConflict, body
	case errors.Is(err, command.ErrNoTransport):
		body.Kind = kindNoTransport
		return http.StatusServiceUnavailable, body
	default:
		body.Kind = kindTransport
		return http.StatusBadGateway, body
	}
}

// addressViolations lists every addressing failure combined in err
func addressViolations(err error) []addressViolation {
	var step *command.StepError
	if errors.As(err, &step) {
		err = step.Err
	}

	var out []addressViolation
	for _, e := range multierr.Errors(err) {
		var ae *command.AddressingError
		if errors.As(e, &ae) {
			out = append(out, addressViolation{
				Role:   string(ae.Role),
				Kind:   ae.Kind,
				Index:  ae.Index,
				Reason: string(ae.Reason),
			})
		}
	}
	return out
}
