package command

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned for operations that are not registered
var ErrUnknownOperation = errors.New("unknown operation")

// ErrNoParameters is returned by Resolve and Encode when given no parameter set
var ErrNoParameters = errors.New("no validated parameter set")

// Rule names the constraint a field value violated
type Rule string

const (
	RuleRequired Rule = "required"
	RuleType     Rule = "type"
	RuleRange    Rule = "range"
	RuleStep     Rule = "step"
	RuleChoice   Rule = "choice"
	RuleConflict Rule = "conflict"
	RuleLength   Rule = "length"
	RuleCharset  Rule = "charset"
)

// ValidationError reports a field value that breaks a scalar bound, an
// enumerated membership or a cross-field rule
type ValidationError struct {
	Operation Operation
	Field     string
	Rule      Rule
	Value     any
	Detail    string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: field %q violates %s", e.Operation, e.Field, e.Rule)
	if e.Value != nil {
		msg += fmt.Sprintf(" (got %v)", e.Value)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Reason names the addressing constraint that failed
type Reason string

const (
	ReasonOutOfRange    Reason = "out_of_range"
	ReasonNotApplicable Reason = "not_applicable"
	ReasonReserved      Reason = "reserved"
)

// AddressingError reports a (kind, index) pair outside the console topology,
// or a kind that cannot take part in the operation
type AddressingError struct {
	Operation Operation
	Role      Role
	Kind      string
	Index     int
	Reason    Reason
	Detail    string
}

func (e *AddressingError) Error() string {
	msg := fmt.Sprintf("%s: %s %s %d is %s", e.Operation, e.Role, e.Kind, e.Index, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// IsValidationError reports whether err contains a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAddressingError reports whether err contains an AddressingError
func IsAddressingError(err error) bool {
	var ae *AddressingError
	return errors.As(err, &ae)
}

func invalid(op Operation, field string, rule Rule, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Operation: op,
		Field:     field,
		Rule:      rule,
		Value:     value,
		Detail:    fmt.Sprintf(format, args...),
	}
}
