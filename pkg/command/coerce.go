package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	errNotIntegral = errors.New("not an integer")
	errNotFinite   = errors.New("not a finite number")
	errIntRange    = errors.New("outside the integer range")
)

// toBool accepts booleans and their common string spellings; numbers are
// rejected so that a level never turns into a switch
func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return cast.ToBoolE(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("%T is not a boolean", raw)
	}
}

// toInt never rounds: 3.5 is an error, 3.0 is 3
func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case bool:
		return 0, fmt.Errorf("%T is not a number", raw)
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil && int64(int(i)) == i {
			return int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return integral(f)
	default:
		return cast.ToIntE(raw)
	}
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	if f != math.Trunc(f) {
		return 0, errNotIntegral
	}
	// -MinInt is a power of two, so it converts to float64 exactly
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, errIntRange
	}
	return int(f), nil
}

// intRule picks the rule a failed integer coercion breaks
func intRule(err error) Rule {
	if errors.Is(err, errIntRange) {
		return RuleRange
	}
	return RuleType
}

func toFloat(raw any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch v := raw.(type) {
	case bool:
		return 0, fmt.Errorf("%T is not a number", raw)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		f, err = cast.ToFloat64E(raw)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func toText(raw any) (string, error) {
	switch raw.(type) {
	case bool:
		return "", fmt.Errorf("%T is not text", raw)
	}
	return cast.ToStringE(raw)
}
