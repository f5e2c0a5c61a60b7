// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jeranaias/journal-composer/internal/model"
)

// =============================================================================
// PARAMETER ERRORS
// =============================================================================

var (
	ErrMissingParam       = errors.New("required parameter missing")
	ErrUnknownParam       = errors.New("unknown parameter")
	ErrInvalidValue       = errors.New("invalid value")
	ErrUnexpectedArgument = errors.New("unexpected argument")
)

// ParamError represents a parameter problem in an invocation.
type ParamError struct {
	Kind     error
	Command  string
	Param    string
	Got      string
	Expected string
}

func (e *ParamError) Error() string {
	msg := e.Command + ": " + e.Kind.Error()
	if e.Param != "" {
		msg += " for parameter '" + e.Param + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}

// Unwrap returns the error kind.
func (e *ParamError) Unwrap() error {
	return e.Kind
}

// =============================================================================
// PARAMETER CHECKS
// =============================================================================

// CheckParams checks an invocation's arguments against the command's
// declared parameters: required parameters present, no unknown names, no
// bare words, and values that parse as the declared type. Problems are
// returned in a stable order; nil means none.
func CheckParams(cmd model.CommandDescriptor, inv Invocation) []error {
	var errs []error

	for _, p := range cmd.Parameters {
		if p.Required && !p.HasDefault() && !inv.HasParam(p.Name) {
			errs = append(errs, &ParamError{
				Kind:     ErrMissingParam,
				Command:  cmd.Name,
				Param:    p.Name,
				Expected: p.Placeholder(),
			})
		}
	}

	for _, name := range paramNames(inv) {
		value := inv.Params[name]
		p, ok := cmd.Parameter(name)
		if !ok {
			errs = append(errs, &ParamError{Kind: ErrUnknownParam, Command: cmd.Name, Param: name})
			continue
		}
		if expected, valid := checkValue(p, value); !valid {
			errs = append(errs, &ParamError{
				Kind:     ErrInvalidValue,
				Command:  cmd.Name,
				Param:    name,
				Got:      value,
				Expected: expected,
			})
		}
	}

	for _, arg := range inv.Positional {
		errs = append(errs, &ParamError{
			Kind:     ErrUnexpectedArgument,
			Command:  cmd.Name,
			Got:      arg,
			Expected: `name="value"`,
		})
	}

	return errs
}

// paramNames returns the invocation's parameter names in written order.
func paramNames(inv Invocation) []string {
	if len(inv.Order) == len(inv.Params) {
		return inv.Order
	}
	names := make([]string, 0, len(inv.Params))
	for name := range inv.Params {
		names = append(names, name)
	}
	return sortedCopy(names)
}

// checkValue reports whether value is acceptable for p and, if not, what
// was expected.
func checkValue(p model.Parameter, value string) (string, bool) {
	switch p.Type {
	case model.ParamNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "a number", false
		}
	case model.ParamBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return "true or false", false
		}
	case model.ParamEnum:
		for _, v := range p.EnumValues {
			if strings.EqualFold(value, v) {
				return "", true
			}
		}
		return strings.Join(p.EnumValues, ", "), false
	case model.ParamArray:
		if strings.HasPrefix(strings.TrimSpace(value), "[") {
			var items []any
			if err := json.Unmarshal([]byte(value), &items); err != nil {
				return "a JSON array or comma separated list", false
			}
		}
	}
	return "", true
}

// SplitArray returns the items of an array parameter value, accepting a
// JSON array or a comma separated list.
func SplitArray(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") {
		var items []any
		if err := json.Unmarshal([]byte(value), &items); err == nil {
			out := make([]string, 0, len(items))
			for _, it := range items {
				if s, ok := it.(string); ok {
					out = append(out, s)
				} else {
					b, _ := json.Marshal(it)
					out = append(out, string(b))
				}
			}
			return out
		}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
