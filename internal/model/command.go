// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the composer engine.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// PARAMETER TYPES
// =============================================================================

// ParamType is the declared type of a command parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamArray   ParamType = "array"
	ParamEnum    ParamType = "enum"
)

// Valid reports whether t is one of the known parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamNumber, ParamBoolean, ParamArray, ParamEnum:
		return true
	default:
		return false
	}
}

// Schema errors returned by Validate.
var (
	ErrEmptyName         = errors.New("name is empty")
	ErrUnknownParamType  = errors.New("unknown parameter type")
	ErrEnumWithoutValues = errors.New("enum parameter has no values")
	ErrDuplicateParam    = errors.New("duplicate parameter")
)

// =============================================================================
// PARAMETER
// =============================================================================

// Parameter describes one named parameter of a command.
type Parameter struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`

	// DefaultValue is whatever JSON value the schema declared.
	DefaultValue any `json:"defaultValue,omitempty"`

	// EnumValues is non-empty when Type is ParamEnum.
	EnumValues []string `json:"enumValues,omitempty"`

	Examples []string `json:"examples,omitempty"`
}

// Validate checks the parameter invariants.
func (p Parameter) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("parameter: %w", ErrEmptyName)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("parameter %q: %w: %q", p.Name, ErrUnknownParamType, p.Type)
	}
	if p.Type == ParamEnum && len(p.EnumValues) == 0 {
		return fmt.Errorf("parameter %q: %w", p.Name, ErrEnumWithoutValues)
	}
	return nil
}

// HasDefault reports whether a default value was declared.
func (p Parameter) HasDefault() bool {
	return p.DefaultValue != nil
}

// DefaultString formats the default value for display.
func (p Parameter) DefaultString() string {
	if p.DefaultValue == nil {
		return ""
	}
	return fmt.Sprint(p.DefaultValue)
}

// Placeholder returns the text shown for the value slot in hints.
func (p Parameter) Placeholder() string {
	switch {
	case p.Type == ParamEnum && len(p.EnumValues) > 0:
		return strings.Join(p.EnumValues, "|")
	case p.HasDefault():
		return p.DefaultString()
	default:
		return string(p.Type)
	}
}

// MatchFields returns the fields a query is matched against.
func (p Parameter) MatchFields() []string {
	return []string{p.Name, p.Description}
}

// =============================================================================
// COMMAND DESCRIPTOR
// =============================================================================

// CommandDescriptor describes one command an agent accepts.
type CommandDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Usage       string      `json:"usage,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Examples    []string    `json:"examples,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
}

// Validate checks the command and all of its parameters.
func (c CommandDescriptor) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("command: %w", ErrEmptyName)
	}
	seen := make(map[string]bool, len(c.Parameters))
	for _, p := range c.Parameters {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("command %q: %w: %q", c.Name, ErrDuplicateParam, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// HasParameters reports whether the command declares any parameter.
func (c CommandDescriptor) HasParameters() bool {
	return len(c.Parameters) > 0
}

// Parameter looks up a parameter by exact name.
func (c CommandDescriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// RequiredParameters returns the required parameters in declared order.
func (c CommandDescriptor) RequiredParameters() []Parameter {
	var out []Parameter
	for _, p := range c.Parameters {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// MatchFields returns the fields a query is matched against.
func (c CommandDescriptor) MatchFields() []string {
	return []string{c.Name, c.Description}
}

// FindCommand looks up a command by exact name.
func FindCommand(cmds []CommandDescriptor, name string) (CommandDescriptor, bool) {
	for _, c := range cmds {
		if c.Name == name {
			return c, true
		}
	}
	return CommandDescriptor{}, false
}

// SanitizeCommands drops commands that violate the schema invariants and
// returns the kept commands along with one error per dropped command.
func SanitizeCommands(cmds []CommandDescriptor) ([]CommandDescriptor, []error) {
	kept := make([]CommandDescriptor, 0, len(cmds))
	var errs []error
	for _, c := range cmds {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		kept = append(kept, c)
	}
	return kept, errs
}
