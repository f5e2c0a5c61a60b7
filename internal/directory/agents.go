// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/journal-composer/internal/model"
)

var (
	// ErrInvalidAgentID is returned for ids that cannot appear after '@'.
	ErrInvalidAgentID = errors.New("invalid agent id")

	// ErrDuplicateAgent is returned when two agents share an id.
	ErrDuplicateAgent = errors.New("duplicate agent id")
)

// agentIDPattern matches the tokens the mention detector recognizes.
var agentIDPattern = regexp.MustCompile(`^[\w-]+$`)

// agentsFile is the on-disk layout.
type agentsFile struct {
	Agents []model.Agent `yaml:"agents"`
}

// ParseAgents decodes an agents YAML document and checks the ids.
func ParseAgents(data []byte) ([]model.Agent, error) {
	var f agentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse agents: %w", err)
	}

	seen := make(map[string]bool, len(f.Agents))
	for i, a := range f.Agents {
		if !agentIDPattern.MatchString(a.ID) {
			return nil, fmt.Errorf("agent %d: %w: %q", i, ErrInvalidAgentID, a.ID)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("agent %d: %w: %q", i, ErrDuplicateAgent, a.ID)
		}
		seen[a.ID] = true
	}
	return f.Agents, nil
}

// LoadAgents reads and parses an agents file.
func LoadAgents(path string) ([]model.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}
	return ParseAgents(data)
}

// MarshalAgents encodes agents in the file layout.
func MarshalAgents(agents []model.Agent) ([]byte, error) {
	return yaml.Marshal(agentsFile{Agents: agents})
}
