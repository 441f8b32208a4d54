// Package seeds provides the demo agent catalog and loads external agent seed files.
package seeds

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/agent-chat/internal/agents"
	"github.com/JaimeStill/agent-chat/pkg/decode"
)

//go:embed agents.json
var demo []byte

// File is the layout shared by JSON and YAML seed files.
type File struct {
	Agents []agents.CreateCommand `json:"agents"`
}

// Demo returns the embedded demo agents.
func Demo() ([]agents.CreateCommand, error) {
	return parseJSON(demo)
}

// Load reads agents from a .json, .yaml, or .yml seed file.
func Load(path string) ([]agents.CreateCommand, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(content)
	default:
		return parseJSON(content)
	}
}

// Apply creates every agent whose name is not already taken by its owner.
// It returns the number of agents created.
func Apply(ctx context.Context, sys agents.System, cmds []agents.CreateCommand) (int, error) {
	existing := make(map[string]map[string]bool)
	created := 0

	for _, cmd := range cmds {
		names, ok := existing[cmd.OwnerUserID]
		if !ok {
			list, err := sys.ListByOwner(ctx, cmd.OwnerUserID)
			if err != nil {
				return created, fmt.Errorf("list agents for %q: %w", cmd.OwnerUserID, err)
			}
			names = make(map[string]bool, len(list))
			for _, a := range list {
				names[a.Name] = true
			}
			existing[cmd.OwnerUserID] = names
		}

		if names[strings.TrimSpace(cmd.Name)] {
			continue
		}

		a, err := sys.Create(ctx, cmd)
		if err != nil {
			return created, fmt.Errorf("seed agent %q: %w", cmd.Name, err)
		}
		names[a.Name] = true
		created++
	}

	return created, nil
}

func parseJSON(content []byte) ([]agents.CreateCommand, error) {
	var f File
	if err := json.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return f.Agents, nil
}

func parseYAML(content []byte) ([]agents.CreateCommand, error) {
	f, err := decode.YAML[File](content)
	if err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return f.Agents, nil
}
