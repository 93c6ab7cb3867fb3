// Copyright 2025 The Agentspace Neo4j Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import "fmt"

// ToolsetConfig is the declared list of tool names under one toolset name.
type ToolsetConfig struct {
	Name      string   `yaml:"name"`
	ToolNames []string `yaml:"tools"`
}

// Toolset is an initialized toolset with its manifests precomputed.
type Toolset struct {
	Name         string
	ToolNames    []string
	Manifest     ToolsetManifest
	McpManifests []McpManifest
}

// ToolsetManifest is the representation of a toolset sent to client SDKs.
type ToolsetManifest struct {
	ServerVersion string              `json:"serverVersion"`
	ToolsManifest map[string]Manifest `json:"tools"`
}

// Initialize resolves the declared tool names against the initialized tools
// and builds the toolset's manifests. Every declared name must exist.
func (c ToolsetConfig) Initialize(serverVersion string, toolsMap map[string]Tool) (Toolset, error) {
	var t Toolset
	t.Name = c.Name
	t.ToolNames = c.ToolNames
	t.Manifest = ToolsetManifest{
		ServerVersion: serverVersion,
		ToolsManifest: make(map[string]Manifest, len(c.ToolNames)),
	}
	for _, name := range c.ToolNames {
		tool, ok := toolsMap[name]
		if !ok {
			return t, fmt.Errorf("tool does not exist: %s", name)
		}
		t.Manifest.ToolsManifest[name] = tool.Manifest()
		t.McpManifests = append(t.McpManifests, tool.McpManifest())
	}
	return t, nil
}
