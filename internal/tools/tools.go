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

import (
	"context"
	"fmt"

	yaml "github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
)

// ToolConfigFactory defines the signature for a function that creates and
// decodes a specific tool's configuration. It takes the context, the tool's
// name, and a YAML decoder to parse the config.
type ToolConfigFactory func(ctx context.Context, name string, decoder *yaml.Decoder) (ToolConfig, error)

var toolRegistry = make(map[string]ToolConfigFactory)

// Register allows individual tool packages to register their configuration
// factory function. This is typically called from an init() function in the
// tool's package. It associates a 'type' string with a function that can
// produce the specific ToolConfig type. It returns true if the registration
// was successful, and false if a tool with the same type was already
// registered.
func Register(toolType string, factory ToolConfigFactory) bool {
	if _, exists := toolRegistry[toolType]; exists {
		return false
	}
	toolRegistry[toolType] = factory
	return true
}

// DecodeConfig looks up the registered factory for the given type and uses it
// to decode the tool configuration.
func DecodeConfig(ctx context.Context, toolType, name string, decoder *yaml.Decoder) (ToolConfig, error) {
	factory, found := toolRegistry[toolType]
	if !found {
		return nil, fmt.Errorf("unknown tool type: %q", toolType)
	}
	toolConfig, err := factory(ctx, name, decoder)
	if err != nil {
		return nil, fmt.Errorf("unable to parse tool %q as type %q: %w", name, toolType, err)
	}
	return toolConfig, nil
}

type ToolConfig interface {
	ToolConfigType() string
	Initialize(map[string]sources.Source) (Tool, error)
}

// Tool is a single invocable operation bound to a source. Invoke returns the
// tool's result payload: a formatted string, a row list, or a structured
// rejection. Policy rejections are results, not errors; an error return means
// the invocation itself failed.
type Tool interface {
	Invoke(context.Context, ParamValues) (any, error)
	ParseParams(map[string]any) (ParamValues, error)
	Manifest() Manifest
	McpManifest() McpManifest
}

// Manifest is the representation of tools sent to client SDKs.
type Manifest struct {
	Description string              `json:"description"`
	Parameters  []ParameterManifest `json:"parameters"`
}

// McpManifest is the definition for a tool an MCP-style client can call.
type McpManifest struct {
	// The name of the tool.
	Name string `json:"name"`
	// A human-readable description of the tool.
	Description string `json:"description,omitempty"`
	// A JSON Schema object defining the expected parameters for the tool.
	InputSchema McpToolsSchema `json:"inputSchema,omitempty"`
}
