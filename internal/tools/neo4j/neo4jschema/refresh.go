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

package neo4jschema

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	neo4jsc "github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
)

const refreshToolType string = "neo4j-refresh-schema"

func init() {
	if !tools.Register(refreshToolType, newRefreshConfig) {
		panic(fmt.Sprintf("tool type %q already registered", refreshToolType))
	}
}

func newRefreshConfig(ctx context.Context, name string, decoder *yaml.Decoder) (tools.ToolConfig, error) {
	actual := RefreshConfig{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	return actual, nil
}

type RefreshConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// validate interface
var _ tools.ToolConfig = RefreshConfig{}

func (cfg RefreshConfig) ToolConfigType() string {
	return refreshToolType
}

func (cfg RefreshConfig) Initialize(srcs map[string]sources.Source) (tools.Tool, error) {
	s, err := lookupSource(srcs, cfg.Source)
	if err != nil {
		return nil, err
	}
	parameters := tools.Parameters{}
	t := RefreshTool{
		Name:        cfg.Name,
		Type:        refreshToolType,
		Store:       s.SchemaStore(),
		manifest:    tools.Manifest{Description: cfg.Description, Parameters: parameters.Manifest()},
		mcpManifest: tools.McpManifest{Name: cfg.Name, Description: cfg.Description, InputSchema: parameters.McpManifest()},
	}
	return t, nil
}

// validate interface
var _ tools.Tool = RefreshTool{}

type RefreshTool struct {
	Name  string
	Type  string
	Store *neo4jsc.SchemaStore

	manifest    tools.Manifest
	mcpManifest tools.McpManifest
}

// Invoke drops the cached schema so the next retrieval hits the database.
func (t RefreshTool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	if _, ok := t.Store.Cached(); !ok {
		return map[string]any{"status": "info", "message": "No cached schema found."}, nil
	}
	t.Store.Refresh()
	return map[string]any{
		"status":  "success",
		"message": "Schema cache has been cleared. Next schema request will fetch fresh data from Neo4j.",
	}, nil
}

func (t RefreshTool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(tools.Parameters{}, data)
}

func (t RefreshTool) Manifest() tools.Manifest {
	return t.manifest
}

func (t RefreshTool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}
