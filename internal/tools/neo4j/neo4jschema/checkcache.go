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

const checkCacheToolType string = "neo4j-check-schema-cache"

func init() {
	if !tools.Register(checkCacheToolType, newCheckCacheConfig) {
		panic(fmt.Sprintf("tool type %q already registered", checkCacheToolType))
	}
}

func newCheckCacheConfig(ctx context.Context, name string, decoder *yaml.Decoder) (tools.ToolConfig, error) {
	actual := CheckCacheConfig{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	return actual, nil
}

type CheckCacheConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// validate interface
var _ tools.ToolConfig = CheckCacheConfig{}

func (cfg CheckCacheConfig) ToolConfigType() string {
	return checkCacheToolType
}

func (cfg CheckCacheConfig) Initialize(srcs map[string]sources.Source) (tools.Tool, error) {
	s, err := lookupSource(srcs, cfg.Source)
	if err != nil {
		return nil, err
	}
	parameters := tools.Parameters{}
	t := CheckCacheTool{
		Name:        cfg.Name,
		Type:        checkCacheToolType,
		Store:       s.SchemaStore(),
		manifest:    tools.Manifest{Description: cfg.Description, Parameters: parameters.Manifest()},
		mcpManifest: tools.McpManifest{Name: cfg.Name, Description: cfg.Description, InputSchema: parameters.McpManifest()},
	}
	return t, nil
}

// validate interface
var _ tools.Tool = CheckCacheTool{}

type CheckCacheTool struct {
	Name  string
	Type  string
	Store *neo4jsc.SchemaStore

	manifest    tools.Manifest
	mcpManifest tools.McpManifest
}

// Invoke reports cache status without side effects; a cold cache is never
// filled here.
func (t CheckCacheTool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	if schema, ok := t.Store.Cached(); ok {
		return map[string]any{
			"cached":  true,
			"schema":  schemaPayload(schema, true),
			"message": "Schema is cached. Use the provided schema directly without a fresh retrieval.",
		}, nil
	}
	return map[string]any{
		"cached":  false,
		"message": "No schema cached. Retrieve the schema first.",
	}, nil
}

func (t CheckCacheTool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(tools.Parameters{}, data)
}

func (t CheckCacheTool) Manifest() tools.Manifest {
	return t.manifest
}

func (t CheckCacheTool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}
