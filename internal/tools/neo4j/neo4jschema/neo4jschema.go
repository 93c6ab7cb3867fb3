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

// Package neo4jschema holds the schema tool kinds: retrieval with caching,
// cache inspection, and cache invalidation. The tools are the only sanctioned
// path to schema information; direct schema queries are blocked by the
// query safety gate.
package neo4jschema

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	neo4jsc "github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
)

const schemaToolType string = "neo4j-schema"

func init() {
	if !tools.Register(schemaToolType, newSchemaConfig) {
		panic(fmt.Sprintf("tool type %q already registered", schemaToolType))
	}
}

func newSchemaConfig(ctx context.Context, name string, decoder *yaml.Decoder) (tools.ToolConfig, error) {
	actual := SchemaConfig{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	return actual, nil
}

type compatibleSource interface {
	SchemaStore() *neo4jsc.SchemaStore
}

// validate compatible sources are still compatible
var _ compatibleSource = &neo4jsc.Source{}

var compatibleSources = [...]string{neo4jsc.SourceType}

type SchemaConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// validate interface
var _ tools.ToolConfig = SchemaConfig{}

func (cfg SchemaConfig) ToolConfigType() string {
	return schemaToolType
}

func (cfg SchemaConfig) Initialize(srcs map[string]sources.Source) (tools.Tool, error) {
	s, err := lookupSource(srcs, cfg.Source)
	if err != nil {
		return nil, err
	}
	parameters := tools.Parameters{}
	t := SchemaTool{
		Name:        cfg.Name,
		Type:        schemaToolType,
		Store:       s.SchemaStore(),
		manifest:    tools.Manifest{Description: cfg.Description, Parameters: parameters.Manifest()},
		mcpManifest: tools.McpManifest{Name: cfg.Name, Description: cfg.Description, InputSchema: parameters.McpManifest()},
	}
	return t, nil
}

// validate interface
var _ tools.Tool = SchemaTool{}

type SchemaTool struct {
	Name  string
	Type  string
	Store *neo4jsc.SchemaStore

	manifest    tools.Manifest
	mcpManifest tools.McpManifest
}

// Invoke returns the graph schema, serving from the cache when warm. The
// "_cached" marker tells the caller whether a database round trip happened.
func (t SchemaTool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	schema, fromCache, err := t.Store.Get(ctx)
	if err != nil {
		return map[string]any{
			"error":      "Cannot connect to Neo4j database",
			"details":    err.Error(),
			"suggestion": "Please check your Neo4j connection settings and ensure the database is running.",
		}, nil
	}
	return schemaPayload(schema, fromCache), nil
}

func schemaPayload(schema *neo4jsc.SchemaInfo, cached bool) map[string]any {
	payload := map[string]any{
		"labels":          schema.Labels,
		"relationships":   schema.RelationshipTypes,
		"node_properties": schema.NodeProperties,
		"_cached":         cached,
	}
	if len(schema.OmittedLabels) > 0 {
		payload["omitted_labels"] = schema.OmittedLabels
	}
	if cached {
		payload["_instruction"] = "Schema retrieved from cache. Use it directly to build the next query."
	} else {
		payload["_instruction"] = "Schema retrieved from database. Use it to build the next query."
	}
	return payload
}

func (t SchemaTool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(tools.Parameters{}, data)
}

func (t SchemaTool) Manifest() tools.Manifest {
	return t.manifest
}

func (t SchemaTool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}

func lookupSource(srcs map[string]sources.Source, name string) (compatibleSource, error) {
	rawS, ok := srcs[name]
	if !ok {
		return nil, fmt.Errorf("no source named %q configured", name)
	}
	s, ok := rawS.(compatibleSource)
	if !ok {
		return nil, fmt.Errorf("invalid source for schema tool: source type must be one of %q", compatibleSources)
	}
	return s, nil
}
