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

// Package neo4jaggregation holds the aggregation tool kinds: running a
// caller-written aggregation query with table formatting, and building one
// from structured group-by parameters.
package neo4jaggregation

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/format"
	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	neo4jsc "github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcommon"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

const toolType string = "neo4j-aggregation"

func init() {
	if !tools.Register(toolType, newConfig) {
		panic(fmt.Sprintf("tool type %q already registered", toolType))
	}
}

func newConfig(ctx context.Context, name string, decoder *yaml.Decoder) (tools.ToolConfig, error) {
	actual := Config{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	return actual, nil
}

type compatibleSource interface {
	Execute(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error)
}

// validate compatible sources are still compatible
var _ compatibleSource = &neo4jsc.Source{}

var compatibleSources = [...]string{neo4jsc.SourceType}

type Config struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// validate interface
var _ tools.ToolConfig = Config{}

func (cfg Config) ToolConfigType() string {
	return toolType
}

func (cfg Config) Initialize(srcs map[string]sources.Source) (tools.Tool, error) {
	s, err := lookupSource(srcs, cfg.Source)
	if err != nil {
		return nil, err
	}

	allParameters := tools.Parameters{
		tools.NewStringParameter("query", "The aggregation Cypher query to execute (read-only)."),
	}

	t := Tool{
		Name:        cfg.Name,
		Type:        toolType,
		Source:      s,
		classifier:  classifier.NewQueryClassifier(),
		allParams:   allParameters,
		manifest:    tools.Manifest{Description: cfg.Description, Parameters: allParameters.Manifest()},
		mcpManifest: tools.McpManifest{Name: cfg.Name, Description: cfg.Description, InputSchema: allParameters.McpManifest()},
	}
	return t, nil
}

// validate interface
var _ tools.Tool = Tool{}

type Tool struct {
	Name   string
	Type   string
	Source compatibleSource

	classifier  *classifier.QueryClassifier
	allParams   tools.Parameters
	manifest    tools.Manifest
	mcpManifest tools.McpManifest
}

// Invoke runs the aggregation query and renders the rows as a markdown table
// with totals for numeric columns.
func (t Tool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	query := params.GetString("query")
	return runFormatted(ctx, t.Source, t.classifier, query, nil)
}

// runFormatted is the shared classify, execute, and table-format pipeline.
func runFormatted(ctx context.Context, src compatibleSource, qc *classifier.QueryClassifier, query string, queryParams map[string]any) (any, error) {
	if c := qc.Classify(query); !c.Safe {
		return neo4jcommon.ErrorPayload(c.Reason, c.Suggestion), nil
	}
	keys, rows, err := src.Execute(ctx, query, queryParams)
	if err != nil {
		if logger, logErr := util.LoggerFromContext(ctx); logErr == nil {
			logger.ErrorContext(ctx, "neo4j query failed: %s", err)
		}
		return neo4jcommon.QueryFailurePayload(err), nil
	}
	if len(rows) == 0 {
		return format.NoResults, nil
	}
	return "Query Results:\n" + format.Table(keys, rows), nil
}

func (t Tool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(t.allParams, data)
}

func (t Tool) Manifest() tools.Manifest {
	return t.manifest
}

func (t Tool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}

func lookupSource(srcs map[string]sources.Source, name string) (compatibleSource, error) {
	rawS, ok := srcs[name]
	if !ok {
		return nil, fmt.Errorf("no source named %q configured", name)
	}
	s, ok := rawS.(compatibleSource)
	if !ok {
		return nil, fmt.Errorf("invalid source for aggregation tool: source type must be one of %q", compatibleSources)
	}
	return s, nil
}
