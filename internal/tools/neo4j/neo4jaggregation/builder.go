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

package neo4jaggregation

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcommon"
)

const builderToolType string = "neo4j-aggregation-builder"

func init() {
	if !tools.Register(builderToolType, newBuilderConfig) {
		panic(fmt.Sprintf("tool type %q already registered", builderToolType))
	}
}

func newBuilderConfig(ctx context.Context, name string, decoder *yaml.Decoder) (tools.ToolConfig, error) {
	actual := BuilderConfig{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	return actual, nil
}

type BuilderConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// validate interface
var _ tools.ToolConfig = BuilderConfig{}

func (cfg BuilderConfig) ToolConfigType() string {
	return builderToolType
}

func (cfg BuilderConfig) Initialize(srcs map[string]sources.Source) (tools.Tool, error) {
	s, err := lookupSource(srcs, cfg.Source)
	if err != nil {
		return nil, err
	}

	allParameters := tools.Parameters{
		tools.NewStringParameter("label", "The node label to aggregate over, e.g. Customer."),
		tools.NewStringParameter("group_by", "The property to group by, e.g. city."),
		tools.NewStringParameterWithDefault("metric", "*", "The property to aggregate, or * to count nodes."),
		tools.NewStringParameterWithDefault("function", "count", "Aggregation function: count, sum, avg, max, or min."),
		tools.NewBooleanParameterWithDefault("descending", true, "Order groups by aggregate value descending."),
		tools.NewIntParameterWithDefault("limit", 10, "Maximum number of groups to return."),
	}

	t := BuilderTool{
		Name:        cfg.Name,
		Type:        builderToolType,
		Source:      s,
		classifier:  classifier.NewQueryClassifier(),
		allParams:   allParameters,
		manifest:    tools.Manifest{Description: cfg.Description, Parameters: allParameters.Manifest()},
		mcpManifest: tools.McpManifest{Name: cfg.Name, Description: cfg.Description, InputSchema: allParameters.McpManifest()},
	}
	return t, nil
}

// validate interface
var _ tools.Tool = BuilderTool{}

type BuilderTool struct {
	Name   string
	Type   string
	Source compatibleSource

	classifier  *classifier.QueryClassifier
	allParams   tools.Parameters
	manifest    tools.Manifest
	mcpManifest tools.McpManifest
}

// Invoke builds a grouped aggregation from the structured parameters, then
// runs it through the same gate and formatting as hand-written queries.
func (t BuilderTool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	query, err := neo4jcommon.AggregationQuery(
		params.GetString("label"),
		params.GetString("group_by"),
		params.GetString("metric"),
		params.GetString("function"),
		params.GetBool("descending"),
		params.GetInt("limit"),
	)
	if err != nil {
		return neo4jcommon.ErrorPayload(
			fmt.Sprintf("Cannot build aggregation query: %s.", err),
			"Label, group_by, and metric must be plain identifiers; function must be count, sum, avg, max, or min.",
		), nil
	}
	return runFormatted(ctx, t.Source, t.classifier, query, nil)
}

func (t BuilderTool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(t.allParams, data)
}

func (t BuilderTool) Manifest() tools.Manifest {
	return t.manifest
}

func (t BuilderTool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}
