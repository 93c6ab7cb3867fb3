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

package neo4jpaths

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/NOGIT007/Agentspace-neo4j/internal/format"
	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
	neo4jsc "github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcommon"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

const toolType string = "neo4j-paths"

// node rendering shared by the path queries: one readable token per node
const nodeProjection = "labels(n)[0] + ':' + coalesce(n.name, n.id, toString(id(n)))"

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
	rawS, ok := srcs[cfg.Source]
	if !ok {
		return nil, fmt.Errorf("no source named %q configured", cfg.Source)
	}
	s, ok := rawS.(compatibleSource)
	if !ok {
		return nil, fmt.Errorf("invalid source for %q tool: source type must be one of %q", toolType, compatibleSources)
	}

	allParameters := tools.Parameters{
		tools.NewStringParameter("start_node_id", "The starting node, e.g. \"Customer:123\", \"id:123\", or \"name:'John'\"."),
		tools.NewStringParameter("end_node_id", "The ending node, same forms as start_node_id."),
		tools.NewIntParameterWithDefault("max_hops", 3, "Maximum relationships to traverse (capped at 5)."),
		tools.NewStringParameterWithDefault("relationship_types", "", "Optional comma-separated relationship types to follow."),
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

// Invoke finds the shortest path between two nodes, plus up to five
// alternative paths when more than one hop is allowed.
func (t Tool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	startSel, err := neo4jcommon.ParseNodeSelector(params.GetString("start_node_id"))
	if err != nil {
		return selectorRejection(err), nil
	}
	endSel, err := neo4jcommon.ParseNodeSelector(params.GetString("end_node_id"))
	if err != nil {
		return selectorRejection(err), nil
	}

	maxHops := params.GetInt("max_hops")
	if maxHops > neo4jcommon.MaxPathHops {
		maxHops = neo4jcommon.MaxPathHops
	}
	relTypes := neo4jcommon.SplitRelationshipTypes(params.GetString("relationship_types"))
	relPattern, err := neo4jcommon.RelPattern(relTypes, maxHops)
	if err != nil {
		return neo4jcommon.ErrorPayload(
			fmt.Sprintf("Cannot build path query: %s.", err),
			"Relationship types must be plain identifiers, e.g. \"KNOWS,WORKS_WITH\".",
		), nil
	}

	startFrag, queryParams := startSel.Fragment("start", "start_value")
	endFrag, endParams := endSel.Fragment("end", "end_value")
	for k, v := range endParams {
		queryParams[k] = v
	}

	shortestQuery := fmt.Sprintf(
		"MATCH path = shortestPath(%s-%s-%s)\n"+
			"RETURN length(path) as path_length,\n"+
			"       [n in nodes(path) | %s] as nodes,\n"+
			"       [r in relationships(path) | type(r)] as relationships",
		startFrag, relPattern, endFrag, nodeProjection)

	keys, rows, runErr := t.run(ctx, shortestQuery, queryParams)
	if runErr != nil {
		return runErr, nil
	}
	if len(rows) == 0 {
		return format.NoResults, nil
	}

	var b strings.Builder
	b.WriteString("**Shortest Path:**\n")
	b.WriteString(format.Table(keys, rows))

	if maxHops > 1 {
		alternatesQuery := fmt.Sprintf(
			"MATCH path = %s-%s-%s\n"+
				"WITH path, length(path) as path_length\n"+
				"ORDER BY path_length\n"+
				"LIMIT 5\n"+
				"RETURN path_length,\n"+
				"       [n in nodes(path) | %s] as nodes,\n"+
				"       [r in relationships(path) | type(r)] as relationships",
			startFrag, relPattern, endFrag, nodeProjection)

		altKeys, altRows, altErr := t.run(ctx, alternatesQuery, queryParams)
		if altErr != nil {
			return altErr, nil
		}
		b.WriteString("\n\n**Alternative Paths (up to 5):**\n")
		b.WriteString(format.Table(altKeys, altRows))
	}
	return b.String(), nil
}

// run classifies and executes one generated query. A non-nil second return
// is the structured failure payload to hand back as the tool result.
func (t Tool) run(ctx context.Context, query string, queryParams map[string]any) ([]string, []map[string]any, any) {
	if c := t.classifier.Classify(query); !c.Safe {
		return nil, nil, neo4jcommon.ErrorPayload(c.Reason, c.Suggestion)
	}
	keys, rows, err := t.Source.Execute(ctx, query, queryParams)
	if err != nil {
		if logger, logErr := util.LoggerFromContext(ctx); logErr == nil {
			logger.ErrorContext(ctx, "neo4j query failed: %s", err)
		}
		return nil, nil, neo4jcommon.QueryFailurePayload(err)
	}
	return keys, rows, nil
}

func selectorRejection(err error) map[string]any {
	return neo4jcommon.ErrorPayload(
		fmt.Sprintf("Cannot parse node reference: %s.", err),
		"Use formats like \"Customer:123\", \"id:123\", or \"name:'John'\".",
	)
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
