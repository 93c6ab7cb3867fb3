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

package neo4jcentrality

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

const toolType string = "neo4j-centrality"

const nodeIdentifier = "coalesce(n.name, n.id, toString(id(n)))"

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
		tools.NewStringParameterWithDefault("node_label", "", "Optional node label to filter, e.g. Customer."),
		tools.NewStringParameterWithDefault("centrality_type", "degree", "One of: degree, in_degree, out_degree, betweenness, pagerank."),
		tools.NewIntParameterWithDefault("limit", 10, "Number of top nodes to return."),
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

// Invoke ranks nodes by the chosen centrality measure. Betweenness and
// pagerank are approximations computed in plain Cypher rather than calls to
// a graph algorithms plugin.
func (t Tool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	label := strings.TrimSpace(params.GetString("node_label"))
	centralityType := params.GetString("centrality_type")
	limit := params.GetInt("limit")

	nodePattern := "(n)"
	if label != "" {
		if !neo4jcommon.IsValidIdentifier(label) {
			return neo4jcommon.ErrorPayload(
				fmt.Sprintf("Invalid node label: %q.", label),
				"Node labels must be plain identifiers, e.g. Customer.",
			), nil
		}
		nodePattern = fmt.Sprintf("(n:%s)", label)
	}

	query, ok := buildQuery(nodePattern, centralityType, limit)
	if !ok {
		return neo4jcommon.ErrorPayload(
			fmt.Sprintf("Unknown centrality type: %s", centralityType),
			"Use one of: degree, in_degree, out_degree, betweenness, pagerank",
		), nil
	}

	if c := t.classifier.Classify(query); !c.Safe {
		return neo4jcommon.ErrorPayload(c.Reason, c.Suggestion), nil
	}
	keys, rows, err := t.Source.Execute(ctx, query, nil)
	if err != nil {
		if logger, logErr := util.LoggerFromContext(ctx); logErr == nil {
			logger.ErrorContext(ctx, "neo4j query failed: %s", err)
		}
		return neo4jcommon.QueryFailurePayload(err), nil
	}
	if len(rows) == 0 {
		return format.NoResults, nil
	}

	return fmt.Sprintf("**%s Centrality Analysis**\n\n%s\n\n*Higher scores indicate more central/important nodes in the network*",
		titleCase(centralityType), format.Table(keys, rows)), nil
}

func buildQuery(nodePattern, centralityType string, limit int) (string, bool) {
	returns := fmt.Sprintf("RETURN labels(n)[0] as node_type,\n"+
		"       %s as node_identifier,\n", nodeIdentifier)

	switch centralityType {
	case "degree":
		return fmt.Sprintf("MATCH %s\n"+
			"WITH n, size((n)--()) as degree\n"+
			"ORDER BY degree DESC\n"+
			"LIMIT %d\n"+
			returns+
			"       degree as centrality_score", nodePattern, limit), true
	case "in_degree":
		return fmt.Sprintf("MATCH %s\n"+
			"WITH n, size((n)<--()) as in_degree\n"+
			"ORDER BY in_degree DESC\n"+
			"LIMIT %d\n"+
			returns+
			"       in_degree as centrality_score", nodePattern, limit), true
	case "out_degree":
		return fmt.Sprintf("MATCH %s\n"+
			"WITH n, size((n)-->()) as out_degree\n"+
			"ORDER BY out_degree DESC\n"+
			"LIMIT %d\n"+
			returns+
			"       out_degree as centrality_score", nodePattern, limit), true
	case "betweenness":
		// sampled approximation: count bounded paths passing through n
		return fmt.Sprintf("MATCH %s\n"+
			"WITH n\n"+
			"MATCH path = (a)-[*1..3]-(b)\n"+
			"WHERE a <> b AND n IN nodes(path)[1..-1]\n"+
			"WITH n, count(DISTINCT path) as path_count\n"+
			"ORDER BY path_count DESC\n"+
			"LIMIT %d\n"+
			returns+
			"       path_count as centrality_score", nodePattern, limit), true
	case "pagerank":
		// ratio approximation: incoming count damped by neighbor fan-out
		return fmt.Sprintf("MATCH %s\n"+
			"WITH n\n"+
			"MATCH (n)<-[r]-(m)\n"+
			"WITH n, count(DISTINCT m) as incoming_count,\n"+
			"     sum(size((m)-->())) as neighbor_connections\n"+
			"WITH n, incoming_count * 1.0 / (1 + neighbor_connections) as pagerank_estimate\n"+
			"ORDER BY pagerank_estimate DESC\n"+
			"LIMIT %d\n"+
			returns+
			"       round(pagerank_estimate, 4) as centrality_score", nodePattern, limit), true
	}
	return "", false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
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
