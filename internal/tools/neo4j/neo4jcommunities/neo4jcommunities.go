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

package neo4jcommunities

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

const toolType string = "neo4j-communities"

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
		tools.NewStringParameterWithDefault("node_label", "", "Optional node label to analyze, e.g. Customer."),
		tools.NewIntParameterWithDefault("min_community_size", 3, "Minimum size for a community to be reported."),
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

// Invoke looks for tightly connected groups using a triangle heuristic,
// falling back to dense neighborhoods around high-degree nodes when no
// triangles exist.
func (t Tool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	label := strings.TrimSpace(params.GetString("node_label"))
	minSize := params.GetInt("min_community_size")

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

	keys, rows, failure := t.run(ctx, triangleQuery(nodePattern, minSize), nil)
	if failure != nil {
		return failure, nil
	}
	if len(rows) > 0 {
		return fmt.Sprintf("**Community Detection Results**\n*Communities identified by triangle patterns*\n\n%s\n\n*Larger communities with diverse node types may indicate important graph structures*",
			format.Table(keys, rows)), nil
	}

	keys, rows, failure = t.run(ctx, densityQuery(nodePattern, minSize), nil)
	if failure != nil {
		return failure, nil
	}
	if len(rows) == 0 {
		return format.NoResults, nil
	}
	return fmt.Sprintf("**Community Detection Results**\n*Communities identified by highly connected central nodes*\n\n%s\n\n*Density indicates how connected members are within the community (0-1)*",
		format.Table(keys, rows)), nil
}

func triangleQuery(nodePattern string, minSize int) string {
	return fmt.Sprintf(
		"MATCH %s-[r1]-(m)-[r2]-(o)-[r3]-(n)\n"+
			"WHERE id(n) < id(m) AND id(m) < id(o)\n"+
			"WITH n, m, o, count(*) as triangle_count\n"+
			"WITH collect(DISTINCT n) + collect(DISTINCT m) + collect(DISTINCT o) as community_nodes\n"+
			"UNWIND community_nodes as node\n"+
			"WITH DISTINCT node\n"+
			"MATCH (node)-[*1..2]-(connected)\n"+
			"WITH node, collect(DISTINCT connected) as extended_community\n"+
			"WITH collect({anchor: node, members: extended_community}) as communities\n"+
			"UNWIND communities as community\n"+
			"WITH community.anchor as anchor,\n"+
			"     [n in community.members | n] as members\n"+
			"WHERE size(members) >= %d\n"+
			"WITH anchor, members, size(members) as community_size\n"+
			"ORDER BY community_size DESC\n"+
			"LIMIT 10\n"+
			"UNWIND members as member\n"+
			"WITH anchor, community_size,\n"+
			"     collect(DISTINCT labels(member)[0]) as node_types,\n"+
			"     count(DISTINCT member) as actual_size,\n"+
			"     collect(DISTINCT coalesce(member.name, member.id, toString(id(member))))[..5] as sample_members\n"+
			"RETURN labels(anchor)[0] + ':' + coalesce(anchor.name, anchor.id, toString(id(anchor))) as community_anchor,\n"+
			"       actual_size as community_size,\n"+
			"       node_types,\n"+
			"       sample_members + CASE WHEN actual_size > 5 THEN ['...'] ELSE [] END as members_sample",
		nodePattern, minSize)
}

func densityQuery(nodePattern string, minSize int) string {
	return fmt.Sprintf(
		"MATCH %s\n"+
			"WITH n, size((n)--()) as degree\n"+
			"WHERE degree >= 3\n"+
			"ORDER BY degree DESC\n"+
			"LIMIT 20\n"+
			"MATCH (n)-[]-(neighbor)\n"+
			"WITH n, collect(DISTINCT neighbor) as neighbors, degree\n"+
			"WHERE size(neighbors) >= %d\n"+
			"UNWIND neighbors as n1\n"+
			"UNWIND neighbors as n2\n"+
			"WITH n, neighbors, degree, n1, n2\n"+
			"WHERE id(n1) < id(n2)\n"+
			"MATCH (n1)-[]-(n2)\n"+
			"WITH n, neighbors, degree, count(*) as internal_connections\n"+
			"WITH n, neighbors, degree, internal_connections,\n"+
			"     2.0 * internal_connections / (size(neighbors) * (size(neighbors) - 1)) as density\n"+
			"WHERE density > 0.3\n"+
			"RETURN labels(n)[0] + ':' + coalesce(n.name, n.id, toString(id(n))) as community_center,\n"+
			"       size(neighbors) as community_size,\n"+
			"       round(density, 2) as connectivity_density,\n"+
			"       [neighbor in neighbors | coalesce(neighbor.name, neighbor.id, toString(id(neighbor)))][..5] as members_sample\n"+
			"ORDER BY community_size DESC\n"+
			"LIMIT 10",
		nodePattern, minSize)
}

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

func (t Tool) ParseParams(data map[string]any) (tools.ParamValues, error) {
	return tools.ParseParams(t.allParams, data)
}

func (t Tool) Manifest() tools.Manifest {
	return t.manifest
}

func (t Tool) McpManifest() tools.McpManifest {
	return t.mcpManifest
}
