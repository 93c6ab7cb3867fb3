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

package neo4jsimilarity

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

const toolType string = "neo4j-similarity"

// similarityContext names what each score is measuring in the rendered
// result header.
var similarityContext = map[string]string{
	"properties":   "Nodes with similar property values",
	"connections":  "Nodes connected to similar entities",
	"neighborhood": "Nodes in similar network neighborhoods",
}

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
		tools.NewStringParameter("reference_node_id", "Reference node, e.g. Customer:123, id:42 or name:'Acme'."),
		tools.NewStringParameterWithDefault("node_label", "", "Optional label to restrict the search, e.g. Customer."),
		tools.NewStringParameterWithDefault("similarity_type", "properties", "One of: properties, connections, neighborhood."),
		tools.NewIntParameterWithDefault("limit", 10, "Number of similar nodes to return."),
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

// Invoke scores nodes against a reference node. Properties mode compares
// shared property values, connections mode computes Jaccard overlap of
// adjacent nodes, and neighborhood mode compares the 2-hop surroundings.
func (t Tool) Invoke(ctx context.Context, params tools.ParamValues) (any, error) {
	similarityType := params.GetString("similarity_type")
	limit := params.GetInt("limit")

	selector, err := neo4jcommon.ParseNodeSelector(params.GetString("reference_node_id"))
	if err != nil {
		return neo4jcommon.ErrorPayload(
			fmt.Sprintf("Invalid reference node: %s.", err),
			"Use the form Label:value, id:value or property:'value'.",
		), nil
	}
	refFragment, queryParams := selector.Fragment("ref", "ref_value")

	searchLabel := strings.TrimSpace(params.GetString("node_label"))
	if searchLabel == "" {
		searchLabel = selector.Label
	}
	searchPattern := "(n)"
	if searchLabel != "" {
		if !neo4jcommon.IsValidIdentifier(searchLabel) {
			return neo4jcommon.ErrorPayload(
				fmt.Sprintf("Invalid node label: %q.", searchLabel),
				"Node labels must be plain identifiers, e.g. Customer.",
			), nil
		}
		searchPattern = fmt.Sprintf("(n:%s)", searchLabel)
	}

	query, ok := buildQuery(similarityType, refFragment, searchPattern, limit)
	if !ok {
		return neo4jcommon.ErrorPayload(
			fmt.Sprintf("Unknown similarity type: %s", similarityType),
			"Use one of: properties, connections, neighborhood",
		), nil
	}

	if c := t.classifier.Classify(query); !c.Safe {
		return neo4jcommon.ErrorPayload(c.Reason, c.Suggestion), nil
	}
	keys, rows, err := t.Source.Execute(ctx, query, queryParams)
	if err != nil {
		if logger, logErr := util.LoggerFromContext(ctx); logErr == nil {
			logger.ErrorContext(ctx, "neo4j query failed: %s", err)
		}
		return neo4jcommon.QueryFailurePayload(err), nil
	}
	if len(rows) == 0 {
		return format.NoResults, nil
	}
	return fmt.Sprintf("**Similarity Analysis: %s**\n\nQuery Results:\n%s\n\n*Higher scores indicate greater similarity (0-1 scale)*",
		similarityContext[similarityType], format.Table(keys, rows)), nil
}

func buildQuery(similarityType, refFragment, searchPattern string, limit int) (string, bool) {
	switch similarityType {
	case "properties":
		return fmt.Sprintf(
			"MATCH %s\n"+
				"WITH ref, [k in keys(ref) | {key: k, value: ref[k]}] as ref_props\n"+
				"MATCH %s\n"+
				"WHERE id(ref) <> id(n)\n"+
				"WITH ref, n, ref_props,\n"+
				"     [k in keys(n) WHERE k in keys(ref) | {key: k, value: n[k]}] as n_props\n"+
				"WITH n,\n"+
				"     size([p in ref_props WHERE p in n_props]) as matching_props,\n"+
				"     size(ref_props) as total_props\n"+
				"WHERE matching_props > 0\n"+
				"WITH n, matching_props, matching_props * 1.0 / total_props as similarity\n"+
				"ORDER BY similarity DESC\n"+
				"LIMIT %d\n"+
				"RETURN labels(n)[0] as node_type,\n"+
				"       coalesce(n.name, n.id, toString(id(n))) as node_identifier,\n"+
				"       round(similarity, 3) as similarity_score,\n"+
				"       matching_props as matching_properties",
			refFragment, searchPattern, limit), true
	case "connections":
		return fmt.Sprintf(
			"MATCH %s\n"+
				"MATCH (ref)-[]-(ref_connected)\n"+
				"WITH ref, collect(DISTINCT id(ref_connected)) as ref_connections\n"+
				"MATCH %s\n"+
				"WHERE id(ref) <> id(n)\n"+
				"MATCH (n)-[]-(n_connected)\n"+
				"WITH n, ref_connections, collect(DISTINCT id(n_connected)) as n_connections\n"+
				"WITH n,\n"+
				"     size([x in ref_connections WHERE x in n_connections]) as intersection,\n"+
				"     size(ref_connections + n_connections) as union_size\n"+
				"WHERE intersection > 0\n"+
				"WITH n, intersection, intersection * 1.0 / union_size as similarity\n"+
				"ORDER BY similarity DESC\n"+
				"LIMIT %d\n"+
				"RETURN labels(n)[0] as node_type,\n"+
				"       coalesce(n.name, n.id, toString(id(n))) as node_identifier,\n"+
				"       round(similarity, 3) as similarity_score,\n"+
				"       intersection as shared_connections",
			refFragment, searchPattern, limit), true
	case "neighborhood":
		return fmt.Sprintf(
			"MATCH %s\n"+
				"MATCH (ref)-[*1..2]-(neighbor)\n"+
				"WITH ref, collect(DISTINCT id(neighbor)) as ref_neighborhood\n"+
				"MATCH %s\n"+
				"WHERE id(ref) <> id(n)\n"+
				"MATCH (n)-[*1..2]-(n_neighbor)\n"+
				"WITH n, ref_neighborhood, collect(DISTINCT id(n_neighbor)) as n_neighborhood\n"+
				"WITH n,\n"+
				"     size([x in ref_neighborhood WHERE x in n_neighborhood]) as common_neighbors,\n"+
				"     size(ref_neighborhood) + size(n_neighborhood) as total_neighbors\n"+
				"WHERE common_neighbors > 0\n"+
				"WITH n, common_neighbors, 2.0 * common_neighbors / total_neighbors as similarity\n"+
				"ORDER BY similarity DESC\n"+
				"LIMIT %d\n"+
				"RETURN labels(n)[0] as node_type,\n"+
				"       coalesce(n.name, n.id, toString(id(n))) as node_identifier,\n"+
				"       round(similarity, 3) as similarity_score,\n"+
				"       common_neighbors",
			refFragment, searchPattern, limit), true
	}
	return "", false
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
