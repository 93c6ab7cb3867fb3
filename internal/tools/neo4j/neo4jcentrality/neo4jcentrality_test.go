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
	"strings"
	"testing"

	"github.com/NOGIT007/Agentspace-neo4j/internal/testutils"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
)

type fakeSource struct {
	lastQuery string
	rows      []map[string]any
}

func (f *fakeSource) Execute(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error) {
	f.lastQuery = cypher
	if len(f.rows) == 0 {
		return nil, nil, nil
	}
	return []string{"node_type", "node_identifier", "centrality_score"}, f.rows, nil
}

func newTestTool(src *fakeSource) Tool {
	return Tool{
		Name:       "centrality",
		Type:       toolType,
		Source:     src,
		classifier: classifier.NewQueryClassifier(),
		allParams: tools.Parameters{
			tools.NewStringParameterWithDefault("node_label", "", "label"),
			tools.NewStringParameterWithDefault("centrality_type", "degree", "type"),
			tools.NewIntParameterWithDefault("limit", 10, "limit"),
		},
	}
}

func invoke(t *testing.T, tool Tool, data map[string]any) any {
	t.Helper()
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	parsed, err := tool.ParseParams(data)
	if err != nil {
		t.Fatalf("unable to parse params: %s", err)
	}
	result, err := tool.Invoke(ctx, parsed)
	if err != nil {
		t.Fatalf("unexpected invoke error: %s", err)
	}
	return result
}

func TestCentralityDegree(t *testing.T) {
	src := &fakeSource{rows: []map[string]any{
		{"node_type": "Customer", "node_identifier": "Acme", "centrality_score": int64(12)},
		{"node_type": "Customer", "node_identifier": "Illum", "centrality_score": int64(7)},
	}}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"node_label": "Customer"})

	out := result.(string)
	if !strings.HasPrefix(out, "**Degree Centrality Analysis**") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "*Higher scores indicate more central/important nodes in the network*") {
		t.Errorf("missing footer: %q", out)
	}
	if !strings.Contains(src.lastQuery, "MATCH (n:Customer)") {
		t.Errorf("label not applied: %q", src.lastQuery)
	}
	if !strings.Contains(src.lastQuery, "size((n)--())") {
		t.Errorf("incorrect degree expression: %q", src.lastQuery)
	}
}

func TestCentralityModes(t *testing.T) {
	tcs := []struct {
		mode string
		want string
	}{
		{mode: "in_degree", want: "size((n)<--())"},
		{mode: "out_degree", want: "size((n)-->())"},
		{mode: "betweenness", want: "n IN nodes(path)[1..-1]"},
		{mode: "pagerank", want: "pagerank_estimate"},
	}
	for _, tc := range tcs {
		t.Run(tc.mode, func(t *testing.T) {
			src := &fakeSource{rows: []map[string]any{{"node_type": "X", "node_identifier": "a", "centrality_score": int64(1)}}}
			tool := newTestTool(src)

			invoke(t, tool, map[string]any{"centrality_type": tc.mode})

			if !strings.Contains(src.lastQuery, tc.want) {
				t.Errorf("query for %s missing %q: %q", tc.mode, tc.want, src.lastQuery)
			}
			if !strings.Contains(src.lastQuery, "MATCH (n)\n") {
				t.Errorf("unlabeled pattern expected: %q", src.lastQuery)
			}
		})
	}
}

func TestCentralityUnknownType(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"centrality_type": "eigenvector"})

	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected rejection payload, got %T", result)
	}
	if payload["error"] != "Unknown centrality type: eigenvector" {
		t.Errorf("incorrect error: %v", payload["error"])
	}
	if payload["suggestion"] != "Use one of: degree, in_degree, out_degree, betweenness, pagerank" {
		t.Errorf("incorrect suggestion: %v", payload["suggestion"])
	}
	if src.lastQuery != "" {
		t.Errorf("unknown type must never reach the source")
	}
}

func TestCentralityInvalidLabel(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"node_label": "Customer) MATCH (m"})

	if _, ok := result.(map[string]any); !ok {
		t.Fatalf("expected rejection payload, got %T", result)
	}
	if src.lastQuery != "" {
		t.Errorf("invalid label must never reach the source")
	}
}

func TestCentralityEmptyResult(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	if result := invoke(t, tool, nil); result != "No results found." {
		t.Errorf("incorrect empty result: %v", result)
	}
}
