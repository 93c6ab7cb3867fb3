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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NOGIT007/Agentspace-neo4j/internal/testutils"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
)

type fakeSource struct {
	queries []string
	params  []map[string]any
	rows    []map[string]any
}

func (f *fakeSource) Execute(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error) {
	f.queries = append(f.queries, cypher)
	f.params = append(f.params, params)
	if len(f.rows) == 0 {
		return nil, nil, nil
	}
	return []string{"path_length", "nodes", "relationships"}, f.rows, nil
}

func newTestTool(src *fakeSource) Tool {
	return Tool{
		Name:       "paths",
		Type:       toolType,
		Source:     src,
		classifier: classifier.NewQueryClassifier(),
		allParams: tools.Parameters{
			tools.NewStringParameter("start_node_id", "start"),
			tools.NewStringParameter("end_node_id", "end"),
			tools.NewIntParameterWithDefault("max_hops", 3, "hops"),
			tools.NewStringParameterWithDefault("relationship_types", "", "types"),
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

func TestPathsShortestAndAlternates(t *testing.T) {
	src := &fakeSource{
		rows: []map[string]any{{
			"path_length":   int64(2),
			"nodes":         []any{"Customer:1", "Order:7", "Product:3"},
			"relationships": []any{"PLACED", "CONTAINS"},
		}},
	}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{
		"start_node_id":      "Customer:1",
		"end_node_id":        "Product:3",
		"relationship_types": "PLACED,CONTAINS",
	})

	out := result.(string)
	if !strings.Contains(out, "**Shortest Path:**") {
		t.Errorf("missing shortest path section: %q", out)
	}
	if !strings.Contains(out, "**Alternative Paths (up to 5):**") {
		t.Errorf("missing alternates section: %q", out)
	}

	if len(src.queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(src.queries))
	}
	if !strings.Contains(src.queries[0], "shortestPath((start:Customer {id: $start_value})-[:PLACED|CONTAINS*1..3]-(end:Product {id: $end_value}))") {
		t.Errorf("incorrect shortest query: %q", src.queries[0])
	}
	want := map[string]any{"start_value": "1", "end_value": "3"}
	if diff := cmp.Diff(want, src.params[0]); diff != "" {
		t.Errorf("values must be parameterized: diff %v", diff)
	}
	if strings.Contains(src.queries[1], "shortestPath") {
		t.Errorf("alternates query must not use shortestPath: %q", src.queries[1])
	}
	if !strings.Contains(src.queries[1], "LIMIT 5") {
		t.Errorf("alternates query must cap at 5: %q", src.queries[1])
	}
}

func TestPathsHopCap(t *testing.T) {
	src := &fakeSource{rows: []map[string]any{{"path_length": int64(1), "nodes": []any{"a", "b"}, "relationships": []any{"KNOWS"}}}}
	tool := newTestTool(src)

	invoke(t, tool, map[string]any{
		"start_node_id": "id:1",
		"end_node_id":   "id:2",
		"max_hops":      12,
	})

	if !strings.Contains(src.queries[0], "*1..5]") {
		t.Errorf("hops must cap at 5: %q", src.queries[0])
	}
}

func TestPathsSingleHopSkipsAlternates(t *testing.T) {
	src := &fakeSource{rows: []map[string]any{{"path_length": int64(1), "nodes": []any{"a", "b"}, "relationships": []any{"KNOWS"}}}}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{
		"start_node_id": "id:1",
		"end_node_id":   "id:2",
		"max_hops":      1,
	})

	if len(src.queries) != 1 {
		t.Errorf("single hop must not run alternates, got %d queries", len(src.queries))
	}
	if strings.Contains(result.(string), "Alternative Paths") {
		t.Errorf("single hop result must not include alternates")
	}
}

func TestPathsNoPathFound(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{
		"start_node_id": "id:1",
		"end_node_id":   "id:2",
	})

	if result != "No results found." {
		t.Errorf("incorrect empty result: %v", result)
	}
	if len(src.queries) != 1 {
		t.Errorf("no alternates should run when no shortest path exists")
	}
}

func TestPathsRejectsInjection(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{
		"start_node_id": "Customer {x:1}) MATCH (m",
		"end_node_id":   "id:2",
	})

	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected rejection payload, got %T", result)
	}
	if payload["error"] == nil {
		t.Errorf("missing error in rejection payload")
	}
	if len(src.queries) != 0 {
		t.Errorf("invalid selector must never reach the source")
	}
}
