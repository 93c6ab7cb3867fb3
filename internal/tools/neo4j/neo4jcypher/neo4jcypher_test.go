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

package neo4jcypher

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NOGIT007/Agentspace-neo4j/internal/testutils"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/classifier"
)

// fakeSource records the last executed query and serves canned rows.
type fakeSource struct {
	lastQuery  string
	lastParams map[string]any
	keys       []string
	rows       []map[string]any
	err        error
}

func (f *fakeSource) Execute(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error) {
	f.lastQuery = cypher
	f.lastParams = params
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.keys, f.rows, nil
}

func newTestTool(src *fakeSource) Tool {
	params := tools.Parameters{
		tools.NewStringParameter("query", "query"),
		tools.NewMapParameter("params", "params"),
	}
	return Tool{
		Name:       "execute-cypher",
		Type:       toolType,
		Source:     src,
		classifier: classifier.NewQueryClassifier(),
		allParams:  params,
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

func TestInvokeReadQuery(t *testing.T) {
	src := &fakeSource{
		keys: []string{"name"},
		rows: []map[string]any{{"name": "Alice"}, {"name": "Bob"}},
	}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{
		"query":  "MATCH (n:Person) WHERE n.name = $name RETURN n.name as name",
		"params": map[string]any{"name": "Alice"},
	})

	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", result)
	}
	if payload["message"] != "Query executed successfully." {
		t.Errorf("incorrect message: %v", payload["message"])
	}
	if diff := cmp.Diff(src.rows, payload["data"]); diff != "" {
		t.Errorf("incorrect data: diff %v", diff)
	}
	if diff := cmp.Diff(map[string]any{"name": "Alice"}, src.lastParams); diff != "" {
		t.Errorf("params not passed through: diff %v", diff)
	}
}

func TestInvokeBlocksWriteQuery(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"query": "MATCH (n) DELETE n"})

	payload := result.(map[string]any)
	if payload["error"] != "Only read-only queries are allowed. Write operations are blocked for safety." {
		t.Errorf("incorrect error: %v", payload["error"])
	}
	if payload["suggestion"] != "Use MATCH and RETURN statements for querying data." {
		t.Errorf("incorrect suggestion: %v", payload["suggestion"])
	}
	if src.lastQuery != "" {
		t.Errorf("blocked query must never reach the source, got %q", src.lastQuery)
	}
}

func TestInvokeBlocksSchemaProbe(t *testing.T) {
	src := &fakeSource{}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"query": "CALL db.labels() YIELD label RETURN label"})

	payload := result.(map[string]any)
	if payload["error"] != "Direct schema queries are not allowed. Please describe what data you're looking for instead." {
		t.Errorf("incorrect error: %v", payload["error"])
	}
	if src.lastQuery != "" {
		t.Errorf("blocked query must never reach the source, got %q", src.lastQuery)
	}
}

func TestInvokeEmptyResult(t *testing.T) {
	src := &fakeSource{keys: nil, rows: nil}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"query": "MATCH (n:Ghost) RETURN n"})

	payload := result.(map[string]any)
	if payload["message"] != "No results found." {
		t.Errorf("incorrect message: %v", payload["message"])
	}
}

func TestInvokeDatabaseFailure(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("connection refused")}
	tool := newTestTool(src)

	result := invoke(t, tool, map[string]any{"query": "MATCH (n) RETURN n LIMIT 1"})

	payload := result.(map[string]any)
	want := "Database connection failed: connection refused. Please check your Neo4j connection settings."
	if payload["error"] != want {
		t.Errorf("incorrect error: %v", payload["error"])
	}
}
