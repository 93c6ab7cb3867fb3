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

package neo4j_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources/neo4j"
	"github.com/NOGIT007/Agentspace-neo4j/internal/testutils"
)

// fakeGraph serves canned responses per cypher string and counts calls.
type fakeGraph struct {
	mu        sync.Mutex
	responses map[string][]map[string]any
	errors    map[string]error
	calls     []string
}

func (f *fakeGraph) run(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cypher)
	if err, ok := f.errors[cypher]; ok {
		return nil, nil, err
	}
	rows, ok := f.responses[cypher]
	if !ok {
		return nil, nil, fmt.Errorf("unexpected query: %s", cypher)
	}
	return nil, rows, nil
}

func (f *fakeGraph) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const (
	labelsQuery   = "CALL db.labels() YIELD label RETURN label"
	relTypesQuery = "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType"
)

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		responses: map[string][]map[string]any{
			labelsQuery: {
				{"label": "Person"},
				{"label": "Movie"},
			},
			relTypesQuery: {
				{"relationshipType": "ACTED_IN"},
			},
			"MATCH (n:`Person`) RETURN n LIMIT 1": {
				{"n": map[string]any{
					"elementId":  "4:abc:1",
					"labels":     []any{"Person"},
					"properties": map[string]any{"name": "Alice", "born": "1980-05-01"},
				}},
			},
			// empty label: no sample node exists
			"MATCH (n:`Movie`) RETURN n LIMIT 1": {},
		},
		errors: map[string]error{},
	}
}

func TestSchemaDiscovery(t *testing.T) {
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	graph := newFakeGraph()
	store := neo4j.NewSchemaStore(graph.run)

	schema, fromCache, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if fromCache {
		t.Errorf("first Get should not come from cache")
	}
	want := &neo4j.SchemaInfo{
		Labels:            []string{"Person", "Movie"},
		RelationshipTypes: []string{"ACTED_IN"},
		NodeProperties: map[string][]string{
			"Person": {"born", "name"},
			"Movie":  {},
		},
	}
	if diff := cmp.Diff(want, schema); diff != "" {
		t.Errorf("incorrect schema: diff %v", diff)
	}
}

func TestSchemaCacheHit(t *testing.T) {
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	graph := newFakeGraph()
	store := neo4j.NewSchemaStore(graph.run)

	if _, _, err := store.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	callsAfterFirst := graph.callCount()

	schema, fromCache, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !fromCache {
		t.Errorf("second Get should come from cache")
	}
	if schema == nil {
		t.Fatalf("expected cached schema, got nil")
	}
	if graph.callCount() != callsAfterFirst {
		t.Errorf("cached Get ran %d extra queries", graph.callCount()-callsAfterFirst)
	}

	if _, ok := store.Cached(); !ok {
		t.Errorf("Cached should report a warm cache")
	}
}

func TestSchemaRefresh(t *testing.T) {
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	graph := newFakeGraph()
	store := neo4j.NewSchemaStore(graph.run)

	if _, _, err := store.Get(ctx); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	store.Refresh()

	if _, ok := store.Cached(); ok {
		t.Errorf("Refresh should empty the cache")
	}
	callsBefore := graph.callCount()
	if _, fromCache, err := store.Get(ctx); err != nil || fromCache {
		t.Fatalf("Get after Refresh: fromCache=%v err=%v", fromCache, err)
	}
	if graph.callCount() == callsBefore {
		t.Errorf("Get after Refresh should rediscover from the database")
	}
}

func TestSchemaPartialFailure(t *testing.T) {
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	graph := newFakeGraph()
	graph.errors["MATCH (n:`Movie`) RETURN n LIMIT 1"] = fmt.Errorf("lease expired")
	store := neo4j.NewSchemaStore(graph.run)

	schema, _, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("partial failure must not fail discovery: %s", err)
	}
	if diff := cmp.Diff([]string{"Movie"}, schema.OmittedLabels); diff != "" {
		t.Errorf("incorrect omitted labels: diff %v", diff)
	}
	if _, ok := schema.NodeProperties["Movie"]; ok {
		t.Errorf("omitted label must not appear in node properties")
	}
	if _, ok := schema.NodeProperties["Person"]; !ok {
		t.Errorf("surviving label missing from node properties")
	}
}

func TestSchemaDiscoveryError(t *testing.T) {
	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	graph := newFakeGraph()
	graph.errors[labelsQuery] = fmt.Errorf("connection reset")
	store := neo4j.NewSchemaStore(graph.run)

	if _, _, err := store.Get(ctx); err == nil {
		t.Fatalf("expected error when label discovery fails")
	}
	if _, ok := store.Cached(); ok {
		t.Errorf("failed discovery must not populate the cache")
	}
}
