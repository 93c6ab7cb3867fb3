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

package neo4j

import (
	"os"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/NOGIT007/Agentspace-neo4j/internal/testutils"
)

// newIntegrationSource connects to the instance named by NEO4J_URI. The
// test is skipped when no instance is configured.
func newIntegrationSource(t *testing.T) *Source {
	t.Helper()
	if os.Getenv("NEO4J_URI") == "" {
		t.Skip("'NEO4J_URI' not set, skipping integration test")
	}

	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}
	cfg := Config{Name: "integration", Type: SourceType}
	cfg.applyDefaults()

	s, err := cfg.Initialize(ctx, otel.Tracer("integration-test"))
	if err != nil {
		t.Fatalf("unable to connect to neo4j: %s", err)
	}
	return s.(*Source)
}

func TestIntegrationExecute(t *testing.T) {
	s := newIntegrationSource(t)
	defer s.Driver.Close(t.Context())

	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}

	keys, rows, err := s.Execute(ctx, "RETURN 1 as a", nil)
	if err != nil {
		t.Fatalf("query failed: %s", err)
	}
	if len(keys) != 1 || keys[0] != "a" {
		t.Errorf("incorrect keys: %v", keys)
	}
	if len(rows) != 1 || rows[0]["a"] != int64(1) {
		t.Errorf("incorrect rows: %v", rows)
	}
}

func TestIntegrationSchemaDiscovery(t *testing.T) {
	s := newIntegrationSource(t)
	defer s.Driver.Close(t.Context())

	ctx, err := testutils.ContextWithNewLogger()
	if err != nil {
		t.Fatalf("unable to create context: %s", err)
	}

	schema, fromCache, err := s.SchemaStore().Get(ctx)
	if err != nil {
		t.Fatalf("schema discovery failed: %s", err)
	}
	if fromCache {
		t.Errorf("first discovery should not come from cache")
	}
	if schema == nil {
		t.Fatalf("missing schema")
	}

	// second call must be served from cache
	if _, fromCache, err = s.SchemaStore().Get(ctx); err != nil {
		t.Fatalf("cached schema read failed: %s", err)
	}
	if !fromCache {
		t.Errorf("second discovery should come from cache")
	}
}
