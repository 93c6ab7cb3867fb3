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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NOGIT007/Agentspace-neo4j/internal/cache"
	"github.com/NOGIT007/Agentspace-neo4j/internal/util"
)

const schemaCacheKey = "schema"

// SchemaInfo is a point-in-time snapshot of the graph schema. Labels and
// relationship types preserve database order; property names per label are
// sorted. Labels whose sampling query failed are listed in OmittedLabels and
// have no NodeProperties entry.
type SchemaInfo struct {
	Labels            []string            `json:"labels"`
	RelationshipTypes []string            `json:"relationship_types"`
	NodeProperties    map[string][]string `json:"node_properties"`
	OmittedLabels     []string            `json:"omitted_labels,omitempty"`
}

// runQueryFn runs one read-only query and returns ordered keys plus rows.
type runQueryFn func(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error)

// SchemaStore caches discovered schema for a single source. Discovery is
// single-flight: concurrent callers with a cold cache block on one discovery
// rather than each hitting the database.
type SchemaStore struct {
	run   runQueryFn
	cache *cache.Cache

	mu sync.Mutex
}

func NewSchemaStore(run runQueryFn) *SchemaStore {
	return &SchemaStore{
		run:   run,
		cache: cache.New(),
	}
}

// Cached returns the cached schema without triggering discovery.
func (s *SchemaStore) Cached() (*SchemaInfo, bool) {
	v, ok := s.cache.Get(schemaCacheKey)
	if !ok {
		return nil, false
	}
	schema, ok := v.(*SchemaInfo)
	return schema, ok
}

// Get returns the schema, discovering it from the database when the cache is
// cold. The second return reports whether the result came from cache.
func (s *SchemaStore) Get(ctx context.Context) (*SchemaInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schema, ok := s.Cached(); ok {
		return schema, true, nil
	}
	schema, err := s.discover(ctx)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(schemaCacheKey, schema, 0)
	return schema, false, nil
}

// Refresh drops the cached schema. The next Get rediscovers it.
func (s *SchemaStore) Refresh() {
	s.cache.Delete(schemaCacheKey)
}

func (s *SchemaStore) discover(ctx context.Context) (*SchemaInfo, error) {
	logger, err := util.LoggerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	labels, err := s.collectStrings(ctx, "CALL db.labels() YIELD label RETURN label", "label")
	if err != nil {
		return nil, fmt.Errorf("unable to discover node labels: %w", err)
	}
	relationshipTypes, err := s.collectStrings(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", "relationshipType")
	if err != nil {
		return nil, fmt.Errorf("unable to discover relationship types: %w", err)
	}

	schema := &SchemaInfo{
		Labels:            labels,
		RelationshipTypes: relationshipTypes,
		NodeProperties:    make(map[string][]string, len(labels)),
	}
	for _, label := range labels {
		names, err := s.sampleProperties(ctx, label)
		if err != nil {
			logger.WarnContext(ctx, "schema discovery: omitting label %q: %s", label, err)
			schema.OmittedLabels = append(schema.OmittedLabels, label)
			continue
		}
		schema.NodeProperties[label] = names
	}
	return schema, nil
}

func (s *SchemaStore) collectStrings(ctx context.Context, cypher, key string) ([]string, error) {
	_, rows, err := s.run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[key].(string); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

// sampleProperties reads one node of the label and returns its sorted
// property names. An empty label yields an empty list, not an error.
func (s *SchemaStore) sampleProperties(ctx context.Context, label string) ([]string, error) {
	cypher := fmt.Sprintf("MATCH (n:`%s`) RETURN n LIMIT 1", escapeBackticks(label))
	_, rows, err := s.run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return PropertyNames(rows[0]["n"]), nil
}

// escapeBackticks makes a label safe inside a backtick-quoted identifier.
func escapeBackticks(identifier string) string {
	return strings.ReplaceAll(identifier, "`", "``")
}
