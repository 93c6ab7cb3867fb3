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
	"os"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"go.opentelemetry.io/otel/trace"

	"github.com/NOGIT007/Agentspace-neo4j/internal/sources"
)

const SourceType string = "neo4j"

const (
	// connectTimeout bounds connection establishment so a hung network
	// path cannot stall a tool call.
	connectTimeout = 10 * time.Second
	// maxConnectionLifetime bounds how long any pooled connection lives.
	maxConnectionLifetime = 30 * time.Second
)

// validate interface
var _ sources.SourceConfig = Config{}

func init() {
	if !sources.Register(SourceType, newConfig) {
		panic(fmt.Sprintf("source type %q already registered", SourceType))
	}
}

func newConfig(ctx context.Context, name string, decoder *yaml.Decoder) (sources.SourceConfig, error) {
	actual := Config{Name: name}
	if err := decoder.DecodeContext(ctx, &actual); err != nil {
		return nil, err
	}
	actual.applyDefaults()
	return actual, nil
}

type Config struct {
	Name     string `yaml:"name" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	Uri      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// applyDefaults fills unset fields from the environment, falling back to
// the conventional local-instance defaults.
func (c *Config) applyDefaults() {
	if c.Uri == "" {
		c.Uri = envOr("NEO4J_URI", "bolt://localhost:7687")
	}
	if c.User == "" {
		c.User = envOr("NEO4J_USERNAME", "neo4j")
	}
	if c.Password == "" {
		c.Password = envOr("NEO4J_PASSWORD", "password")
	}
	if c.Database == "" {
		c.Database = envOr("NEO4J_DATABASE", "neo4j")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c Config) SourceConfigType() string {
	return SourceType
}

func (c Config) Initialize(ctx context.Context, tracer trace.Tracer) (sources.Source, error) {
	driver, err := initNeo4jConnection(ctx, tracer, c.Uri, c.User, c.Password, c.Name)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection: %w", err)
	}

	s := &Source{
		Config: c,
		Driver: driver,
	}
	s.schema = NewSchemaStore(s.Execute)
	return s, nil
}

// validate interface
var _ sources.Source = &Source{}

type Source struct {
	Config
	Driver neo4j.DriverWithContext

	schema *SchemaStore
}

func (s *Source) SourceType() string {
	return SourceType
}

func (s *Source) Neo4jDriver() neo4j.DriverWithContext {
	return s.Driver
}

func (s *Source) Neo4jDatabase() string {
	return s.Database
}

// SchemaStore returns the schema cache owned by this source. All schema
// tools bound to the source share it.
func (s *Source) SchemaStore() *SchemaStore {
	return s.schema
}

// Execute runs one read-only query in a session scoped to this call. The
// session is released on every exit path. It returns the ordered column
// keys of the result along with the converted rows; callers must tolerate
// rows missing keys.
func (s *Source) Execute(ctx context.Context, cypher string, params map[string]any) ([]string, []map[string]any, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.Database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to execute query: %w", err)
	}

	var keys []string
	var rows []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		if keys == nil {
			keys = record.Keys
		}
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = ConvertValue(record.Values[i])
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, nil, fmt.Errorf("unable to read query result: %w", err)
	}

	return keys, rows, nil
}

// ConvertValue converts driver values to JSON-compatible values. Temporal
// values become their canonical string form so results serialize cleanly;
// the conversion recurses through nested lists and maps and is idempotent
// on already-converted values.
func ConvertValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool, string, int, int8, int16, int32, int64, float32, float64:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case dbtype.Date:
		return v.String()
	case dbtype.LocalTime:
		return v.String()
	case dbtype.Time:
		return v.String()
	case dbtype.LocalDateTime:
		return v.String()
	case dbtype.Duration:
		return v.String()
	case dbtype.Node:
		return map[string]any{
			"elementId":  v.ElementId,
			"labels":     v.Labels,
			"properties": ConvertValue(v.Props),
		}
	case dbtype.Relationship:
		return map[string]any{
			"elementId":      v.ElementId,
			"type":           v.Type,
			"startElementId": v.StartElementId,
			"endElementId":   v.EndElementId,
			"properties":     ConvertValue(v.Props),
		}
	case dbtype.Path:
		nodes := make([]any, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			nodes = append(nodes, ConvertValue(n))
		}
		relationships := make([]any, 0, len(v.Relationships))
		for _, r := range v.Relationships {
			relationships = append(relationships, ConvertValue(r))
		}
		return map[string]any{
			"nodes":         nodes,
			"relationships": relationships,
		}
	case []any:
		arr := make([]any, len(v))
		for i, elem := range v {
			arr[i] = ConvertValue(elem)
		}
		return arr
	case map[string]any:
		m := make(map[string]any, len(v))
		for key, val := range v {
			m[key] = ConvertValue(val)
		}
		return m
	}
	return fmt.Sprintf("%v", value)
}

// PropertyNames returns the sorted property names of a converted node map.
func PropertyNames(converted any) []string {
	node, ok := converted.(map[string]any)
	if !ok {
		return nil
	}
	props, ok := node["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func initNeo4jConnection(ctx context.Context, tracer trace.Tracer, uri, user, password, sourceName string) (neo4j.DriverWithContext, error) {
	//nolint:all // Reassigned ctx
	ctx, span := sources.InitConnectionSpan(ctx, tracer, SourceType, sourceName)
	defer span.End()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(c *config.Config) {
		c.SocketConnectTimeout = connectTimeout
		c.MaxConnectionLifetime = maxConnectionLifetime
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		if closeErr := driver.Close(ctx); closeErr != nil {
			return nil, fmt.Errorf("unable to verify connectivity: %w; also failed to close driver: %w", err, closeErr)
		}
		return nil, fmt.Errorf("unable to verify connectivity: %w", err)
	}

	return driver, nil
}
