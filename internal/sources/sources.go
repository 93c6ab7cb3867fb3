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

package sources

import (
	"context"
	"fmt"

	yaml "github.com/goccy/go-yaml"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SourceConfigFactory defines the signature for a function that creates and
// decodes a specific source's configuration.
type SourceConfigFactory func(ctx context.Context, name string, decoder *yaml.Decoder) (SourceConfig, error)

var sourceRegistry = make(map[string]SourceConfigFactory)

// Register allows individual source packages to register their configuration
// factory function. This is typically called from an init() function in the
// source's package. It returns false if the type was already registered.
func Register(sourceType string, factory SourceConfigFactory) bool {
	if _, exists := sourceRegistry[sourceType]; exists {
		return false
	}
	sourceRegistry[sourceType] = factory
	return true
}

// DecodeConfig looks up the registered factory for the given source type and
// uses it to decode the source configuration.
func DecodeConfig(ctx context.Context, sourceType, name string, decoder *yaml.Decoder) (SourceConfig, error) {
	factory, found := sourceRegistry[sourceType]
	if !found {
		return nil, fmt.Errorf("unknown source type: %q", sourceType)
	}
	sourceConfig, err := factory(ctx, name, decoder)
	if err != nil {
		return nil, fmt.Errorf("unable to parse source %q as type %q: %w", name, sourceType, err)
	}
	return sourceConfig, nil
}

// SourceConfig is the interface for configuring a data source.
type SourceConfig interface {
	SourceConfigType() string
	Initialize(ctx context.Context, tracer trace.Tracer) (Source, error)
}

// Source is the interface for the source itself.
type Source interface {
	SourceType() string
}

// InitConnectionSpan adds a span for the source's connection initialization.
func InitConnectionSpan(ctx context.Context, tracer trace.Tracer, sourceType, sourceName string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(
		ctx,
		"agentspace-neo4j/source/connect",
		trace.WithAttributes(attribute.String("source_type", sourceType)),
		trace.WithAttributes(attribute.String("source_name", sourceName)),
	)
	return ctx, span
}
