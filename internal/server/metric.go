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

package server

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	InstrumentationName = "github.com/NOGIT007/Agentspace-neo4j/internal/server"

	toolsetGetCountName     = "agentspace.server.toolset.get.count"
	toolInvokeCountName     = "agentspace.server.tool.invoke.count"
	preflightCheckCountName = "agentspace.server.preflight.check.count"
)

// Instrumentation holds the tracer and custom metrics for the server.
type Instrumentation struct {
	Tracer trace.Tracer

	meter          metric.Meter
	ToolsetGet     metric.Int64Counter
	ToolInvoke     metric.Int64Counter
	PreflightCheck metric.Int64Counter
}

// CreateTelemetryInstrumentation creates the tracer and custom metrics for the server.
func CreateTelemetryInstrumentation(versionString string) (*Instrumentation, error) {
	tracer := otel.Tracer(InstrumentationName, trace.WithInstrumentationVersion(versionString))
	meter := otel.Meter(InstrumentationName, metric.WithInstrumentationVersion(versionString))

	toolsetGet, err := meter.Int64Counter(
		toolsetGetCountName,
		metric.WithDescription("Number of toolset GET API calls."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s metric: %w", toolsetGetCountName, err)
	}

	toolInvoke, err := meter.Int64Counter(
		toolInvokeCountName,
		metric.WithDescription("Number of tool Invoke API calls."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s metric: %w", toolInvokeCountName, err)
	}

	preflightCheck, err := meter.Int64Counter(
		preflightCheckCountName,
		metric.WithDescription("Number of preflight intent checks."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s metric: %w", preflightCheckCountName, err)
	}

	instrumentation := &Instrumentation{
		Tracer:         tracer,
		meter:          meter,
		ToolsetGet:     toolsetGet,
		ToolInvoke:     toolInvoke,
		PreflightCheck: preflightCheck,
	}
	return instrumentation, nil
}
