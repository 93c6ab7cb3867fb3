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

package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NOGIT007/Agentspace-neo4j/internal/tools"
)

func TestParseParams(t *testing.T) {
	params := tools.Parameters{
		tools.NewStringParameter("query", "the cypher query to run"),
		tools.NewIntParameterWithDefault("limit", 25, "maximum rows"),
		tools.NewBooleanParameterWithDefault("verbose", false, "include detail"),
		tools.NewMapParameter("params", "query parameters"),
	}

	tcs := []struct {
		desc string
		in   map[string]any
		want tools.ParamValues
	}{
		{
			desc: "all values provided",
			in: map[string]any{
				"query":   "MATCH (n) RETURN n",
				"limit":   float64(10),
				"verbose": true,
				"params":  map[string]any{"name": "Alice"},
			},
			want: tools.ParamValues{
				{Name: "query", Value: "MATCH (n) RETURN n"},
				{Name: "limit", Value: 10},
				{Name: "verbose", Value: true},
				{Name: "params", Value: map[string]any{"name": "Alice"}},
			},
		},
		{
			desc: "defaults fill absent values",
			in:   map[string]any{"query": "RETURN 1"},
			want: tools.ParamValues{
				{Name: "query", Value: "RETURN 1"},
				{Name: "limit", Value: 25},
				{Name: "verbose", Value: false},
			},
		},
		{
			desc: "json number parses to int",
			in:   map[string]any{"query": "RETURN 1", "limit": json.Number("5")},
			want: tools.ParamValues{
				{Name: "query", Value: "RETURN 1"},
				{Name: "limit", Value: 5},
				{Name: "verbose", Value: false},
			},
		},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tools.ParseParams(params, tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("incorrect parse: diff %v", diff)
			}
		})
	}
}

func TestParseParamsErrors(t *testing.T) {
	params := tools.Parameters{
		tools.NewStringParameter("query", "the cypher query to run"),
		tools.NewIntParameterWithDefault("limit", 25, "maximum rows"),
	}

	tcs := []struct {
		desc string
		in   map[string]any
	}{
		{desc: "missing required", in: map[string]any{"limit": 5}},
		{desc: "wrong type", in: map[string]any{"query": 12}},
		{desc: "fractional int", in: map[string]any{"query": "RETURN 1", "limit": 2.5}},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := tools.ParseParams(params, tc.in); err == nil {
				t.Fatalf("expected error, got none")
			}
		})
	}
}

func TestParamValuesAccessors(t *testing.T) {
	values := tools.ParamValues{
		{Name: "query", Value: "RETURN 1"},
		{Name: "limit", Value: 7},
		{Name: "verbose", Value: true},
		{Name: "params", Value: map[string]any{"x": 1}},
		{Name: "labels", Value: []string{"Person", "Movie"}},
	}

	if got := values.GetString("query"); got != "RETURN 1" {
		t.Errorf("GetString: got %q", got)
	}
	if got := values.GetInt("limit"); got != 7 {
		t.Errorf("GetInt: got %d", got)
	}
	if !values.GetBool("verbose") {
		t.Errorf("GetBool: got false")
	}
	if got := values.GetMap("params"); got["x"] != 1 {
		t.Errorf("GetMap: got %v", got)
	}
	if diff := cmp.Diff([]string{"Person", "Movie"}, values.GetStrings("labels")); diff != "" {
		t.Errorf("GetStrings: diff %v", diff)
	}
	if got := values.GetString("absent"); got != "" {
		t.Errorf("absent GetString: got %q", got)
	}

	wantMap := map[string]any{
		"query":   "RETURN 1",
		"limit":   7,
		"verbose": true,
		"params":  map[string]any{"x": 1},
		"labels":  []string{"Person", "Movie"},
	}
	if diff := cmp.Diff(wantMap, values.AsMap()); diff != "" {
		t.Errorf("AsMap: diff %v", diff)
	}
}

func TestParametersMcpManifest(t *testing.T) {
	params := tools.Parameters{
		tools.NewStringParameter("query", "the cypher query to run"),
		tools.NewIntParameterWithDefault("limit", 25, "maximum rows"),
	}
	got := params.McpManifest()
	want := tools.McpToolsSchema{
		Type: "object",
		Properties: map[string]tools.ParameterMcpManifest{
			"query": {Type: "string", Description: "the cypher query to run"},
			"limit": {Type: "integer", Description: "maximum rows"},
		},
		Required: []string{"query"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incorrect manifest: diff %v", diff)
	}
}

func TestArrayParameterParse(t *testing.T) {
	p := tools.NewArrayParameter("labels", "labels to include")

	got, err := p.Parse([]any{"Person", "Movie"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff([]string{"Person", "Movie"}, got); diff != "" {
		t.Errorf("incorrect parse: diff %v", diff)
	}

	if _, err := p.Parse([]any{"Person", 42}); err == nil {
		t.Errorf("expected error for mixed element types")
	}
	if _, err := p.Parse("Person"); err == nil {
		t.Errorf("expected error for non-array value")
	}
}
