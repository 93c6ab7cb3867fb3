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

package neo4jcommon_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/NOGIT007/Agentspace-neo4j/internal/tools/neo4j/neo4jcommon"
)

func TestParseNodeSelector(t *testing.T) {
	tcs := []struct {
		desc string
		in   string
		want neo4jcommon.NodeSelector
	}{
		{
			desc: "label and id value",
			in:   "Customer:123",
			want: neo4jcommon.NodeSelector{Label: "Customer", Property: "id", Value: "123"},
		},
		{
			desc: "explicit id",
			in:   "id:123",
			want: neo4jcommon.NodeSelector{Property: "id", Value: "123"},
		},
		{
			desc: "property with quoted value",
			in:   "name:'John'",
			want: neo4jcommon.NodeSelector{Property: "name", Value: "John"},
		},
		{
			desc: "bare id",
			in:   "123",
			want: neo4jcommon.NodeSelector{Property: "id", Value: "123"},
		},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := neo4jcommon.ParseNodeSelector(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("incorrect parse: diff %v", diff)
			}
		})
	}
}

func TestParseNodeSelectorErrors(t *testing.T) {
	tcs := []struct {
		desc string
		in   string
	}{
		{desc: "empty", in: ""},
		{desc: "injection in label", in: "Customer {x: 1}) MATCH (m:Other"},
		{desc: "missing value", in: "Customer:"},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := neo4jcommon.ParseNodeSelector(tc.in); err == nil {
				t.Fatalf("expected error for %q, got none", tc.in)
			}
		})
	}
}

func TestNodeSelectorFragment(t *testing.T) {
	s := neo4jcommon.NodeSelector{Label: "Customer", Property: "id", Value: "123"}
	pattern, params := s.Fragment("start", "start_value")
	if pattern != "(start:Customer {id: $start_value})" {
		t.Errorf("incorrect pattern: %q", pattern)
	}
	if diff := cmp.Diff(map[string]any{"start_value": "123"}, params); diff != "" {
		t.Errorf("incorrect params: diff %v", diff)
	}

	s = neo4jcommon.NodeSelector{Property: "name", Value: "John"}
	pattern, params = s.Fragment("n", "ref_value")
	if pattern != "(n {name: $ref_value})" {
		t.Errorf("incorrect pattern: %q", pattern)
	}
	if params["ref_value"] != "John" {
		t.Errorf("incorrect params: %v", params)
	}
}

func TestRelPattern(t *testing.T) {
	tcs := []struct {
		desc    string
		types   []string
		maxHops int
		want    string
	}{
		{desc: "no types", types: nil, maxHops: 3, want: "[*1..3]"},
		{desc: "single type", types: []string{"KNOWS"}, maxHops: 2, want: "[:KNOWS*1..2]"},
		{desc: "multiple types", types: []string{"KNOWS", "WORKS_WITH"}, maxHops: 3, want: "[:KNOWS|WORKS_WITH*1..3]"},
		{desc: "hops clamped high", types: nil, maxHops: 20, want: "[*1..5]"},
		{desc: "hops clamped low", types: nil, maxHops: 0, want: "[*1..1]"},
		{desc: "blank entries dropped", types: []string{" KNOWS ", ""}, maxHops: 2, want: "[:KNOWS*1..2]"},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := neo4jcommon.RelPattern(tc.types, tc.maxHops)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := neo4jcommon.RelPattern([]string{"KNOWS]->(x) MATCH"}, 3); err == nil {
		t.Errorf("expected error for invalid type")
	}
}

func TestSplitRelationshipTypes(t *testing.T) {
	got := neo4jcommon.SplitRelationshipTypes(" KNOWS, WORKS_WITH ,,")
	want := []string{"KNOWS", "WORKS_WITH"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incorrect split: diff %v", diff)
	}
	if got := neo4jcommon.SplitRelationshipTypes("  "); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"Customer", "first_name", "_private", "Label2"}
	for _, s := range valid {
		if !neo4jcommon.IsValidIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	invalid := []string{"", "2fast", "has space", "a-b", "x`y", "a.b"}
	for _, s := range invalid {
		if neo4jcommon.IsValidIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}
