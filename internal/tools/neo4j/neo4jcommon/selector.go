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

// Package neo4jcommon holds Cypher building blocks shared by the neo4j
// tool kinds: node selectors, relationship patterns, and query builders.
package neo4jcommon

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxPathHops caps variable-length traversals so a single tool call cannot
// fan out across the whole graph.
const MaxPathHops = 5

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether s is usable as a Cypher label, property
// name, or relationship type without quoting tricks.
func IsValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// NodeSelector identifies a single node by label and one property value.
// The value is always bound as a query parameter, never interpolated.
type NodeSelector struct {
	Label    string
	Property string
	Value    string
}

// ParseNodeSelector parses the user-facing node reference forms:
//
//	"Label:value"       match label, property id = value
//	"id:123"            property id = 123
//	"property:'value'"  property = value (quotes stripped)
//	"123"               property id = 123
//
// Label and property names must be plain identifiers.
func ParseNodeSelector(input string) (NodeSelector, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return NodeSelector{}, fmt.Errorf("empty node selector")
	}

	head, rest, found := strings.Cut(input, ":")
	if !found {
		return NodeSelector{Property: "id", Value: input}, nil
	}
	head = strings.TrimSpace(head)
	rest = strings.TrimSpace(rest)
	if !IsValidIdentifier(head) {
		return NodeSelector{}, fmt.Errorf("invalid identifier %q in node selector", head)
	}
	if rest == "" {
		return NodeSelector{}, fmt.Errorf("missing value in node selector %q", input)
	}

	if strings.HasPrefix(rest, "'") {
		// property:'value' form
		value := strings.Trim(rest, "'")
		return NodeSelector{Property: head, Value: value}, nil
	}
	if head == "id" {
		return NodeSelector{Property: "id", Value: rest}, nil
	}
	// Label:value form
	return NodeSelector{Label: head, Property: "id", Value: rest}, nil
}

// Fragment renders the selector as a match pattern bound to varName, with
// the value carried in params under paramName.
func (s NodeSelector) Fragment(varName, paramName string) (string, map[string]any) {
	params := map[string]any{paramName: s.Value}
	if s.Label != "" {
		return fmt.Sprintf("(%s:%s {%s: $%s})", varName, s.Label, s.Property, paramName), params
	}
	return fmt.Sprintf("(%s {%s: $%s})", varName, s.Property, paramName), params
}

// RelPattern renders a variable-length relationship pattern for the given
// types and hop bound. Hops are clamped to [1, MaxPathHops]. An empty type
// list matches any relationship.
func RelPattern(relationshipTypes []string, maxHops int) (string, error) {
	if maxHops > MaxPathHops {
		maxHops = MaxPathHops
	}
	if maxHops < 1 {
		maxHops = 1
	}
	if len(relationshipTypes) == 0 {
		return fmt.Sprintf("[*1..%d]", maxHops), nil
	}
	cleaned := make([]string, 0, len(relationshipTypes))
	for _, t := range relationshipTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !IsValidIdentifier(t) {
			return "", fmt.Errorf("invalid relationship type %q", t)
		}
		cleaned = append(cleaned, t)
	}
	if len(cleaned) == 0 {
		return fmt.Sprintf("[*1..%d]", maxHops), nil
	}
	return fmt.Sprintf("[:%s*1..%d]", strings.Join(cleaned, "|"), maxHops), nil
}

// SplitRelationshipTypes splits a comma-separated relationship type list,
// dropping empty entries.
func SplitRelationshipTypes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, p)
		}
	}
	return types
}
