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

// Package classifier decides whether a Cypher query is safe to run as a
// read-only operation. It is the authoritative gate for every query this
// server executes: matching is deliberately conservative (substring based,
// accepting false positives over false negatives) and it never fails open.
package classifier

import (
	"regexp"
	"strings"
)

// MaxMatchClauses is the complexity ceiling; queries with more MATCH
// occurrences are rejected to bound join depth.
const MaxMatchClauses = 10

// Classification is the verdict for one query. It is all-or-nothing:
// callers must not execute a query unless Safe is true.
type Classification struct {
	Safe       bool
	Reason     string
	Suggestion string
}

// QueryClassifier validates Cypher queries against write operations,
// denied procedures, and complexity limits.
type QueryClassifier struct {
	writeKeywords       []string
	dangerousProcedures []string
	schemaProcedures    []string
	commentPattern      *regexp.Regexp
	whitespacePattern   *regexp.Regexp
}

// NewQueryClassifier creates a QueryClassifier with the default rule set.
func NewQueryClassifier() *QueryClassifier {
	return &QueryClassifier{
		writeKeywords: []string{
			"CREATE", "MERGE", "SET", "DELETE", "REMOVE", "DROP",
			"DETACH DELETE", "FOREACH", "LOAD CSV",
		},
		// Procedures known to mutate data.
		dangerousProcedures: []string{
			"apoc.create", "apoc.merge", "apoc.refactor", "apoc.periodic.commit",
			"db.create", "db.drop", "dbms.security",
		},
		// Procedures that expose schema or security internals; schema is
		// served from the dedicated schema tools instead.
		schemaProcedures: []string{
			"db.labels", "db.relationshiptypes", "db.schema", "db.propertykeys",
			"db.constraints", "db.indexes", "apoc.meta",
		},
		commentPattern:    regexp.MustCompile(`(?m)//.*?$|/\*[\s\S]*?\*/`),
		whitespacePattern: regexp.MustCompile(`\s+`),
	}
}

// Classify validates a query string. A zero-value (empty) query is unsafe.
func (c *QueryClassifier) Classify(query string) Classification {
	normalized := c.normalize(query)
	if normalized == "" {
		return Classification{
			Reason:     "Empty query is not allowed.",
			Suggestion: "Use MATCH and RETURN statements for querying data.",
		}
	}

	upper := strings.ToUpper(normalized)
	lower := strings.ToLower(normalized)

	for _, keyword := range c.writeKeywords {
		if strings.Contains(upper, keyword) {
			return Classification{
				Reason:     "Only read-only queries are allowed. Write operations are blocked for safety.",
				Suggestion: "Use MATCH and RETURN statements for querying data.",
			}
		}
	}

	if strings.Contains(upper, "CALL") {
		for _, proc := range c.dangerousProcedures {
			if strings.Contains(lower, proc) {
				return Classification{
					Reason:     "Only read-only queries are allowed. Write operations are blocked for safety.",
					Suggestion: "Use MATCH and RETURN statements for querying data.",
				}
			}
		}
		for _, proc := range c.schemaProcedures {
			if strings.Contains(lower, proc) {
				return Classification{
					Reason:     "Direct schema queries are not allowed. Please describe what data you're looking for instead.",
					Suggestion: "For example: 'Show me all customers' or 'What types of relationships exist between customers and orders?'",
				}
			}
		}
	}

	if strings.Count(upper, "MATCH") > MaxMatchClauses {
		return Classification{
			Reason:     "Query complexity limit exceeded.",
			Suggestion: "Reduce the number of MATCH clauses in the query.",
		}
	}

	return Classification{Safe: true}
}

// IsSchemaProbe reports whether the query references a denied schema
// procedure. Used by callers to pick the schema-specific rejection text.
func (c *QueryClassifier) IsSchemaProbe(query string) bool {
	lower := strings.ToLower(query)
	for _, proc := range c.schemaProcedures {
		if strings.Contains(lower, proc) {
			return true
		}
	}
	return false
}

// normalize strips comments and collapses whitespace so keyword checks
// cannot be dodged with comment tricks.
func (c *QueryClassifier) normalize(query string) string {
	query = c.commentPattern.ReplaceAllString(query, " ")
	query = c.whitespacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}
