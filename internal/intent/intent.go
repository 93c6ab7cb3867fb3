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

// Package intent screens natural-language user messages for destructive
// intent before they reach the LLM. It is a heuristic pre-flight gate;
// the query classifier remains the authoritative gate on generated
// Cypher, so callers treat any internal failure here as non-destructive
// (fail open, a documented availability-over-strictness policy).
package intent

import (
	"regexp"
	"strings"
)

// Verdict is the result of classifying one user message.
type Verdict struct {
	// Destructive reports whether the message asks for a write operation.
	Destructive bool
	// Suggestion is a read-only reformulation hint, set when Destructive.
	Suggestion string
}

// Classifier detects destructive intent in natural-language messages.
type Classifier struct {
	destructivePatterns []*regexp.Regexp
	safeQueryPatterns   []*regexp.Regexp
	safeIndicators      []string
	destructivePhrases  []string
}

// NewClassifier compiles the intent patterns.
func NewClassifier() *Classifier {
	c := &Classifier{}

	// Destructive verb patterns are scoped to domain nouns so that
	// destructive verbs in unrelated contexts do not match.
	destructive := []string{
		`\bcreate\s+(new\s+)?(user|customer|product|order|record|node|database|table)`,
		`\badd\s+(new\s+)?(user|customer|product|order|record|entry)`,
		`\binsert\s+(into\s+)?\w+`,
		`\bupdate\s+(the\s+)?(user|customer|product|order|record|database|table)`,
		`\bmodify\s+(the\s+)?(user|customer|product|order|record|database|table)`,
		`\bdelete\s+(\w+\s+)*(user|customer|product|order|record|data|from)`,
		`\bremove\s+(\w+\s+)*(user|customer|product|order|record|data|from)`,
		`\bdrop\s+(table|database|index|constraint|user)`,
		`\bset\s+\w+\s*=`,
		`\bmerge\s+(into\s+)?\w+`,
	}
	for _, p := range destructive {
		c.destructivePatterns = append(c.destructivePatterns, regexp.MustCompile(p))
	}

	// Query shapes that may contain destructive words but are clearly
	// informational, e.g. "all customer order totals" or ORDER BY clauses.
	safeQueries := []string{
		`\b(list|show|find|get|fetch|display|retrieve)\b`,
		`\border\s+by\b`,
		`\bgroup\s+by\b`,
		`\bcount\b.*\bby\b`,
		`\bsum\b.*\bby\b`,
		`\btotal\b.*\bby\b`,
		`\ball\s+\w+\s+order\b`,
		`\bsubscription\b.*\border\b`,
	}
	for _, p := range safeQueries {
		c.safeQueryPatterns = append(c.safeQueryPatterns, regexp.MustCompile(p))
	}

	c.safeIndicators = []string{
		"how to", "how do i", "can you show", "what is", "tell me about",
		"explain", "describe", "example of", "information about",
		"update me", "keep me updated", "status update",
	}

	// Phrases that are destructive no matter the surrounding context.
	c.destructivePhrases = []string{
		"insert into", "create node", "delete from", "remove node",
		"modify data", "change database", "update database", "alter table",
	}

	return c
}

// Classify analyzes a user message. It is a pure function over the input.
func (c *Classifier) Classify(message string) Verdict {
	if strings.TrimSpace(message) == "" {
		return Verdict{}
	}

	lower := strings.ToLower(message)

	for _, p := range c.destructivePatterns {
		if p.MatchString(lower) {
			// A second pass over the same message downgrades matches that
			// appear in an informational context ("update me on my orders").
			if !c.isSafeContext(lower) {
				return Verdict{Destructive: true, Suggestion: c.suggestion(lower)}
			}
		}
	}

	for _, phrase := range c.destructivePhrases {
		if strings.Contains(lower, phrase) {
			return Verdict{Destructive: true, Suggestion: c.suggestion(lower)}
		}
	}

	return Verdict{}
}

// isSafeContext reports whether the message reads as an informational
// question rather than a mutation request.
func (c *Classifier) isSafeContext(lower string) bool {
	for _, p := range c.safeQueryPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	for _, indicator := range c.safeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// suggestion returns a canned read-only reformulation keyed by the verb
// family found in the message.
func (c *Classifier) suggestion(lower string) string {
	switch {
	case strings.Contains(lower, "create") || strings.Contains(lower, "add"):
		return "Instead, try: 'Show me existing records' or 'List current data'"
	case strings.Contains(lower, "update") || strings.Contains(lower, "modify"):
		return "Instead, try: 'Show me the current values' or 'Display records that need updating'"
	case strings.Contains(lower, "delete") || strings.Contains(lower, "remove"):
		return "Instead, try: 'Show me records to review' or 'List items matching criteria'"
	default:
		return "Try rephrasing as: 'Show me...', 'List...', 'Find...', or 'Count...'"
	}
}

// SecurityMessage renders the fixed substitute reply returned when a
// message is intercepted.
func SecurityMessage(suggestion string) string {
	var b strings.Builder
	b.WriteString("Security Alert: I can only help with reading and analyzing data from your Neo4j database. ")
	b.WriteString("I cannot perform write, update, or delete operations.\n\n")
	b.WriteString(suggestion)
	b.WriteString("\n\nI can help you with:\n")
	b.WriteString("- Querying and displaying data\n")
	b.WriteString("- Counting and aggregating records\n")
	b.WriteString("- Finding patterns and relationships\n")
	b.WriteString("- Generating reports and summaries")
	return b.String()
}
