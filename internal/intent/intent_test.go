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

package intent

import (
	"strings"
	"testing"
)

func TestClassifyDestructive(t *testing.T) {
	c := NewClassifier()

	tcs := []struct {
		desc        string
		message     string
		destructive bool
	}{
		{
			desc:        "plain read request",
			message:     "show me all customers",
			destructive: false,
		},
		{
			desc:        "delete request",
			message:     "delete all customer records",
			destructive: true,
		},
		{
			desc:        "safe context override for update",
			message:     "update me on recent orders",
			destructive: false,
		},
		{
			desc:        "create request",
			message:     "create new customer John",
			destructive: true,
		},
		{
			desc:        "order by vocabulary is safe",
			message:     "list products order by price",
			destructive: false,
		},
		{
			desc:        "direct phrase bypasses context check",
			message:     "show how to insert into Customer",
			destructive: true,
		},
		{
			desc:        "informational question about deletes",
			message:     "what is the record retention policy",
			destructive: false,
		},
		{
			desc:        "drop database",
			message:     "drop database neo4j",
			destructive: true,
		},
		{
			desc:        "empty message",
			message:     "",
			destructive: false,
		},
		{
			desc:        "all X order pattern",
			message:     "sum of all subscription order values",
			destructive: false,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			got := c.Classify(tc.message)
			if got.Destructive != tc.destructive {
				t.Errorf("Classify(%q).Destructive = %v, want %v", tc.message, got.Destructive, tc.destructive)
			}
		})
	}
}

func TestClassifySuggestions(t *testing.T) {
	c := NewClassifier()

	tcs := []struct {
		desc    string
		message string
		want    string
	}{
		{
			desc:    "create family",
			message: "create new customer record",
			want:    "existing records",
		},
		{
			desc:    "update family",
			message: "modify the customer record for Alice",
			want:    "current values",
		},
		{
			desc:    "delete family",
			message: "delete all customer records",
			want:    "records to review",
		},
		{
			desc:    "generic fallback",
			message: "change database contents",
			want:    "Try rephrasing",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			got := c.Classify(tc.message)
			if !got.Destructive {
				t.Fatalf("Classify(%q) expected destructive verdict", tc.message)
			}
			if !strings.Contains(got.Suggestion, tc.want) {
				t.Errorf("suggestion %q does not contain %q", got.Suggestion, tc.want)
			}
		})
	}
}

func TestSecurityMessage(t *testing.T) {
	msg := SecurityMessage("Instead, try: 'Show me records to review'")
	for _, want := range []string{"Security Alert", "records to review", "Counting and aggregating"} {
		if !strings.Contains(msg, want) {
			t.Errorf("security message missing %q", want)
		}
	}
}
