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

package format

import (
	"strings"
	"testing"
)

func barLength(line string) int {
	return strings.Count(line, "█")
}

func TestBarChartProportions(t *testing.T) {
	got := BarChart([]string{"year", "count"}, []map[string]any{
		{"year": "2022", "count": int64(10)},
		{"year": "2023", "count": int64(20)},
	}, "")

	lines := strings.Split(got, "\n")
	var bar2022, bar2023 int
	for _, line := range lines {
		if strings.HasPrefix(line, "2022") {
			bar2022 = barLength(line)
		}
		if strings.HasPrefix(line, "2023") {
			bar2023 = barLength(line)
		}
	}

	if bar2023 != 40 {
		t.Errorf("max value bar length = %d, want 40", bar2023)
	}
	if bar2022*2 != bar2023 {
		t.Errorf("bar lengths %d and %d are not proportional", bar2022, bar2023)
	}
	if !strings.Contains(got, "Total") || !strings.Contains(got, "30") {
		t.Errorf("expected total of 30:\n%s", got)
	}
}

func TestBarChartYearOrdering(t *testing.T) {
	got := BarChart([]string{"year", "count"}, []map[string]any{
		{"year": "2024", "count": int64(1)},
		{"year": "2022", "count": int64(2)},
		{"year": "2023", "count": int64(3)},
	}, "")

	if strings.Index(got, "2022") > strings.Index(got, "2023") ||
		strings.Index(got, "2023") > strings.Index(got, "2024") {
		t.Errorf("digit labels not sorted numerically:\n%s", got)
	}
}

func TestBarChartColumnSelection(t *testing.T) {
	// "count" must win over the other numeric column by priority.
	got := BarChart([]string{"city", "rank", "count"}, []map[string]any{
		{"city": "NYC", "rank": int64(1), "count": int64(9)},
		{"city": "LA", "rank": int64(2), "count": int64(3)},
	}, "")

	if !strings.Contains(got, "NYC") {
		t.Errorf("expected city labels in chart:\n%s", got)
	}
	if !strings.Contains(got, "12") {
		t.Errorf("expected count total of 12, got:\n%s", got)
	}
}

func TestBarChartNoNumericColumn(t *testing.T) {
	got := BarChart([]string{"a", "b"}, []map[string]any{
		{"a": "x", "b": "y"},
	}, "")

	if got != CannotChart {
		t.Errorf("BarChart without numeric column = %q, want %q", got, CannotChart)
	}
}

func TestBarChartEmpty(t *testing.T) {
	if got := BarChart(nil, nil, ""); got != "No data to visualize" {
		t.Errorf("empty chart = %q", got)
	}
}

func TestBarChartTitle(t *testing.T) {
	got := BarChart([]string{"name", "value"}, []map[string]any{
		{"name": "a", "value": int64(1)},
	}, "Revenue by Region")

	lines := strings.Split(got, "\n")
	if lines[0] != "Revenue by Region" {
		t.Errorf("title line = %q", lines[0])
	}
	if lines[1] != strings.Repeat("=", len("Revenue by Region")) {
		t.Errorf("underline = %q", lines[1])
	}
}
