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
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// CannotChart is returned when no numeric column can be found.
	CannotChart = "Cannot create chart - need label and numeric columns"

	// DefaultChartTitle is used when the caller supplies no title.
	DefaultChartTitle = "Data Visualization"

	barWidth = 40
)

// valuePriorities and labelPriorities pick the chart columns before any
// positional fallback.
var (
	valuePriorities = []string{"count", "total", "amount", "sum", "value", "number"}
	labelPriorities = []string{"year", "name", "label", "category", "type"}
)

type barEntry struct {
	label string
	value float64
}

// BarChart renders rows as a fixed-width proportional bar chart. The value
// column is picked by priority name, then first uniformly numeric column;
// the label column by priority name, then first remaining column.
func BarChart(keys []string, rows []map[string]any, title string) string {
	if len(rows) == 0 || len(keys) == 0 {
		return "No data to visualize"
	}
	if title == "" {
		title = DefaultChartTitle
	}

	valueKey := pickValueColumn(keys, rows)
	labelKey := pickLabelColumn(keys, valueKey)
	if valueKey == "" || labelKey == "" {
		return CannotChart
	}

	entries := make([]barEntry, 0, len(rows))
	maxValue := 0.0
	total := 0.0
	for _, row := range rows {
		label := "Unknown"
		if raw, ok := row[labelKey]; ok && raw != nil {
			label = fmt.Sprintf("%v", raw)
		}
		value := 0.0
		if f, ok := AsFloat(row[valueKey]); ok {
			value = f
		}
		if value > maxValue {
			maxValue = value
		}
		total += value
		entries = append(entries, barEntry{label: label, value: value})
	}

	sortEntries(entries)

	out := []string{title, strings.Repeat("=", len(title)), ""}

	for _, e := range entries {
		barLen := 0
		if maxValue > 0 {
			barLen = int(e.value / maxValue * barWidth)
		}
		bar := strings.Repeat("█", barLen) + strings.Repeat(" ", barWidth-barLen)

		label := e.label
		if len(label) > 15 {
			label = label[:12] + "..."
		}

		out = append(out, fmt.Sprintf("%-15s : %s %s", label, bar, chartNumber(e.value)))
	}

	out = append(out, "", fmt.Sprintf("%-15s : %s", "Total", chartNumber(total)))

	return strings.Join(out, "\n")
}

// pickValueColumn returns the first priority name whose values are all
// numeric, then the first uniformly numeric column in key order.
func pickValueColumn(keys []string, rows []map[string]any) string {
	for _, priority := range valuePriorities {
		if containsKey(keys, priority) && allNumeric(rows, priority) {
			return priority
		}
	}
	for _, key := range keys {
		if allNumeric(rows, key) {
			return key
		}
	}
	return ""
}

// pickLabelColumn returns the first priority label name, then the first
// remaining column.
func pickLabelColumn(keys []string, valueKey string) string {
	for _, priority := range labelPriorities {
		if containsKey(keys, priority) && priority != valueKey {
			return priority
		}
	}
	for _, key := range keys {
		if key != valueKey {
			return key
		}
	}
	return ""
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func allNumeric(rows []map[string]any, key string) bool {
	for _, row := range rows {
		if _, ok := AsFloat(row[key]); !ok {
			return false
		}
	}
	return true
}

// sortEntries orders bars by label: numerically when every label is an
// integer string (year series), lexically when none are, unchanged when
// mixed.
func sortEntries(entries []barEntry) {
	digits := 0
	for _, e := range entries {
		if _, err := strconv.Atoi(e.label); err == nil {
			digits++
		}
	}
	switch digits {
	case len(entries):
		sort.SliceStable(entries, func(i, j int) bool {
			a, _ := strconv.Atoi(entries[i].label)
			b, _ := strconv.Atoi(entries[j].label)
			return a < b
		})
	case 0:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].label < entries[j].label
		})
	}
}

// chartNumber renders a bar value: whole numbers with separators, others
// with one decimal.
func chartNumber(f float64) string {
	if f == float64(int64(f)) {
		return groupThousands(strconv.FormatInt(int64(f), 10))
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}
