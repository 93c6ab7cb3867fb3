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

// Package format renders query results as bounded, display-safe strings:
// key-value blocks, markdown tables with numeric totals, and ASCII bar
// charts. Row shapes are only loosely uniform: the ordered key set of the
// result defines the columns, a row missing a key renders as an empty
// string, and extra keys in later rows are ignored. That asymmetry is a
// documented policy, not an accident.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// NoResults is the sentinel returned for empty result sets.
	NoResults = "No results found."

	// maxCellWidth bounds every rendered cell for display stability.
	maxCellWidth = 20
)

// Table renders rows as a key-value block (single row) or a markdown table
// (multiple rows). keys fixes the column set and order.
func Table(keys []string, rows []map[string]any) string {
	if len(rows) == 0 || len(keys) == 0 {
		return NoResults
	}

	if len(rows) == 1 {
		var lines []string
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("**%s**: %v", key, rows[0][key]))
		}
		return strings.Join(lines, "\n")
	}

	widths := make(map[string]int, len(keys))
	for _, key := range keys {
		w := len(key)
		for _, row := range rows {
			if l := len(cellString(row, key)); l > w {
				w = l
			}
		}
		if w > maxCellWidth {
			w = maxCellWidth
		}
		widths[key] = w
	}

	var out []string

	headerCells := make([]string, len(keys))
	sepCells := make([]string, len(keys))
	for i, key := range keys {
		headerCells[i] = pad(key, widths[key])
		sepCells[i] = ":" + strings.Repeat("-", widths[key]) + ":"
	}
	out = append(out, "| "+strings.Join(headerCells, " | ")+" |")
	out = append(out, "|"+strings.Join(sepCells, "|")+"|")

	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, key := range keys {
			value := cellString(row, key)
			if len(value) > widths[key] {
				value = value[:widths[key]-3] + "..."
			}
			cells[i] = pad(value, widths[key])
		}
		out = append(out, "| "+strings.Join(cells, " | ")+" |")
	}

	if totals := numericTotals(keys, rows); len(totals) > 0 {
		out = append(out, "", "**Summary:**")
		for _, key := range keys {
			if total, ok := totals[key]; ok {
				out = append(out, fmt.Sprintf("- Total %s: %s", key, FormatNumber(total)))
			}
		}
	}

	out = append(out, "", fmt.Sprintf("*Total rows: %d*", len(rows)))

	return strings.Join(out, "\n")
}

// numericTotals sums each column whose present values are all numeric.
// Totals of zero are dropped, matching the table's summary policy.
func numericTotals(keys []string, rows []map[string]any) map[string]float64 {
	totals := make(map[string]float64)
	for _, key := range keys {
		sum := 0.0
		numeric := false
		uniform := true
		for _, row := range rows {
			value, present := row[key]
			if !present || value == nil {
				continue
			}
			f, ok := AsFloat(value)
			if !ok {
				uniform = false
				break
			}
			numeric = true
			sum += f
		}
		if uniform && numeric && sum > 0 {
			totals[key] = sum
		}
	}
	return totals
}

// cellString renders one cell; a missing key is an empty string.
func cellString(row map[string]any, key string) string {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// AsFloat reports a value's numeric interpretation, if it has one.
func AsFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// FormatNumber renders a total in a compact human form: whole numbers
// without decimals, others with two, both with thousands separators.
func FormatNumber(f float64) string {
	var s string
	if f == float64(int64(f)) {
		s = strconv.FormatInt(int64(f), 10)
	} else {
		s = strconv.FormatFloat(f, 'f', 2, 64)
	}
	return groupThousands(s)
}

// groupThousands inserts commas into the integer part of a decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
