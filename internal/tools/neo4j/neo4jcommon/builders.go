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

package neo4jcommon

import (
	"fmt"
	"regexp"
	"strings"
)

// aggregationFuncs is the whitelist of aggregation functions the builders
// accept.
var aggregationFuncs = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"max":   true,
	"min":   true,
}

// datePeriods is the whitelist of date.truncate units for date aggregation.
var datePeriods = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// TimeFilter returns a WHERE fragment restricting dateProperty to the named
// period. Unknown periods fall back to the last seven days.
func TimeFilter(period, dateProperty string) string {
	if dateProperty == "" {
		dateProperty = "date"
	}
	period = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(period)), " ", "_")
	switch period {
	case "today":
		return fmt.Sprintf("date(%s) = date()", dateProperty)
	case "yesterday":
		return fmt.Sprintf("date(%s) = date() - duration('P1D')", dateProperty)
	case "last_week":
		return fmt.Sprintf("%s >= date() - duration('P7D')", dateProperty)
	case "last_month":
		return fmt.Sprintf("%s >= date() - duration('P1M')", dateProperty)
	case "this_week":
		return fmt.Sprintf("date.truncate('week', %s) = date.truncate('week', date())", dateProperty)
	case "this_month":
		return fmt.Sprintf("date.truncate('month', %s) = date.truncate('month', date())", dateProperty)
	case "this_year":
		return fmt.Sprintf("date.truncate('year', %s) = date.truncate('year', date())", dateProperty)
	case "last_year":
		return fmt.Sprintf("date.truncate('year', %s) = date.truncate('year', date() - duration('P1Y'))", dateProperty)
	}
	return fmt.Sprintf("%s >= date() - duration('P7D')", dateProperty)
}

// AggregationQuery builds a grouped aggregation over one node label. The
// metric "*" counts nodes instead of a property.
func AggregationQuery(nodeLabel, groupBy, metric, aggregationFunc string, orderDesc bool, limit int) (string, error) {
	if aggregationFunc == "" {
		aggregationFunc = "count"
	}
	if err := checkIdentifiers(nodeLabel, groupBy); err != nil {
		return "", err
	}
	if metric != "*" {
		if !IsValidIdentifier(metric) {
			return "", fmt.Errorf("invalid metric %q", metric)
		}
	}
	if !aggregationFuncs[aggregationFunc] {
		return "", fmt.Errorf("invalid aggregation function %q", aggregationFunc)
	}

	alias := fmt.Sprintf("%s_%s", aggregationFunc, strings.ReplaceAll(metric, "*", "total"))
	var aggExpr string
	if aggregationFunc == "count" && (metric == "*" || metric == strings.ToLower(nodeLabel)) {
		aggExpr = fmt.Sprintf("count(n) as %s", alias)
	} else if aggregationFunc == "count" {
		aggExpr = fmt.Sprintf("count(n.%s) as %s", metric, alias)
	} else {
		aggExpr = fmt.Sprintf("%s(n.%s) as %s", aggregationFunc, metric, alias)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n:%s)\n", nodeLabel)
	fmt.Fprintf(&b, "RETURN n.%s, %s\n", groupBy, aggExpr)
	fmt.Fprintf(&b, "ORDER BY %s %s", alias, orderDirection(orderDesc))
	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}
	return b.String(), nil
}

// GrandTotalQuery builds an aggregation showing per-group values alongside
// the grand total across all groups.
func GrandTotalQuery(nodeLabel, groupBy, metric, aggregationFunc string, orderDesc bool) (string, error) {
	if aggregationFunc == "" {
		aggregationFunc = "sum"
	}
	if err := checkIdentifiers(nodeLabel, groupBy, metric); err != nil {
		return "", err
	}
	if !aggregationFuncs[aggregationFunc] {
		return "", fmt.Errorf("invalid aggregation function %q", aggregationFunc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n:%s)\n", nodeLabel)
	fmt.Fprintf(&b, "WITH n.%s as item, %s(n.%s) as individual_value\n", groupBy, aggregationFunc, metric)
	fmt.Fprintf(&b, "WITH collect({item: item, value: individual_value}) as details, %s(individual_value) as grand_total\n", aggregationFunc)
	b.WriteString("UNWIND details as detail\n")
	fmt.Fprintf(&b, "RETURN detail.item as %s,\n", titleCase(groupBy))
	fmt.Fprintf(&b, "       detail.value as %s,\n", strings.ToUpper(metric))
	fmt.Fprintf(&b, "       grand_total as GrandTotal%s\n", strings.ToUpper(metric))
	fmt.Fprintf(&b, "ORDER BY detail.value %s", orderDirection(orderDesc))
	return b.String(), nil
}

// DateAggregationQuery builds an aggregation grouped by a truncated time
// period of a date property.
func DateAggregationQuery(nodeLabel, dateProperty, metric, aggregationFunc, period string) (string, error) {
	if aggregationFunc == "" {
		aggregationFunc = "sum"
	}
	if period == "" {
		period = "month"
	}
	if err := checkIdentifiers(nodeLabel, dateProperty, metric); err != nil {
		return "", err
	}
	if !aggregationFuncs[aggregationFunc] {
		return "", fmt.Errorf("invalid aggregation function %q", aggregationFunc)
	}
	if !datePeriods[period] {
		return "", fmt.Errorf("invalid period %q", period)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n:%s)\n", nodeLabel)
	fmt.Fprintf(&b, "RETURN date.truncate('%s', n.%s) as %s,\n", period, dateProperty, period)
	fmt.Fprintf(&b, "       %s(n.%s) as total_%s\n", aggregationFunc, metric, metric)
	fmt.Fprintf(&b, "ORDER BY %s", period)
	return b.String(), nil
}

// RelationshipQuery builds a bounded exploration of one relationship type
// between two labels.
func RelationshipQuery(startLabel, relationshipType, endLabel string, limit int) (string, error) {
	if err := checkIdentifiers(startLabel, relationshipType, endLabel); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (s:%s)-[r:%s]->(e:%s)\n", startLabel, relationshipType, endLabel)
	b.WriteString("RETURN s, r, e")
	if limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", limit)
	}
	return b.String(), nil
}

var filteredPropertyPattern = regexp.MustCompile(`where\s+\w+\.\w+\s*=`)

// OptimizationHints inspects a query and returns advisory suggestions. The
// hints never block execution.
func OptimizationHints(cypher string) []string {
	var hints []string
	lower := strings.ToLower(cypher)

	if !strings.Contains(lower, "limit") && !strings.Contains(lower, "count(") {
		hints = append(hints, "Consider adding LIMIT clause to prevent large result sets")
	}
	if strings.Contains(lower, "match (n)") && !strings.Contains(lower, "where") {
		hints = append(hints, "Consider adding WHERE clause to filter results")
	}
	if filteredPropertyPattern.MatchString(lower) {
		hints = append(hints, "Ensure indexes exist on filtered properties for better performance")
	}
	for _, fn := range []string{"sum(", "avg(", "count(", "max(", "min("} {
		if strings.Contains(lower, fn) && !strings.Contains(lower, "with ") {
			hints = append(hints, "Consider using WITH clause for complex aggregations")
			break
		}
	}
	return hints
}

func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	return nil
}

func orderDirection(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
