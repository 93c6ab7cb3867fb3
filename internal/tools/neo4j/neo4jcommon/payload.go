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

import "fmt"

// ErrorPayload is the structured rejection returned to the caller as a tool
// result. Rejections are data, never Go errors; the agent reads them and
// adjusts instead of crashing.
func ErrorPayload(errMsg, suggestion string) map[string]any {
	payload := map[string]any{"error": errMsg}
	if suggestion != "" {
		payload["suggestion"] = suggestion
	}
	return payload
}

// QueryFailurePayload wraps a database failure in the same structured form.
func QueryFailurePayload(err error) map[string]any {
	return map[string]any{
		"error": fmt.Sprintf("Database connection failed: %s. Please check your Neo4j connection settings.", err),
	}
}
