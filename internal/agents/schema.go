/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package agents

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/dataset"
)

// DefaultMaxColumns bounds the schema text sent in prompts.
const DefaultMaxColumns = 50

// SchemaSummary is the compact, prompt-friendly description of a dataset.
// Columns always lists every column; SchemaText holds at most MaxColumns lines.
type SchemaSummary struct {
	SchemaText string
	Columns    []string
}

// SchemaAgent turns a table into a SchemaSummary. It makes no outbound calls.
type SchemaAgent struct {
	MaxColumns int
}

// NewSchemaAgent returns a SchemaAgent; maxColumns <= 0 selects DefaultMaxColumns.
func NewSchemaAgent(maxColumns int) *SchemaAgent {
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}
	return &SchemaAgent{MaxColumns: maxColumns}
}

// Summarize emits one "name: type" line per retained column, e.g.
//
//	PROVNUM: object
//	Hrs_RN: float64
func (a *SchemaAgent) Summarize(t *dataset.Table) SchemaSummary {
	columns := t.ColumnNames()

	limit := a.MaxColumns
	if limit <= 0 {
		limit = DefaultMaxColumns
	}
	retained := t.Columns
	if len(retained) > limit {
		retained = retained[:limit]
	}

	lines := make([]string, 0, len(retained))
	for _, c := range retained {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, c.DType))
	}

	return SchemaSummary{
		SchemaText: strings.Join(lines, "\n"),
		Columns:    columns,
	}
}
