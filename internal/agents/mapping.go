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
	"context"
	"fmt"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/genai"
)

// MappingResult is the model's mapping proposal, kept verbatim. It normally
// holds a Markdown table and a mapping_json block but nothing checks that.
type MappingResult struct {
	RawText string
}

const mappingInstructions = `
You are a senior data engineer helping to map a SOURCE dataset to a TARGET schema.

You will be given:
- SOURCE_SCHEMA: list of source columns with dtypes
- TARGET_SCHEMA: list of target field names

Your job:
1. For each target field, decide how it can be produced from the source columns.
2. Classify each mapping as one of:
   - DIRECT: single source column maps directly to target.
   - DERIVED: computed from several source columns.
   - NO_MATCH: cannot be produced from the given source.
3. Return the result as a clear, human-readable table in Markdown,
   followed by a JSON block called ` + "`mapping_json`" + ` that can be used by code.

Keep mappings conservative. Do not invent columns that do not exist
in the source schema.
`

// MappingPrompt renders the mapping stage prompt.
func MappingPrompt(sourceSchemaText, targetSchemaText string) string {
	return fmt.Sprintf(`%s
SOURCE_SCHEMA:
%s

TARGET_SCHEMA:
%s

Please respond with:
1. A Markdown table mapping target -> source with mapping_type and notes.
2. A JSON object named `+"`mapping_json`"+` that downstream code can parse.
`, mappingInstructions, sourceSchemaText, targetSchemaText)
}

// GenerateMapping asks the model to map the source schema onto the target field list.
func GenerateMapping(ctx context.Context, gen genai.Generator, model, sourceSchemaText, targetSchemaText string) (MappingResult, error) {
	text, err := generate(ctx, gen, StageMapping, model, MappingPrompt(sourceSchemaText, targetSchemaText))
	if err != nil {
		return MappingResult{}, err
	}
	return MappingResult{RawText: text}, nil
}
