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

// TransformResult holds the generated transformation code. The text is
// neither compiled nor executed here and may not be valid code.
type TransformResult struct {
	Code string
}

const transformInstructions = `
You are a senior Python data engineer.

You are given:
- A logical mapping (in JSON) from source columns to target fields.
- The target schema (list of fields in final DataFrame).

Write clean, idiomatic pandas code that:

1. Assumes there is an input DataFrame named ` + "`df`" + `.
2. Creates a new DataFrame named ` + "`df_out`" + `.
3. Renames or derives columns to produce ALL target fields.
4. Uses .fillna(0) for numeric aggregates where appropriate.
5. Avoids referencing any column that does not exist in the mapping.
6. Ends with df_out containing ONLY the target columns in the correct order.

Return ONLY a Python code block; no explanation.
`

// TransformPrompt renders the transformation stage prompt.
func TransformPrompt(mappingText, targetSchemaText string) string {
	return fmt.Sprintf("%s\nTARGET_SCHEMA:\n%s\n\nMAPPING_JSON:\n```json\n%s\n```\n",
		transformInstructions, targetSchemaText, mappingText)
}

// GenerateTransformationCode asks the model for code turning df into df_out.
// mappingText is forwarded as-is even if it lacks a parseable JSON block.
func GenerateTransformationCode(ctx context.Context, gen genai.Generator, model, mappingText, targetSchemaText string) (TransformResult, error) {
	text, err := generate(ctx, gen, StageTransform, model, TransformPrompt(mappingText, targetSchemaText))
	if err != nil {
		return TransformResult{}, err
	}
	return TransformResult{Code: text}, nil
}
