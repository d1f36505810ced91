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

// ValidationStatus is the verdict of a validation review.
type ValidationStatus string

const (
	StatusPass ValidationStatus = "PASS"
	StatusFail ValidationStatus = "FAIL"
	// StatusUnknown means the verdict was not extracted from the response.
	StatusUnknown ValidationStatus = "UNKNOWN"
)

// ValidationIssue is one problem reported by the reviewer.
type ValidationIssue struct {
	IssueType   string
	Description string
}

// ValidationResult carries the reviewer's response. Only RawText is
// populated: Status stays StatusUnknown and Issues stays empty, since the
// response is a model opinion in free text and is not parsed.
type ValidationResult struct {
	Status  ValidationStatus
	Issues  []ValidationIssue
	RawText string
}

const validationInstructions = `
You are a strict code reviewer for data pipelines.

You will receive:
- TARGET_SCHEMA: list of expected columns
- MAPPING_JSON: JSON with mapping meta
- TRANSFORMATION_CODE: pandas code that builds df_out

Your task:
1. Check whether all target fields are created.
2. Flag any references to non-existent columns.
3. Flag suspicious logic (e.g., missing components in aggregations).
4. Summarize issues in structured JSON with:
   - validation_result: "PASS" or "FAIL"
   - issues: list of {issue_type, description}

Be conservative and prioritize correctness.
`

// ValidationPrompt renders the validation stage prompt.
func ValidationPrompt(mappingText, targetSchemaText, transformationCode string) string {
	return fmt.Sprintf("%s\nTARGET_SCHEMA:\n%s\n\nMAPPING_JSON:\n```json\n%s\n```\n\nTRANSFORMATION_CODE:\n```python\n%s\n```\n",
		validationInstructions, targetSchemaText, mappingText, transformationCode)
}

// ValidateTransformationCode asks the model to review the generated code
// against the mapping and target schema. The result is advisory.
func ValidateTransformationCode(ctx context.Context, gen genai.Generator, model, mappingText, targetSchemaText, transformationCode string) (ValidationResult, error) {
	prompt := ValidationPrompt(mappingText, targetSchemaText, transformationCode)
	text, err := generate(ctx, gen, StageValidation, model, prompt)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{Status: StatusUnknown, RawText: text}, nil
}
