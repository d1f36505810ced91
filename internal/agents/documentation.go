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

// DocumentationResult is the final Markdown report.
type DocumentationResult struct {
	Markdown string
}

// DocumentationInput gathers every artifact the report is written from.
type DocumentationInput struct {
	ProblemStatement   string
	SourceSchemaText   string
	TargetSchemaText   string
	MappingSummaryText string
	TransformationCode string
	ValidationText     string
}

const documentationInstructions = `
You are a technical writer for data engineering teams.

You will be given:
- A problem description (one paragraph).
- Source schema summary.
- Target schema.
- Mapping summary.
- Transformation code.
- Validation summary.

Write a clear, concise Markdown document that includes:
1. Short problem statement.
2. Overview of the solution (multi-agent ETL copilot).
3. Source vs Target schema section.
4. Mapping table or bullet list.
5. Code snippet section with the ETL code.
6. Validation summary (PASS/FAIL and main issues).
7. Short conclusion.

This document will be stored as docs/final_documentation.md in a GitHub repo.
`

// DocumentationPrompt renders the documentation stage prompt.
func DocumentationPrompt(in DocumentationInput) string {
	return fmt.Sprintf(`%s
PROBLEM STATEMENT:
%s

SOURCE SCHEMA:
%s

TARGET SCHEMA:
%s

MAPPING SUMMARY:
%s

TRANSFORMATION CODE:
`+"```python"+`
%s
`+"```"+`

VALIDATION SUMMARY:
%s
`, documentationInstructions, in.ProblemStatement, in.SourceSchemaText, in.TargetSchemaText,
		in.MappingSummaryText, in.TransformationCode, in.ValidationText)
}

// GenerateDocumentation asks the model for the seven-section Markdown report.
// The presence of the sections is not verified.
func GenerateDocumentation(ctx context.Context, gen genai.Generator, model string, in DocumentationInput) (DocumentationResult, error) {
	text, err := generate(ctx, gen, StageDocumentation, model, DocumentationPrompt(in))
	if err != nil {
		return DocumentationResult{}, err
	}
	return DocumentationResult{Markdown: text}, nil
}
