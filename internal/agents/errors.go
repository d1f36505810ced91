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
	"errors"
	"fmt"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/genai"
)

// Stage names, used in errors, logs and per-stage model configuration.
const (
	StageSchema        = "schema"
	StageMapping       = "mapping"
	StageTransform     = "transform"
	StageValidation    = "validation"
	StageDocumentation = "documentation"
)

// ErrExternalService represents a failed call to the text-generation service.
// It is never retried.
type ErrExternalService struct {
	Stage string
	Model string
	Err   error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error in %s stage (model %s): %v", e.Stage, e.Model, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// IsExternalServiceError reports whether err is or wraps an *ErrExternalService.
func IsExternalServiceError(err error) bool {
	var ese *ErrExternalService
	return errors.As(err, &ese)
}

// generate performs the single outbound call of a stage.
func generate(ctx context.Context, gen genai.Generator, stage, model, prompt string) (string, error) {
	if gen == nil {
		return "", &ErrExternalService{Stage: stage, Model: model, Err: errors.New("no text generator configured")}
	}
	text, err := gen.Generate(ctx, model, prompt)
	if err != nil {
		return "", &ErrExternalService{Stage: stage, Model: model, Err: err}
	}
	return text, nil
}
