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
package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentationFileName is the conventional name of the final report.
const DocumentationFileName = "final_documentation.md"

// artifactFiles maps artifact keys to the file each one is written to.
var artifactFiles = map[string]string{
	"source_schema_text":     "source_schema.txt",
	"target_schema_text":     "target_schema.txt",
	"mapping_text":           "mapping.md",
	"transformation_code":    "transformation.py",
	"validation_text":        "validation.md",
	"documentation_markdown": DocumentationFileName,
}

// ReadTargetSchemaFile reads a target field list, one field per line. Blank
// lines and surrounding whitespace are dropped.
func ReadTargetSchemaFile(filePath string) (string, error) {
	if filePath == "" {
		return "", nil
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read target schema file '%s': %w", filePath, err)
	}

	var fields []string
	for _, line := range strings.Split(string(content), "\n") {
		field := strings.TrimSpace(line)
		if field != "" {
			fields = append(fields, field)
		}
	}
	return strings.Join(fields, "\n"), nil
}

// ArtifactPath returns where key would be written under dir.
func ArtifactPath(dir, key string) (string, error) {
	name, ok := artifactFiles[key]
	if !ok {
		return "", fmt.Errorf("unknown artifact: %s", key)
	}
	return filepath.Join(dir, name), nil
}

// WriteArtifacts writes each artifact to its file under dir, creating dir if
// needed. It returns the written paths in sorted order.
func WriteArtifacts(dir string, artifacts map[string]string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", dir, err)
	}

	keys := make([]string, 0, len(artifacts))
	for k := range artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		path, err := ArtifactPath(dir, key)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(artifacts[key]), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes v as indented JSON to filePath.
func WriteJSON(filePath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.WriteFile(filePath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ConfirmAction prompts on out and reads a yes/no answer from in.
func ConfirmAction(in io.Reader, out io.Writer, actionDescription string) bool {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "\n-------------------------------------------------------------\n")
	fmt.Fprintf(out, "%s\n", actionDescription)
	fmt.Fprint(out, "Do you want to continue? (yes/no): ")
	text, _ := reader.ReadString('\n')
	action := strings.TrimSpace(strings.ToLower(text))
	return action == "yes" || action == "y"
}
