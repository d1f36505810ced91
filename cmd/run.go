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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/dataset"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/pipeline"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/utils"
)

// outputOptions are the flags shared by run and run-table.
type outputOptions struct {
	targetSchemaFile string
	outDir           string
	jsonFile         string
	dryRun           bool
	force            bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.targetSchemaFile, "target-schema", "", "File with the target field list, one field per line (defaults to the built-in 11-field staffing schema)")
	cmd.Flags().StringVarP(&o.outDir, "out_dir", "o", "", "Directory the artifacts are written to (defaults to ./docs)")
	cmd.Flags().StringVar(&o.jsonFile, "json", "", "Also write all text artifacts to this JSON file")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print the report to stdout instead of writing files")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing report without asking")
}

func newRunCmd(a *app) *cobra.Command {
	var source string
	var opts outputOptions

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the full pipeline over a CSV file",
		Long:    `Loads a CSV file, summarizes its schema, and runs the mapping, transformation, validation and documentation stages in order. Every artifact is written to the output directory.`,
		Example: `./etl_copilot run --source ./data/PBJ_Daily_Nurse_Staffing.csv --target-schema ./target_fields.txt --out_dir ./docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return fmt.Errorf("--source is required")
			}
			target, err := utils.ReadTargetSchemaFile(opts.targetSchemaFile)
			if err != nil {
				return err
			}

			a.log.Info("loading dataset", zap.String("path", source))
			tbl, err := dataset.LoadCSV(source)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := a.newGenerator(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer client.Close()

			runner := pipeline.NewRunner(client, pipeline.Config{
				Models:     a.cfg.Models,
				MaxColumns: a.cfg.MaxColumns,
				Logger:     a.log,
			})
			out, err := runner.RunTable(ctx, tbl, target)
			if err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}
			return a.writeOutputs(cmd, out, opts)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Path to the source CSV file - MANDATORY")
	opts.register(cmd)
	return cmd
}

// writeOutputs persists the artifacts of a successful run.
func (a *app) writeOutputs(cmd *cobra.Command, out *pipeline.Output, opts outputOptions) error {
	if opts.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), out.DocumentationMarkdown)
		a.log.Info("dry-run mode: no files were written")
		return nil
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = a.cfg.OutputDir
	}

	docPath, err := utils.ArtifactPath(outDir, "documentation_markdown")
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(docPath); statErr == nil && !opts.force {
		if !utils.ConfirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("%s already exists and will be overwritten.", docPath)) {
			a.log.Info("write aborted by user", zap.String("path", docPath))
			return nil
		}
	}

	paths, err := utils.WriteArtifacts(outDir, out.AsMap())
	if err != nil {
		return err
	}
	for _, p := range paths {
		a.log.Info("artifact written", zap.String("path", p))
	}

	if opts.jsonFile != "" {
		if err := utils.WriteJSON(opts.jsonFile, out.AsMap()); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
		a.log.Info("artifact bundle written", zap.String("path", opts.jsonFile))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documentation written to: %s\n", docPath)
	return nil
}
