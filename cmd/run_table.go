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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/dataset"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/pipeline"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/utils"
)

func newRunTableCmd(a *app) *cobra.Command {
	var table string
	var rowLimit int
	var opts outputOptions

	cmd := &cobra.Command{
		Use:     "run-table",
		Short:   "Run the full pipeline over a database table",
		Long:    `Connects to a database, reads the column list and a sample of rows of one table, and runs the same stages as 'run'.`,
		Example: `./etl_copilot run-table --dialect cloudsqlpostgres --username user --password pass --database staffing --cloudsql-instance-connection-name my-project:my-region:my-instance --table pbj_daily`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return fmt.Errorf("--table is required")
			}
			target, err := utils.ReadTargetSchemaFile(opts.targetSchemaFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a.log.Info("starting run-table operation",
				zap.String("dialect", a.cfg.Database.Dialect),
				zap.String("database", a.cfg.Database.DBName),
				zap.String("table", table))

			db, err := a.setupDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			tbl, err := dataset.LoadSQLTable(ctx, db, table, rowLimit)
			if err != nil {
				return err
			}

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
	cmd.Flags().StringVar(&table, "table", "", "Table to read - MANDATORY")
	cmd.Flags().IntVar(&rowLimit, "row-limit", 1000, "Maximum number of rows to load (0 loads all rows)")
	opts.register(cmd)
	return cmd
}
