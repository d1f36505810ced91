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

	"github.com/GoogleCloudPlatform/etl-copilot/internal/agents"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/dataset"
)

func newSchemaCmd(a *app) *cobra.Command {
	var source, table string

	cmd := &cobra.Command{
		Use:     "schema",
		Short:   "Print the schema summary of a CSV file or database table",
		Long:    `Prints the "name: type" summary that the mapping stage receives. No model is called.`,
		Example: `./etl_copilot schema --source ./data/PBJ_Daily_Nurse_Staffing.csv --max-columns 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (source == "") == (table == "") {
				return fmt.Errorf("exactly one of --source or --table is required")
			}

			var tbl *dataset.Table
			var err error
			if source != "" {
				tbl, err = dataset.LoadCSV(source)
			} else {
				db, dbErr := a.setupDatabase(cmd.Context())
				if dbErr != nil {
					return dbErr
				}
				defer db.Close()
				tbl, err = dataset.LoadSQLTable(cmd.Context(), db, table, 1)
			}
			if err != nil {
				return err
			}

			summary := agents.NewSchemaAgent(a.cfg.MaxColumns).Summarize(tbl)
			fmt.Fprintln(cmd.OutOrStdout(), summary.SchemaText)
			if len(summary.Columns) > a.cfg.MaxColumns {
				fmt.Fprintf(cmd.ErrOrStderr(), "(showing %d of %d columns)\n", a.cfg.MaxColumns, len(summary.Columns))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "Path to a CSV file")
	cmd.Flags().StringVar(&table, "table", "", "Database table to summarize instead of a CSV file")
	return cmd
}
