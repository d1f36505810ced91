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
)

func newCheckKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-key",
		Short: "Verify that the configured Gemini API key works",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.newGenerator(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.IsAPIKeyValid(ctx); err != nil {
				return fmt.Errorf("Gemini API key is invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Gemini API key is valid.")
			return nil
		},
	}
}
