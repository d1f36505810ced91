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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/config"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/database"
	_ "github.com/GoogleCloudPlatform/etl-copilot/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/etl-copilot/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/etl-copilot/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/genai"
)

// GeneratorFactory builds the text-generation client for a command run.
type GeneratorFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (genai.LLMClient, error)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v            *viper.Viper
	cfg          *config.Config
	log          *zap.Logger
	configFile   string
	verbose      bool
	newGenerator GeneratorFactory
}

// flagKeys binds persistent flags to their viper keys.
var flagKeys = map[string]string{
	"gemini-api-key":                    "gemini_api_key",
	"model":                             "models.default",
	"mapping-model":                     "models.mapping",
	"transform-model":                   "models.transform",
	"validation-model":                  "models.validation",
	"documentation-model":               "models.documentation",
	"max-columns":                       "max_columns",
	"temperature":                       "temperature",
	"dialect":                           "database.dialect",
	"host":                              "database.host",
	"port":                              "database.port",
	"username":                          "database.username",
	"password":                          "database.password",
	"database":                          "database.name",
	"sslmode":                           "database.sslmode",
	"cloudsql-instance-connection-name": "database.cloudsql_instance_connection_name",
	"cloudsql-use-private-ip":           "database.cloudsql_use_private_ip",
}

func defaultGeneratorFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (genai.LLMClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is not configured. Please set the GEMINI_API_KEY environment variable or pass --gemini-api-key")
	}
	return genai.NewClient(ctx, genai.Config{APIKey: cfg.GeminiAPIKey, Temperature: cfg.Temperature, Logger: logger})
}

// NewRootCmd builds the command tree. A nil factory selects the Gemini client.
func NewRootCmd(factory GeneratorFactory) *cobra.Command {
	if factory == nil {
		factory = defaultGeneratorFactory
	}
	a := &app{v: config.NewViper(), newGenerator: factory}

	rootCmd := &cobra.Command{
		Use:   "etl_copilot",
		Short: "An LLM-assisted schema mapping and ETL code generation pipeline",
		Long: `etl_copilot summarizes the schema of a tabular dataset, asks a Gemini model
to map it onto a target schema, generates and reviews transformation code,
and writes a Markdown report describing the result.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initFlagsAndConfig,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Path to a YAML config file")
	pf.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")

	pf.String("gemini-api-key", "", "Gemini API key (can also be set via GEMINI_API_KEY environment variable)")
	pf.String("model", "", fmt.Sprintf("Default model for every LLM stage (default %s)", config.DefaultModel))
	pf.String("mapping-model", "", "Model override for the mapping stage")
	pf.String("transform-model", "", "Model override for the transformation stage")
	pf.String("validation-model", "", "Model override for the validation stage")
	pf.String("documentation-model", "", "Model override for the documentation stage")
	pf.Float32("temperature", config.DefaultTemperature, "Sampling temperature for every LLM stage (0 keeps the model default)")
	pf.Int("max-columns", 0, fmt.Sprintf("Maximum number of columns included in the schema summary (default %d)", config.DefaultMaxColumns))

	// Database connection flags, used by run-table and schema --table
	pf.String("dialect", "", "Database dialect (postgres, mysql, sqlserver, cloudsqlpostgres, cloudsqlmysql, cloudsqlsqlserver)")
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.String("username", "", "Database username")
	pf.String("password", "", "Database password")
	pf.String("database", "", "Database name")
	pf.String("sslmode", "", "PostgreSQL sslmode")
	pf.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	pf.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newRunTableCmd(a))
	rootCmd.AddCommand(newSchemaCmd(a))
	rootCmd.AddCommand(newCheckKeyCmd(a))
	return rootCmd
}

// initFlagsAndConfig layers defaults, config file, environment and flags into a.cfg.
func (a *app) initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger
	zap.ReplaceGlobals(logger)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

func validateDialect(dialect string) error {
	supported := database.SupportedDialects()
	sort.Strings(supported)
	for _, d := range supported {
		if dialect == d {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supported, ", "))
}

func (a *app) setupDatabase(ctx context.Context) (*database.DB, error) {
	if err := validateDialect(a.cfg.Database.Dialect); err != nil {
		return nil, err
	}
	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		a.log.Error("failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Execute runs the root command with the Gemini-backed generator.
func Execute() error {
	return NewRootCmd(nil).Execute()
}
