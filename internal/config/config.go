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
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultModel      = "gemini-1.5-flash"
	DefaultMaxColumns = 50
	DefaultOutputDir  = "docs"
	// DefaultTemperature is the sampling temperature sent with every stage call.
	DefaultTemperature = 0.3
	EnvPrefix          = "ETL_COPILOT"
)

// Config holds all configuration for the application
type Config struct {
	Models       ModelConfig
	MaxColumns   int
	OutputDir    string
	GeminiAPIKey string
	// Temperature is passed to the model on each call; 0 keeps the model's own default.
	Temperature  float32
	Database     DatabaseConfig
}

// ModelConfig names the model used by each LLM-backed stage.
// An empty stage entry falls back to Default.
type ModelConfig struct {
	Default       string
	Mapping       string
	Transform     string
	Validation    string
	Documentation string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// GetConfig returns a default configuration.
func GetConfig() *Config {
	return &Config{
		Models:      ModelConfig{Default: DefaultModel},
		MaxColumns:  DefaultMaxColumns,
		OutputDir:   DefaultOutputDir,
		Temperature: DefaultTemperature,
		Database: DatabaseConfig{
			Dialect: "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// SetDefaults registers the defaults from GetConfig on v.
func SetDefaults(v *viper.Viper) {
	d := GetConfig()
	v.SetDefault("models.default", d.Models.Default)
	v.SetDefault("models.mapping", "")
	v.SetDefault("models.transform", "")
	v.SetDefault("models.validation", "")
	v.SetDefault("models.documentation", "")
	v.SetDefault("max_columns", d.MaxColumns)
	v.SetDefault("out_dir", d.OutputDir)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("database.dialect", d.Database.Dialect)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.cloudsql_instance_connection_name", "")
	v.SetDefault("database.cloudsql_use_private_ip", false)
}

// NewViper returns a viper instance with defaults and environment lookup configured.
// Keys map to env vars as ETL_COPILOT_MODELS_MAPPING, ETL_COPILOT_MAX_COLUMNS, ...
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load builds a Config from v, reading configFile first when it is non-empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configFile, err)
		}
	}

	cfg := &Config{
		Models: ModelConfig{
			Default:       v.GetString("models.default"),
			Mapping:       v.GetString("models.mapping"),
			Transform:     v.GetString("models.transform"),
			Validation:    v.GetString("models.validation"),
			Documentation: v.GetString("models.documentation"),
		},
		MaxColumns:   v.GetInt("max_columns"),
		OutputDir:    v.GetString("out_dir"),
		GeminiAPIKey: v.GetString("gemini_api_key"),
		Temperature:  float32(v.GetFloat64("temperature")),
		Database: DatabaseConfig{
			Dialect:                        strings.ToLower(v.GetString("database.dialect")),
			Host:                           v.GetString("database.host"),
			Port:                           v.GetInt("database.port"),
			User:                           v.GetString("database.username"),
			Password:                       v.GetString("database.password"),
			DBName:                         v.GetString("database.name"),
			SSLMode:                        v.GetString("database.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("database.cloudsql_instance_connection_name"),
			UsePrivateIP:                   v.GetBool("database.cloudsql_use_private_ip"),
		},
	}

	// GEMINI_API_KEY is honored without the prefix, as the Gemini tooling documents it.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Models.Default == "" {
		cfg.Models.Default = DefaultModel
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2, got %v", cfg.Temperature)
	}
	if cfg.MaxColumns <= 0 {
		cfg.MaxColumns = DefaultMaxColumns
	}
	return cfg, nil
}

// ForStage resolves the model for a stage, falling back to Default.
func (m ModelConfig) ForStage(stage string) string {
	var model string
	switch stage {
	case "mapping":
		model = m.Mapping
	case "transform":
		model = m.Transform
	case "validation":
		model = m.Validation
	case "documentation":
		model = m.Documentation
	}
	if model == "" {
		model = m.Default
	}
	if model == "" {
		model = DefaultModel
	}
	return model
}
