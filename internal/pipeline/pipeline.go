// File: internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/agents"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/config"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/dataset"
	"github.com/GoogleCloudPlatform/etl-copilot/internal/genai"
)

// DefaultTargetSchema is the nursing-home staffing layout used when no target is given.
var DefaultTargetSchema = strings.Join([]string{
	"facility_id",
	"facility_name",
	"state",
	"county_name",
	"quarter",
	"work_date",
	"resident_census",
	"rn_hours_total",
	"lpn_hours_total",
	"cna_hours_total",
	"total_nursing_hours",
}, "\n")

// ProblemStatement is the fixed framing passed to the documentation stage.
const ProblemStatement = `Many teams receive raw tabular data with inconsistent schemas across files
and sources. They must repeatedly map columns, write pandas ETL code,
validate logic, and document the pipeline. This Multi-Agent ETL Copilot
automates those steps using LLM-powered agents.`

// Output bundles every artifact of one run. It is built once and not modified.
type Output struct {
	Table                 *dataset.Table
	Schema                agents.SchemaSummary
	SourceSchemaText      string
	TargetSchemaText      string
	MappingText           string
	TransformationCode    string
	Validation            agents.ValidationResult
	ValidationText        string
	DocumentationMarkdown string
}

// AsMap returns the text artifacts keyed by name, for JSON export.
func (o *Output) AsMap() map[string]string {
	return map[string]string{
		"source_schema_text":     o.SourceSchemaText,
		"target_schema_text":     o.TargetSchemaText,
		"mapping_text":           o.MappingText,
		"transformation_code":    o.TransformationCode,
		"validation_text":        o.ValidationText,
		"documentation_markdown": o.DocumentationMarkdown,
	}
}

// Runner executes the five stages strictly in order. A Runner holds no
// per-run state; concurrent runs are safe only if Generator is.
type Runner struct {
	gen        genai.Generator
	models     config.ModelConfig
	maxColumns int
	log        *zap.Logger
}

// Config holds the Runner settings.
type Config struct {
	Models     config.ModelConfig
	MaxColumns int
	Logger     *zap.Logger
}

func NewRunner(gen genai.Generator, cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		gen:        gen,
		models:     cfg.Models,
		maxColumns: cfg.MaxColumns,
		log:        logger,
	}
}

// Run loads csvPath and runs the pipeline over it. A load failure is
// returned as *dataset.DataLoadError before any outbound call.
func (r *Runner) Run(ctx context.Context, csvPath, targetSchemaText string) (*Output, error) {
	r.log.Info("loading dataset", zap.String("path", csvPath))
	tbl, err := dataset.LoadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	return r.RunTable(ctx, tbl, targetSchemaText)
}

// RunTable runs the stages over an already loaded table. An empty
// targetSchemaText selects DefaultTargetSchema. On any stage failure the
// partial results are discarded and the error is returned.
func (r *Runner) RunTable(ctx context.Context, tbl *dataset.Table, targetSchemaText string) (*Output, error) {
	if tbl == nil {
		return nil, &dataset.DataLoadError{Path: "<nil>", Err: fmt.Errorf("no table provided")}
	}
	if strings.TrimSpace(targetSchemaText) == "" {
		targetSchemaText = DefaultTargetSchema
	}

	startTime := time.Now()
	r.log.Info("starting pipeline",
		zap.String("source", tbl.Source),
		zap.Int("columns", len(tbl.Columns)),
		zap.Int("rows", tbl.NumRows()))

	// 1. Schema
	summary := agents.NewSchemaAgent(r.maxColumns).Summarize(tbl)
	sourceSchemaText := summary.SchemaText
	r.log.Debug("schema summarized", zap.Int("columns", len(summary.Columns)))

	// 2. Mapping
	var mapping agents.MappingResult
	err := r.stage(agents.StageMapping, func(model string) (err error) {
		mapping, err = agents.GenerateMapping(ctx, r.gen, model, sourceSchemaText, targetSchemaText)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Transformation; the whole mapping text stands in for mapping_json.
	var transform agents.TransformResult
	err = r.stage(agents.StageTransform, func(model string) (err error) {
		transform, err = agents.GenerateTransformationCode(ctx, r.gen, model, mapping.RawText, targetSchemaText)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 4. Validation
	var validation agents.ValidationResult
	err = r.stage(agents.StageValidation, func(model string) (err error) {
		validation, err = agents.ValidateTransformationCode(ctx, r.gen, model, mapping.RawText, targetSchemaText, transform.Code)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 5. Documentation
	var doc agents.DocumentationResult
	err = r.stage(agents.StageDocumentation, func(model string) (err error) {
		doc, err = agents.GenerateDocumentation(ctx, r.gen, model, agents.DocumentationInput{
			ProblemStatement:   ProblemStatement,
			SourceSchemaText:   sourceSchemaText,
			TargetSchemaText:   targetSchemaText,
			MappingSummaryText: mapping.RawText,
			TransformationCode: transform.Code,
			ValidationText:     validation.RawText,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("pipeline completed", zap.Duration("elapsed", time.Since(startTime)))
	return &Output{
		Table:                 tbl,
		Schema:                summary,
		SourceSchemaText:      sourceSchemaText,
		TargetSchemaText:      targetSchemaText,
		MappingText:           mapping.RawText,
		TransformationCode:    transform.Code,
		Validation:            validation,
		ValidationText:        validation.RawText,
		DocumentationMarkdown: doc.Markdown,
	}, nil
}

// stage resolves the model for name, runs fn and logs the outcome.
func (r *Runner) stage(name string, fn func(model string) error) error {
	model := r.models.ForStage(name)
	start := time.Now()
	r.log.Info("stage started", zap.String("stage", name), zap.String("model", model))
	if err := fn(model); err != nil {
		r.log.Error("stage failed", zap.String("stage", name), zap.String("model", model), zap.Error(err))
		return fmt.Errorf("%s stage failed: %w", name, err)
	}
	r.log.Info("stage completed", zap.String("stage", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}
