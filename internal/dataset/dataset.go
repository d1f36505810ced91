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

// Package dataset loads tabular data into an in-memory Table whose columns
// carry a resolved type name.
package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/database"
)

// Type names follow the pandas dtype vocabulary so that schema text reads the
// same whether the data came from a CSV file or a notebook.
const (
	DTypeInt64   = "int64"
	DTypeFloat64 = "float64"
	DTypeBool    = "bool"
	DTypeObject  = "object"
)

// utf8BOM prefixes CSV files exported by spreadsheet tools.
const utf8BOM = "\ufeff"

// Column is a named, typed column of a Table.
type Column struct {
	Name  string
	DType string
}

// Table is an immutable in-memory dataset. Rows are stored as raw strings in
// column order.
type Table struct {
	Source  string
	Columns []Column
	Rows    [][]string
}

// ColumnNames returns the column names in their original order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// DataLoadError reports that a data source could not be read or parsed.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("data load error: %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// IsDataLoadError reports whether err is or wraps a *DataLoadError.
func IsDataLoadError(err error) bool {
	var dle *DataLoadError
	return errors.As(err, &dle)
}

// LoadCSV reads a header-row CSV file and infers a type for every column.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer file.Close()

	t, err := ReadCSV(bufio.NewReader(file))
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	t.Source = path
	return t, nil
}

// ReadCSV parses CSV from r. The first record is the header; header names are
// kept as written apart from a leading byte order mark. Rows shorter than the
// header are padded with missing values, longer rows are an error.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("failed to read record %d: expected %d fields, saw %d on line %d", len(rows)+1, len(header), len(rec), line)
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		rows = append(rows, rec)
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, DType: inferDType(rows, i)}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// LoadSQLTable reads up to rowLimit rows of a database table. Column types are
// the database's declared types.
func LoadSQLTable(ctx context.Context, src database.TableSource, tableName string, rowLimit int) (*Table, error) {
	infos, err := src.ListColumns(ctx, tableName)
	if err != nil {
		return nil, &DataLoadError{Path: tableName, Err: err}
	}

	columns := make([]Column, len(infos))
	names := make([]string, len(infos))
	for i, ci := range infos {
		columns[i] = Column{Name: ci.Name, DType: ci.DataType}
		names[i] = ci.Name
	}

	rows, err := src.SampleRows(ctx, tableName, names, rowLimit)
	if err != nil {
		return nil, &DataLoadError{Path: tableName, Err: err}
	}
	return &Table{Source: tableName, Columns: columns, Rows: rows}, nil
}

// inferDType widens bool -> int64 -> float64 -> object over the non-empty
// values of column idx. With no rows the column is object; with rows that are
// all missing it is float64, matching how pandas reads the same file.
func inferDType(rows [][]string, idx int) string {
	if len(rows) == 0 {
		return DTypeObject
	}
	isBool, isInt, isFloat := true, true, true
	seen := false

	for _, row := range rows {
		v := strings.TrimSpace(row[idx])
		if isMissing(v) {
			continue
		}
		seen = true
		if isBool && !isBoolLiteral(v) {
			isBool = false
		}
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if !isBool && !isInt && !isFloat {
			return DTypeObject
		}
	}

	switch {
	case !seen:
		return DTypeFloat64
	case isBool && !hasMissing(rows, idx):
		return DTypeBool
	case isBool:
		return DTypeObject
	case isInt && !hasMissing(rows, idx):
		return DTypeInt64
	case isInt, isFloat:
		// Integers with gaps are promoted to float64, as NaN has no int64 form.
		return DTypeFloat64
	default:
		return DTypeObject
	}
}

func hasMissing(rows [][]string, idx int) bool {
	for _, row := range rows {
		if isMissing(strings.TrimSpace(row[idx])) {
			return true
		}
	}
	return false
}

func isMissing(v string) bool {
	switch v {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL", "None":
		return true
	}
	return false
}

func isBoolLiteral(v string) bool {
	switch v {
	case "True", "False", "true", "false", "TRUE", "FALSE":
		return true
	}
	return false
}
