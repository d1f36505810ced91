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
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/config"
)

// TableSource is the read-only view of a database that the dataset loader needs.
type TableSource interface {
	ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error)
	SampleRows(ctx context.Context, tableName string, columns []string, limit int) ([][]string, error)
}

var _ TableSource = (*DB)(nil)

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// ColumnInfo holds basic information about a database column.
type ColumnInfo struct {
	Name     string
	DataType string
}

// DialectHandler hides the SQL differences between supported engines.
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error)
	// SelectQuery returns a statement selecting the quoted columns from the
	// quoted table, capped at limit rows when limit > 0.
	SelectQuery(quotedTable string, quotedColumns []string, limit int) string
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		zap.L().Warn("dialect handler is being overwritten", zap.String("dialect", dialect))
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// SupportedDialects lists the registered dialect names.
func SupportedDialects() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialectHandlers))
	for name := range dialectHandlers {
		names = append(names, name)
	}
	return names
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	zap.L().Warn("attempted to close a nil database connection pool")
	return nil
}

func (db *DB) ListColumns(ctx context.Context, tableName string) ([]ColumnInfo, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.ListColumns(ctx, db, tableName)
}

// SampleRows reads up to limit rows of the named columns, rendering every value
// as a string. NULL becomes the empty string.
func (db *DB) SampleRows(ctx context.Context, tableName string, columns []string, limit int) ([][]string, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	if len(columns) == 0 {
		return [][]string{}, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = db.Handler.QuoteIdentifier(c)
	}
	query := db.Handler.SelectQuery(db.Handler.QuoteIdentifier(tableName), quoted, limit)

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying rows for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning row of table %s: %w", tableName, err)
		}
		record := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of table %s: %w", tableName, err)
	}
	return result, nil
}

// LimitSelect builds "SELECT ... FROM ... LIMIT n", shared by the dialects that support LIMIT.
func LimitSelect(quotedTable string, quotedColumns []string, limit int) string {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quotedColumns, ", "), quotedTable)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query
}

// QueryColumns runs a (name, data_type) catalog query and collects the result in order.
func QueryColumns(ctx context.Context, db *DB, tableName, query string, args ...interface{}) ([]ColumnInfo, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var colInfo ColumnInfo
		if err := rows.Scan(&colInfo.Name, &colInfo.DataType); err != nil {
			return nil, fmt.Errorf("error scanning column name and data type: %w", err)
		}
		columns = append(columns, colInfo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableName)
	}
	return columns, nil
}
