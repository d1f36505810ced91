package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/config"
)

// Mock DialectHandler implementation
type mockDialectHandler struct {
	createCloudSQLPoolFn func(cfg config.DatabaseConfig) (*sql.DB, error)
	createStandardPoolFn func(cfg config.DatabaseConfig) (*sql.DB, error)
	listColumnsFn        func(db *DB, tableName string) ([]ColumnInfo, error)

	cloudPoolCalls    int
	standardPoolCalls int
}

func (m *mockDialectHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	m.cloudPoolCalls++
	if m.createCloudSQLPoolFn != nil {
		return m.createCloudSQLPoolFn(cfg)
	}
	mockDb, _, _ := sqlmock.New(sqlmock.MonitorPingsOption(false))
	return mockDb, nil
}

func (m *mockDialectHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	m.standardPoolCalls++
	if m.createStandardPoolFn != nil {
		return m.createStandardPoolFn(cfg)
	}
	mockDb, _, _ := sqlmock.New(sqlmock.MonitorPingsOption(false))
	return mockDb, nil
}

func (m *mockDialectHandler) QuoteIdentifier(name string) string { return fmt.Sprintf(`"%s"`, name) }

func (m *mockDialectHandler) ListColumns(ctx context.Context, db *DB, tableName string) ([]ColumnInfo, error) {
	if m.listColumnsFn != nil {
		return m.listColumnsFn(db, tableName)
	}
	return []ColumnInfo{{Name: "col1", DataType: "int"}}, nil
}

func (m *mockDialectHandler) SelectQuery(quotedTable string, quotedColumns []string, limit int) string {
	return LimitSelect(quotedTable, quotedColumns, limit)
}

func TestRegisterAndGetDialectHandler(t *testing.T) {
	const testDialect = "testdialect_register"

	_, err := GetDialectHandler(testDialect)
	require.Error(t, err)

	h1 := &mockDialectHandler{}
	RegisterDialectHandler(testDialect, h1)
	got, err := GetDialectHandler(testDialect)
	require.NoError(t, err)
	assert.Same(t, h1, got)

	h2 := &mockDialectHandler{}
	RegisterDialectHandler(testDialect, h2)
	got, err = GetDialectHandler(testDialect)
	require.NoError(t, err)
	assert.Same(t, h2, got, "re-registering overwrites the handler")
	assert.Contains(t, SupportedDialects(), testDialect)
}

func TestNewSelectsPoolByDialect(t *testing.T) {
	standard := &mockDialectHandler{}
	cloud := &mockDialectHandler{}
	RegisterDialectHandler("teststd", standard)
	RegisterDialectHandler("cloudsqltest", cloud)

	db, err := New(context.Background(), config.DatabaseConfig{Dialect: "teststd"})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 1, standard.standardPoolCalls)
	assert.Equal(t, 0, standard.cloudPoolCalls)

	db2, err := New(context.Background(), config.DatabaseConfig{Dialect: "cloudsqltest"})
	require.NoError(t, err)
	defer db2.Close()
	assert.Equal(t, 1, cloud.cloudPoolCalls)
}

func TestNewErrors(t *testing.T) {
	_, err := New(context.Background(), config.DatabaseConfig{Dialect: "does-not-exist"})
	assert.ErrorContains(t, err, "unsupported database dialect")

	failing := &mockDialectHandler{
		createStandardPoolFn: func(cfg config.DatabaseConfig) (*sql.DB, error) {
			return nil, errors.New("boom")
		},
	}
	RegisterDialectHandler("testfailing", failing)
	_, err = New(context.Background(), config.DatabaseConfig{Dialect: "testfailing"})
	assert.ErrorContains(t, err, "failed to create database pool")

	pingFails := &mockDialectHandler{
		createStandardPoolFn: func(cfg config.DatabaseConfig) (*sql.DB, error) {
			mockDb, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			mock.ExpectPing().WillReturnError(errors.New("unreachable"))
			return mockDb, nil
		},
	}
	RegisterDialectHandler("testping", pingFails)
	_, err = New(context.Background(), config.DatabaseConfig{Dialect: "testping"})
	assert.ErrorContains(t, err, "ping failed")
}

func TestSampleRows(t *testing.T) {
	mockDb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db := &DB{Pool: mockDb, Handler: &mockDialectHandler{}}
	defer db.Close()

	mock.ExpectQuery(`SELECT "id", "name" FROM "users" LIMIT 2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("1", "alice").
			AddRow("2", nil))

	rows, err := db.SampleRows(context.Background(), "users", []string{"id", "name"}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "alice"}, {"2", ""}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleRowsQueryError(t *testing.T) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := &DB{Pool: mockDb, Handler: &mockDialectHandler{}}
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))
	_, err = db.SampleRows(context.Background(), "missing", []string{"a"}, 0)
	assert.ErrorContains(t, err, "error querying rows for table missing")
}

func TestSampleRowsNoColumns(t *testing.T) {
	db := &DB{Pool: &sql.DB{}, Handler: &mockDialectHandler{}}
	rows, err := db.SampleRows(context.Background(), "t", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUninitializedDB(t *testing.T) {
	db := &DB{}
	_, err := db.ListColumns(context.Background(), "t")
	assert.Error(t, err)
	_, err = db.SampleRows(context.Background(), "t", []string{"a"}, 1)
	assert.Error(t, err)
	assert.NoError(t, db.Close())
}

func TestLimitSelect(t *testing.T) {
	assert.Equal(t, `SELECT "a", "b" FROM "t"`, LimitSelect(`"t"`, []string{`"a"`, `"b"`}, 0))
	got := LimitSelect("`t`", []string{"`a`"}, 5)
	assert.True(t, strings.HasSuffix(got, "LIMIT 5"), got)
}
