package sqlserver

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/database"
)

func TestSQLServerQuoteIdentifier(t *testing.T) {
	h := sqlServerHandler{}
	assert.Equal(t, "[orders]", h.QuoteIdentifier("orders"))
	assert.Equal(t, "[a]]b]", h.QuoteIdentifier("a]b"))
}

func TestSQLServerSelectQuery(t *testing.T) {
	h := sqlServerHandler{}
	assert.Equal(t, "SELECT TOP 5 [a], [b] FROM [t]", h.SelectQuery("[t]", []string{"[a]", "[b]"}, 5))
	assert.Equal(t, "SELECT [a] FROM [t]", h.SelectQuery("[t]", []string{"[a]"}, 0))
}

func TestSQLServerListColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := &database.DB{Pool: mockDB, Handler: sqlServerHandler{}}

	mock.ExpectQuery(`SELECT COLUMN_NAME, DATA_TYPE\s+FROM INFORMATION_SCHEMA\.COLUMNS`).
		WithArgs(sql.Named("tableName", "facilities")).
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE"}).
			AddRow("facility_id", "nvarchar").
			AddRow("census", "int"))

	cols, err := db.ListColumns(context.Background(), "facilities")
	require.NoError(t, err)
	assert.Equal(t, []database.ColumnInfo{
		{Name: "facility_id", DataType: "nvarchar"},
		{Name: "census", DataType: "int"},
	}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}
