package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/etl-copilot/internal/database"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVInfersTypes(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"PROVNUM,PROVNAME,Hrs_RN,MDScensus,Active,Missing,Sparse",
		"015009,BURNS NURSING HOME,8.5,51,True,,3",
		"015010,COOSA VALLEY,12,48,False,,",
	}, "\n"))

	tbl, err := LoadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []Column{
		{Name: "PROVNUM", DType: DTypeInt64},
		{Name: "PROVNAME", DType: DTypeObject},
		{Name: "Hrs_RN", DType: DTypeFloat64},
		{Name: "MDScensus", DType: DTypeInt64},
		{Name: "Active", DType: DTypeBool},
		{Name: "Missing", DType: DTypeFloat64},
		{Name: "Sparse", DType: DTypeFloat64},
	}, tbl.Columns)
	assert.Equal(t, []string{"PROVNUM", "PROVNAME", "Hrs_RN", "MDScensus", "Active", "Missing", "Sparse"}, tbl.ColumnNames())
}

func TestInferDType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"integers", []string{"1", "-2", "30"}, DTypeInt64},
		{"floats", []string{"1.5", "2"}, DTypeFloat64},
		{"int with gap", []string{"1", "NA"}, DTypeFloat64},
		{"mixed", []string{"1", "abc"}, DTypeObject},
		{"bools", []string{"true", "FALSE"}, DTypeBool},
		{"bool with gap", []string{"true", ""}, DTypeObject},
		{"all missing", []string{"", "NaN"}, DTypeFloat64},
		{"no rows", nil, DTypeObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.values))
			for i, v := range tt.values {
				rows[i] = []string{v}
			}
			assert.Equal(t, tt.want, inferDType(rows, 0))
		})
	}
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
		assert.True(t, IsDataLoadError(err))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, ""))
		var dle *DataLoadError
		require.ErrorAs(t, err, &dle)
		assert.Contains(t, dle.Error(), "no columns to parse")
	})

	t.Run("row longer than header", func(t *testing.T) {
		_, err := LoadCSV(writeCSV(t, "a,b\n1,2\n1,2,3\n"))
		require.True(t, IsDataLoadError(err))
		assert.Contains(t, err.Error(), "expected 2 fields, saw 3")
	})
}

func TestReadCSVPadsShortRows(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n4,5\n"))
	require.NoError(t, err)

	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"4", "5", ""}, tbl.Rows[1])
	assert.Equal(t, []Column{
		{Name: "a", DType: DTypeInt64},
		{Name: "b", DType: DTypeInt64},
		{Name: "c", DType: DTypeFloat64},
	}, tbl.Columns)
}

func TestReadCSVHeaderNames(t *testing.T) {
	t.Run("byte order mark is stripped", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("\ufeffid,name\n1,x\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())

		tbl, err = ReadCSV(strings.NewReader("\ufeff\"id\",name\n1,x\n"))
		require.NoError(t, err)
		assert.Equal(t, "id", tbl.Columns[0].Name)
	})

	t.Run("whitespace is kept", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("PROVNUM, Hrs_RN\n1,2.5\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"PROVNUM", " Hrs_RN"}, tbl.ColumnNames())
	})
}

func TestHeaderOnlyCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("id,name\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, []Column{{Name: "id", DType: DTypeObject}, {Name: "name", DType: DTypeObject}}, tbl.Columns)
}

type mockTableSource struct {
	mock.Mock
}

func (m *mockTableSource) ListColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	args := m.Called(tableName)
	cols, _ := args.Get(0).([]database.ColumnInfo)
	return cols, args.Error(1)
}

func (m *mockTableSource) SampleRows(ctx context.Context, tableName string, columns []string, limit int) ([][]string, error) {
	args := m.Called(tableName, columns, limit)
	rows, _ := args.Get(0).([][]string)
	return rows, args.Error(1)
}

func TestLoadSQLTable(t *testing.T) {
	src := new(mockTableSource)
	src.On("ListColumns", "staffing").Return([]database.ColumnInfo{
		{Name: "PROVNUM", DataType: "text"},
		{Name: "Hrs_RN", DataType: "double precision"},
	}, nil)
	src.On("SampleRows", "staffing", []string{"PROVNUM", "Hrs_RN"}, 100).Return([][]string{{"015009", "8.5"}}, nil)

	tbl, err := LoadSQLTable(context.Background(), src, "staffing", 100)
	require.NoError(t, err)
	assert.Equal(t, "staffing", tbl.Source)
	assert.Equal(t, []Column{{Name: "PROVNUM", DType: "text"}, {Name: "Hrs_RN", DType: "double precision"}}, tbl.Columns)
	assert.Equal(t, 1, tbl.NumRows())
	src.AssertExpectations(t)
}

func TestLoadSQLTableErrors(t *testing.T) {
	src := new(mockTableSource)
	src.On("ListColumns", "gone").Return(nil, errors.New("table gone not found or has no columns"))

	_, err := LoadSQLTable(context.Background(), src, "gone", 10)
	assert.True(t, IsDataLoadError(err))
	src.AssertNotCalled(t, "SampleRows", mock.Anything, mock.Anything, mock.Anything)

	src2 := new(mockTableSource)
	src2.On("ListColumns", "t").Return([]database.ColumnInfo{{Name: "a", DataType: "int"}}, nil)
	src2.On("SampleRows", "t", []string{"a"}, 10).Return(nil, errors.New("permission denied"))
	_, err = LoadSQLTable(context.Background(), src2, "t", 10)
	assert.True(t, IsDataLoadError(err))
}
