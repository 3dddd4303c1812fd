package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/volunteer-tracker/pkg/core/format"
	"github.com/jakechorley/volunteer-tracker/pkg/tablestore"
)

// DecodeRows maps every data row of table onto a T.
// Columns are matched to `ssql_header` tags case-insensitively; columns without a field are ignored.
func DecodeRows[T any](table *tablestore.Table) ([]T, error) {
	var model T
	columns, err := ColumnsOf(model)
	if err != nil {
		return nil, err
	}

	indexes := columnIndexes(table.Header, columns)
	t := reflect.TypeOf(model)

	results := make([]T, 0, len(table.Rows))
	for rowIdx, row := range table.Rows {
		result := reflect.New(t).Elem()

		for i, col := range columns {
			colIdx := indexes[i]
			if colIdx < 0 {
				continue
			}

			cellValue := tablestore.CellAt(row, colIdx)
			if cellValue == nil {
				continue
			}

			if err := setFieldValue(result.Field(col.Field), cellValue); err != nil {
				// +2: one for the header, one for 1-based sheet rows
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+2, col.Name, err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// EncodeRow lays model out in the column order of header, on top of base.
// Cells of base under headers with no matching field are kept; pass a nil base for a new row.
func EncodeRow(header []string, base []interface{}, model interface{}) ([]interface{}, error) {
	columns, err := ColumnsOf(model)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	size := len(header)
	if len(base) > size {
		size = len(base)
	}
	row := make([]interface{}, size)
	copy(row, base)

	for i, colIdx := range columnIndexes(header, columns) {
		if colIdx < 0 {
			continue
		}
		row[colIdx] = cellValue(columns[i], v.Field(columns[i].Field))
	}

	return row, nil
}

// columnIndexes returns, for each column, the index of its header cell or -1
func columnIndexes(header []string, columns []Column) []int {
	indexes := make([]int, len(columns))
	for i, col := range columns {
		indexes[i] = -1
		for j, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), col.Name) {
				indexes[i] = j
				break
			}
		}
	}
	return indexes
}

// cellValue converts a field to the cell written to the table.
// Timestamp columns holding an RFC3339 string are written as time.Time so backends store a real date cell.
func cellValue(col Column, field reflect.Value) interface{} {
	if col.Type == TypeTimestamp {
		if t, err := time.Parse(time.RFC3339, field.String()); err == nil {
			return t.UTC()
		}
	}

	switch field.Kind() {
	case reflect.String:
		return field.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int())
	case reflect.Float32, reflect.Float64:
		return field.Float()
	case reflect.Bool:
		return field.Bool()
	}
	return field.Interface()
}

// setFieldValue converts a table cell to the field's Go type.
// Cells may be string, float64, bool or time.Time depending on the backend.
func setFieldValue(field reflect.Value, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(format.String(cellValue))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		cellStr := format.String(cellValue)
		if cellStr == "" {
			field.SetInt(0)
		} else {
			intVal, err := strconv.ParseInt(cellStr, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse int: %w", err)
			}
			field.SetInt(intVal)
		}

	case reflect.Float32, reflect.Float64:
		cellStr := format.String(cellValue)
		if cellStr == "" {
			field.SetFloat(0)
		} else {
			floatVal, err := strconv.ParseFloat(cellStr, 64)
			if err != nil {
				return fmt.Errorf("failed to parse float: %w", err)
			}
			field.SetFloat(floatVal)
		}

	case reflect.Bool:
		if b, ok := cellValue.(bool); ok {
			field.SetBool(b)
			return nil
		}
		cellStr := format.String(cellValue)
		if cellStr == "" {
			field.SetBool(false)
		} else {
			boolVal, err := strconv.ParseBool(cellStr)
			if err != nil {
				return fmt.Errorf("failed to parse bool: %w", err)
			}
			field.SetBool(boolVal)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
