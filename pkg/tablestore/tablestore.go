package tablestore

import (
	"context"
	"errors"
	"strings"
)

// ErrTableNotFound is returned when no table matches the requested name
var ErrTableNotFound = errors.New("table not found")

// ErrTableExists is returned by CreateTable when the name is already taken
var ErrTableExists = errors.New("table already exists")

// ErrRowOutOfRange is returned when a data row index does not exist
var ErrRowOutOfRange = errors.New("row index out of range")

// Table is a snapshot of one sheet/tab.
// Row cells are one of: string, float64, bool, time.Time (date typed) or nil (empty).
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Store abstracts a spreadsheet as a set of named tables.
// Table names are matched case-insensitively after trimming; data row indexes are zero-based and
// exclude the header row.
type Store interface {
	ListTableNames(ctx context.Context) ([]string, error)
	GetTable(ctx context.Context, name string) (*Table, error)
	CreateTable(ctx context.Context, name string, header []string) error
	AppendRow(ctx context.Context, name string, row []interface{}) error
	UpdateRow(ctx context.Context, name string, index int, row []interface{}) error
	DeleteRow(ctx context.Context, name string, index int) error
}

// NormalizeName trims and case-folds a table or volunteer name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ResolveName returns the stored name matching want, if any
func ResolveName(names []string, want string) (string, bool) {
	key := NormalizeName(want)
	if key == "" {
		return "", false
	}
	for _, name := range names {
		if NormalizeName(name) == key {
			return name, true
		}
	}
	return "", false
}

// Lookup resolves a table name against the store's current tables
func Lookup(ctx context.Context, store Store, name string) (string, bool, error) {
	names, err := store.ListTableNames(ctx)
	if err != nil {
		return "", false, err
	}
	resolved, ok := ResolveName(names, name)
	return resolved, ok, nil
}

// EnsureTable creates the table with header if no table with that name exists yet.
// Returns the stored name of the table.
func EnsureTable(ctx context.Context, store Store, name string, header []string) (string, error) {
	resolved, ok, err := Lookup(ctx, store, name)
	if err != nil {
		return "", err
	}
	if ok {
		return resolved, nil
	}
	if err := store.CreateTable(ctx, name, header); err != nil && !errors.Is(err, ErrTableExists) {
		return "", err
	}
	return name, nil
}

// IsEmpty reports whether a cell counts as empty (nil, "", 0 or false)
func IsEmpty(cell interface{}) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case bool:
		return !v
	}
	return false
}

// CellAt returns the cell at index or nil when the row is shorter
func CellAt(row []interface{}, index int) interface{} {
	if index < 0 || index >= len(row) {
		return nil
	}
	return row[index]
}
