package sheetssql

import (
	"fmt"
	"reflect"
)

// Column types accepted in `ssql_type` tags
const (
	TypeText      = "text"
	TypeInt       = "int"
	TypeFloat     = "float"
	TypeBool      = "bool"
	TypeTimestamp = "timestamp"
)

var knownTypes = map[string]bool{
	TypeText:      true,
	TypeInt:       true,
	TypeFloat:     true,
	TypeBool:      true,
	TypeTimestamp: true,
}

// Column describes one tagged struct field
type Column struct {
	Name  string
	Type  string
	Field int
}

// ColumnsOf reflects the `ssql_header` / `ssql_type` tags of a struct.
// Every exported field must carry both tags.
func ColumnsOf(model interface{}) ([]Column, error) {
	t := reflect.TypeOf(model)

	// Handle pointer to struct
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %v", t)
	}

	columns := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		header := field.Tag.Get("ssql_header")
		if header == "" {
			return nil, fmt.Errorf("field %s.%s missing 'ssql_header' tag", t.Name(), field.Name)
		}

		typ := field.Tag.Get("ssql_type")
		if typ == "" {
			return nil, fmt.Errorf("field %s.%s missing 'ssql_type' tag", t.Name(), field.Name)
		}
		if !knownTypes[typ] {
			return nil, fmt.Errorf("field %s.%s has unknown ssql_type %q", t.Name(), field.Name, typ)
		}
		if typ == TypeTimestamp && field.Type.Kind() != reflect.String {
			return nil, fmt.Errorf("field %s.%s: timestamp columns must be strings", t.Name(), field.Name)
		}

		columns = append(columns, Column{Name: header, Type: typ, Field: i})
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("struct %s has no fields", t.Name())
	}

	return columns, nil
}

// HeaderOf returns the header row a table for model should be created with
func HeaderOf(model interface{}) ([]string, error) {
	columns, err := ColumnsOf(model)
	if err != nil {
		return nil, err
	}
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	return header, nil
}
