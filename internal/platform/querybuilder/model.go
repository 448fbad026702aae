package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds a single-row INSERT from the exported `db`-tagged
// fields of model. suffix is appended as is (ON CONFLICT, RETURNING).
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	columns, values, err := taggedColumns(model)
	if err != nil {
		return "", nil, err
	}

	var (
		buf strings.Builder
		b   bindings
	)
	buf.WriteString("INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (")
	for i, v := range values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(b.bind(v))
	}
	buf.WriteString(")")
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		buf.WriteString(" " + suffix)
	}
	return buf.String(), b.values, nil
}

func taggedColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	var (
		columns []string
		values  []any
	)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.Field(i).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model %s has no db columns", t.Name())
	}
	return columns, values, nil
}
