package cmdutil

import (
	"database/sql/driver"
	"reflect"
	"strings"
	"unicode"
)

// StructToMap converts a struct into a SQLite row. Columns are named by the
// field's db tag, or its snake_case name when untagged; db:"-" leaves the
// field out. Fields implementing driver.Valuer are stored as the value they
// report.
func StructToMap[T any](value T) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result
		}
		v = v.Elem()
	}

	appendStructFields(v, result)
	return result
}

func appendStructFields(v reflect.Value, result map[string]any) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		column := field.Tag.Get("db")
		if column == "-" {
			continue
		}

		value := v.Field(i)
		if field.Anonymous && value.Kind() == reflect.Struct {
			appendStructFields(value, result)
			continue
		}

		if column == "" {
			column = toSnakeCase(field.Name)
		}
		result[column] = columnValue(value)
	}
}

func columnValue(value reflect.Value) any {
	if !value.IsValid() {
		return nil
	}

	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	if valuer, ok := value.Interface().(driver.Valuer); ok {
		if v, err := valuer.Value(); err == nil {
			return v
		}
		return nil
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		// SQLite has no composite columns
		return nil
	}
	return value.Interface()
}

func toSnakeCase(input string) string {
	if input == "" {
		return ""
	}

	runes := []rune(input)
	var builder strings.Builder
	builder.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				var next rune
				var nextNext rune
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if i+2 < len(runes) {
					nextNext = runes[i+2]
				}
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					builder.WriteRune('_')
				} else if unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next) {
					if nextNext == 0 || !unicode.IsUpper(nextNext) {
						builder.WriteRune('_')
					}
				}
			}
			builder.WriteRune(unicode.ToLower(r))
			continue
		}

		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}
