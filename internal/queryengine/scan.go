package queryengine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizql/internal/dbexec"
	"bizql/internal/entity"
)

// coerceInput converts a caller-supplied string (filter value or cursor
// value) to the native type of the field it targets. A mismatch is an
// InvalidFieldError, caught before any SQL is built.
func coerceInput(e *entity.Entity, f entity.Field, raw string) (interface{}, error) {
	switch f.Type {
	case entity.TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: fmt.Sprintf("%q is not an integer", raw)}
		}
		return n, nil
	case entity.TypeFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: fmt.Sprintf("%q is not a number", raw)}
		}
		return n, nil
	case entity.TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: fmt.Sprintf("%q is not a boolean", raw)}
		}
		return b, nil
	case entity.TypeTime:
		t, err := parseTime(raw)
		if err != nil {
			return nil, &InvalidFieldError{Entity: e.Name, Field: f.Name, Reason: fmt.Sprintf("%q is not a timestamp", raw)}
		}
		return t, nil
	default:
		return raw, nil
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

// scanEntityRows reads every row into a field-name-keyed map, coercing
// driver values to the declared field types.
func scanEntityRows(rows dbexec.Rows, fields []entity.Field) ([]map[string]interface{}, error) {
	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(fields))
		ptrs := make([]interface{}, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fields))
		for i, f := range fields {
			row[f.Name] = convertStoreValue(f, values[i])
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// convertStoreValue normalizes a driver value to the field's declared type.
// MySQL drivers commonly hand back []byte for text and decimal columns, and
// either time.Time or a textual timestamp depending on parseTime.
func convertStoreValue(f entity.Field, val interface{}) interface{} {
	if val == nil {
		return nil
	}
	if b, ok := val.([]byte); ok {
		val = string(b)
	}

	switch f.Type {
	case entity.TypeInt:
		switch v := val.(type) {
		case int64:
			return v
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n
			}
		}
	case entity.TypeFloat:
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return n
			}
		}
	case entity.TypeBool:
		switch v := val.(type) {
		case bool:
			return v
		case int64:
			return v != 0
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	case entity.TypeTime:
		switch v := val.(type) {
		case time.Time:
			return v
		case string:
			if t, err := parseTime(v); err == nil {
				return t
			}
		}
	case entity.TypeID, entity.TypeString:
		switch v := val.(type) {
		case string:
			return v
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return val
}
