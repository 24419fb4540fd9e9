// Package cursor encodes and decodes opaque pagination cursors.
//
// A cursor is a base64-encoded JSON payload capturing the keyset position of
// the last-seen row: the entity and sort context it was minted under plus the
// string-coerced sort-key values. Pagination resumes from that tuple rather
// than a numeric offset, so pages stay correct under concurrent writes.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const version = 2

// Payload is the decoded content of a cursor.
type Payload struct {
	Version    int      `json:"v"`
	Entity     string   `json:"e"`
	SortKey    string   `json:"k"`
	Directions []string `json:"d"`
	Values     []string `json:"vals"`
}

// Encode mints an opaque cursor for a row position. Values are string-coerced
// before marshalling so integer keys survive JSON without float64 precision
// loss.
func Encode(entityName, sortKey string, directions []string, values []interface{}) string {
	dirs := make([]string, len(directions))
	for i, d := range directions {
		dirs[i] = strings.ToUpper(d)
	}
	vals := make([]string, len(values))
	for i, v := range values {
		vals[i] = coerceString(v)
	}
	data, err := json.Marshal(Payload{
		Version:    version,
		Entity:     entityName,
		SortKey:    sortKey,
		Directions: dirs,
		Values:     vals,
	})
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses an opaque cursor. Malformed input returns an error; it is
// never treated as the start of the list.
func Decode(raw string) (Payload, error) {
	var p Payload
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return p, fmt.Errorf("cursor is not valid base64: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("cursor payload is not valid JSON")
	}
	if p.Version != version {
		return p, fmt.Errorf("unsupported cursor version %d", p.Version)
	}
	if p.Entity == "" || p.SortKey == "" {
		return p, fmt.Errorf("cursor is missing its entity or sort context")
	}
	if len(p.Directions) == 0 || len(p.Values) != len(p.Directions) {
		return p, fmt.Errorf("cursor value count does not match its sort key")
	}
	for i, d := range p.Directions {
		d = strings.ToUpper(d)
		if d != "ASC" && d != "DESC" {
			return p, fmt.Errorf("cursor direction %d must be ASC or DESC", i)
		}
		p.Directions[i] = d
	}
	return p, nil
}

// Matches reports whether the cursor was minted for the given entity and
// sort context. A cursor from a differently-sorted query must be rejected,
// not reinterpreted.
func (p Payload) Matches(entityName, sortKey string, directions []string) error {
	if p.Entity != entityName {
		return fmt.Errorf("cursor belongs to %s, not %s", p.Entity, entityName)
	}
	if p.SortKey != sortKey {
		return fmt.Errorf("cursor sort key %q does not match query sort %q", p.SortKey, sortKey)
	}
	if len(p.Directions) != len(directions) {
		return fmt.Errorf("cursor has %d sort directions, query has %d", len(p.Directions), len(directions))
	}
	for i := range directions {
		if p.Directions[i] != strings.ToUpper(directions[i]) {
			return fmt.Errorf("cursor direction %d does not match query sort", i)
		}
	}
	return nil
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
