// Package cursor implements the opaque base64(JSON) search_after envelope
// used for deep pagination (spec §4.2, §6).
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor wraps the ordered tuple of sort values from the last hit of the
// previous page. It is never trusted for filters, only for continuation
// position (spec §3).
type Cursor struct {
	Sort []any `json:"sort"`
}

// Encode serializes a cursor to its opaque wire form.
func Encode(sort []any) string {
	c := Cursor{Sort: sort}
	data, err := json.Marshal(c)
	if err != nil {
		// sort values are always JSON-marshalable primitives decoded from
		// the engine's own response; a marshal failure here is a bug, not
		// a runtime condition callers need to handle.
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// Decode parses an opaque cursor string. Any failure (bad base64, bad
// JSON, empty sort) is reported as ok=false — callers must treat that as
// "no cursor" and restart pagination, never as an error (spec §4.2).
func Decode(raw string) (sort []any, ok bool) {
	if raw == "" {
		return nil, false
	}
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, false
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}
	if len(c.Sort) == 0 {
		return nil, false
	}
	return c.Sort, true
}
