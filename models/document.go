package models

import "time"

type serverTimestamp struct{}

// ServerTimestamp is a field value that asks the document store to write its
// own clock at commit time.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Document is a record in a document store collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// String returns the named field when it holds a string, "" otherwise.
func (d Document) String(field string) string {
	if s, ok := d.Fields[field].(string); ok {
		return s
	}
	return ""
}

// Time returns the named field when it holds a timestamp.
func (d Document) Time(field string) time.Time {
	switch v := d.Fields[field].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
