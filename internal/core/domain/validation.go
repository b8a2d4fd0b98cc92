package domain

import (
	"sort"
	"strings"
	"time"
)

// ValidationErrors maps a field name to the reason it was rejected.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Error joins the messages in field order so the text is stable.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, "; ")
}

// Timestamp normalizes t to UTC whole seconds, the precision every stored
// timestamp uses. Range queries rely on it to compare consistently across
// MySQL DATETIME and SQLite text columns.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
