package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/core/service"
)

// Accepted date formats. Values without an offset are taken as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// flexibleTime decodes a JSON string in any accepted date format.
type flexibleTime struct {
	time.Time
}

func (t *flexibleTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// queryParams collects every bad parameter before reporting.
type queryParams struct {
	values url.Values
	errs   domain.ValidationErrors
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query(), errs: domain.ValidationErrors{}}
}

func (q *queryParams) str(name string) string {
	return q.values.Get(name)
}

func (q *queryParams) optionalInt(name string) *int {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs.Add(name, name+" must be an integer")
		return nil
	}
	return &n
}

func (q *queryParams) optionalInt64(name string) *int64 {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.errs.Add(name, name+" must be an integer")
		return nil
	}
	return &n
}

func (q *queryParams) optionalTime(name string) *time.Time {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		q.errs.Add(name, name+" must be a date or datetime")
		return nil
	}
	return &t
}

func (q *queryParams) requiredTime(name string) time.Time {
	if q.values.Get(name) == "" {
		q.errs.Add(name, name+" is required")
		return time.Time{}
	}
	if t := q.optionalTime(name); t != nil {
		return *t
	}
	return time.Time{}
}

func (q *queryParams) err() error {
	if q.errs.Empty() {
		return nil
	}
	return service.NewValidationError(q.errs)
}
