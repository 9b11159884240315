package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due and submission dates.
const DateLayout = "2006-01-02"

// Date is a point in time that decodes from either a calendar date or an RFC 3339
// timestamp. Calendar dates resolve to midnight UTC.
type Date struct {
	time.Time
}

// NewDate builds a calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf wraps a time value.
func DateOf(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate parses a calendar date or RFC 3339 timestamp.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(DateLayout, raw, time.UTC); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	return Date{Time: t}, nil
}

// String renders calendar dates without a clock component.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.isCalendarDate() {
		return d.UTC().Format(DateLayout)
	}
	return d.Format(time.RFC3339)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CalendarDay drops the clock component, keeping the UTC date.
func (d Date) CalendarDay() Date {
	u := d.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func (d Date) isCalendarDate() bool {
	u := d.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}
