package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type Date struct {
	time.Time
}

var dateLayouts = []string{
	DateLayout,
	"02-01-2006",
	"2006/01/02",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseDate accepts any of the supported layouts and returns the civil day it names.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateOf(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse date: %s", s)
}

// DateOf truncates t to its calendar day, stored as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DatePtr(t time.Time) *time.Time {
	d := DateOf(t)
	return &d
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid date format (string expected): %w", err)
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte(`null`), nil
	}

	s := d.Time.Format(DateLayout)
	return json.Marshal(s)
}

// DateRef converts a nullable column into the JSON date type.
func DateRef(t *time.Time) *Date {
	if t == nil || t.IsZero() {
		return nil
	}
	return &Date{Time: *t}
}
