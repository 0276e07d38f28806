package caster

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateLayouts are tried in order by the date caster.
// Slash and dot dates are day first: "12/09/1965" is 12 September 1965.
var DateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"02 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

// TimeLayouts are tried in order by the time and datetime casters.
var TimeLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// DateCaster produces a time.Time at midnight UTC.
type DateCaster struct{}

func (c *DateCaster) Name() string { return "date" }

func (c *DateCaster) Cast(raw any) (any, error) {
	var t time.Time
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		t = *v
	case string:
		parsed, err := parseLayouts(strings.TrimSpace(v), DateLayouts)
		if err != nil {
			return nil, castErr(c.Name(), raw, err)
		}
		t = parsed
	default:
		return nil, castErr(c.Name(), raw, fmt.Errorf("unsupported date input %T", raw))
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// TimeCaster produces a time.Time keeping the parsed offset.
// Integers are read as unix seconds.
type TimeCaster struct {
	name string
}

func (c *TimeCaster) Name() string { return c.name }

func (c *TimeCaster) Cast(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case string:
		t, err := parseLayouts(strings.TrimSpace(v), TimeLayouts)
		if err != nil {
			return nil, castErr(c.Name(), raw, err)
		}
		return t, nil
	case bool:
		return nil, castErr(c.Name(), raw, errBoolNotNumber)
	}
	t, err := cast.ToTimeE(raw)
	if err != nil {
		return nil, castErr(c.Name(), raw, err)
	}
	return t, nil
}

func parseLayouts(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches none of the recognized formats", s)
}
