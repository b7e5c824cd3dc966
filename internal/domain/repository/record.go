package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Helpers de conversión Record <-> entidad. Toleran las variaciones de tipos
// que devuelven los drivers (string vs []byte, time.Time vs texto).

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, nil
		}
		return t.UTC(), nil
	case string, []byte:
		s := strings.TrimSpace(asString(t))
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("record: unparseable time %q", s)
	}
	return time.Time{}, fmt.Errorf("record: unexpected time type %T", v)
}

func asNullTime(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*time.Time); ok && p == nil {
		return nil, nil
	}
	t, err := asTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func timePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func stringsText(v []string) string {
	if v == nil {
		v = []string{}
	}
	return jsonText(v)
}

func mapText(v map[string]any) string {
	if v == nil {
		v = map[string]any{}
	}
	return jsonText(v)
}

func asStrings(v any) ([]string, error) {
	out := []string{}
	if v == nil {
		return out, nil
	}
	s := strings.TrimSpace(asString(v))
	if s == "" || s == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("record: decode list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func asMap(v any) (map[string]any, error) {
	out := map[string]any{}
	if v == nil {
		return out, nil
	}
	s := strings.TrimSpace(asString(v))
	if s == "" || s == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("record: decode map: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
