package storage

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// decodeMetrics turns a stored metrics payload into readings. Values may be
// JSON numbers or numeric strings; anything else is skipped. ok is false
// when the payload is not a JSON object at all.
func decodeMetrics(raw string) (metrics map[string]float64, ok bool) {
	metrics = map[string]float64{}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return metrics, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return map[string]float64{}, false
	}
	for name, v := range fields {
		if f, ok := parseReading(v); ok {
			metrics[name] = f
		}
	}
	return metrics, true
}

func parseReading(v json.RawMessage) (float64, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0, false
	}
	var f float64
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	} else if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeAchievements accepts a JSON array of strings or a comma-separated list.
func decodeAchievements(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return compact(list)
		}
	}
	return compact(strings.Split(raw, ","))
}

func compact(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func decodeInts(raw string) []int {
	var out []int
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []int{}
	}
	return out
}
