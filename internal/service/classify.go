package service

import (
	"encoding/json"
	"strings"

	"github.com/vzy-dashboard/backend/internal/models"
)

// Classify returns the first platform whose pattern occurs in the issue's
// corpus. ok is false when no rule matches.
func (t Taxonomy) Classify(issue models.Issue) (models.Platform, bool) {
	corpus := Corpus(issue)
	for _, rule := range t.Rules {
		for _, p := range rule.Patterns {
			if strings.Contains(corpus, p) {
				return rule.Platform, true
			}
		}
	}
	return "", false
}

// Corpus is the upper-cased text searched for platform patterns: labels,
// component names, custom field values and the summary, space separated.
func Corpus(issue models.Issue) string {
	f := issue.Fields
	parts := make([]string, 0, len(f.Labels)+len(f.Components)+len(f.Custom)+1)
	for _, l := range f.Labels {
		parts = append(parts, strings.ToUpper(l))
	}
	for _, c := range f.Components {
		parts = append(parts, strings.ToUpper(c.Name))
	}
	for _, cf := range f.Custom {
		parts = append(parts, customText(cf.Value)...)
	}
	parts = append(parts, strings.ToUpper(f.Summary))
	return strings.Join(parts, " ")
}

func customText(v any) []string {
	if isEmptyValue(v) {
		return nil
	}
	switch val := v.(type) {
	case string:
		return []string{strings.ToUpper(val)}
	case map[string]any:
		return []string{strings.ToUpper(objectLabel(val))}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch it := item.(type) {
			case string:
				out = append(out, strings.ToUpper(it))
			case map[string]any:
				out = append(out, strings.ToUpper(objectLabel(it)))
			}
		}
		return out
	}
	return nil
}

// objectLabel prefers a non-empty "value" and falls back to "name".
func objectLabel(obj map[string]any) string {
	if s, ok := obj["value"].(string); ok && s != "" {
		return s
	}
	if s, ok := obj["name"].(string); ok {
		return s
	}
	return ""
}

// isEmptyValue reports whether a custom field carries nothing worth reading:
// null, empty string, false, zero, or an empty list or object.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case float64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}

// sprintName scans custom fields for sprint-shaped objects (both "name" and
// "state" present). The last one seen wins.
func sprintName(issue models.Issue) string {
	name := ""
	for _, cf := range issue.Fields.Custom {
		if isEmptyValue(cf.Value) {
			continue
		}
		switch val := cf.Value.(type) {
		case []any:
			for _, item := range val {
				if obj, ok := item.(map[string]any); ok && isSprint(obj) {
					name, _ = obj["name"].(string)
				}
			}
		case map[string]any:
			if isSprint(val) {
				name, _ = val["name"].(string)
			}
		}
	}
	return name
}

func isSprint(obj map[string]any) bool {
	_, hasName := obj["name"]
	_, hasState := obj["state"]
	return hasName && hasState
}
