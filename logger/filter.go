package logger

import "strings"

const redactedValue = "[REDACTED]"

// defaultSensitiveKeys are field names whose values must never reach log output.
// Matching is case-insensitive on key substrings.
var defaultSensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"authorization",
	"api_key",
	"apikey",
}

// SensitiveFilter redacts values of sensitive fields before they are logged.
type SensitiveFilter struct {
	keys []string
}

// NewSensitiveFilter creates a filter for the given key substrings.
// A nil or empty slice falls back to the default key set.
func NewSensitiveFilter(keys []string) *SensitiveFilter {
	if len(keys) == 0 {
		keys = defaultSensitiveKeys
	}
	lowered := make([]string, len(keys))
	for i, k := range keys {
		lowered[i] = strings.ToLower(k)
	}
	return &SensitiveFilter{keys: lowered}
}

// IsSensitive reports whether the given key matches one of the sensitive key substrings.
func (f *SensitiveFilter) IsSensitive(key string) bool {
	lk := strings.ToLower(key)
	for _, k := range f.keys {
		if strings.Contains(lk, k) {
			return true
		}
	}
	return false
}

// FilterString returns a redaction marker for sensitive keys, the value otherwise.
func (f *SensitiveFilter) FilterString(key, value string) string {
	if f.IsSensitive(key) {
		return redactedValue
	}
	return value
}

// FilterValue redacts sensitive scalar values and recurses into string maps.
func (f *SensitiveFilter) FilterValue(key string, value any) any {
	if f.IsSensitive(key) {
		return redactedValue
	}
	if m, ok := value.(map[string]any); ok {
		return f.FilterFields(m)
	}
	return value
}

// FilterFields returns a copy of fields with sensitive values redacted.
func (f *SensitiveFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for k, v := range fields {
		filtered[k] = f.FilterValue(k, v)
	}
	return filtered
}
