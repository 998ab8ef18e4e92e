package metric

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	metricNameRegex = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRegex  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	invalidNameChar = regexp.MustCompile(`[^a-zA-Z0-9_:]`)
)

// IsValidMetricName reports whether name can be used as a metric name.
func IsValidMetricName(name string) bool {
	return metricNameRegex.MatchString(name)
}

// IsValidLabelName reports whether name can be used as a label key.
// Names starting with "__" are reserved.
func IsValidLabelName(name string) bool {
	if strings.HasPrefix(name, "__") {
		return false
	}
	return labelNameRegex.MatchString(name)
}

// SanitizeName replaces every character that is not allowed in a metric name
// with an underscore and prefixes names starting with a digit.
func SanitizeName(name string) string {
	name = invalidNameChar.ReplaceAllString(name, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

func validateLabelKeys(metricName string, keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !IsValidLabelName(key) {
			return fmt.Errorf("%w: label %q of metric %q", ErrInvalidName, key, metricName)
		}
		if seen[key] {
			return fmt.Errorf("%w: label %q repeated in metric %q", ErrInvalidName, key, metricName)
		}
		seen[key] = true
	}
	return nil
}
