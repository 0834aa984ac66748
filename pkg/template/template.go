// Package template substitutes {{field}} merge tags in action configuration
// using the triggering event's data.
package template

import (
	"fmt"
	"regexp"
	"strconv"
)

var mergeTag = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ResolveConfig returns a copy of config with every merge tag in string values
// substituted from data. Unknown tags are left verbatim so partially populated
// event data never aborts a run. Non-string values pass through unchanged.
//
// Resolution is single-pass and makes no attempt to protect literal {{...}}
// text that arrives inside data values; re-resolving such output would
// substitute it again. Known limitation, kept for parity with the stored
// configs this engine inherits.
func ResolveConfig(config map[string]any, data map[string]any) map[string]any {
	resolved := make(map[string]any, len(config))

	for key, value := range config {
		if s, ok := value.(string); ok {
			resolved[key] = ResolveString(s, data)
		} else {
			resolved[key] = value
		}
	}

	return resolved
}

// ResolveString substitutes merge tags in a single string.
func ResolveString(s string, data map[string]any) string {
	return mergeTag.ReplaceAllStringFunc(s, func(match string) string {
		tag := mergeTag.FindStringSubmatch(match)[1]

		value, ok := data[tag]
		if !ok {
			return match
		}

		return Stringify(value)
	})
}

// Stringify renders an event-data value the way it would appear in a message:
// numbers without a float artifact, booleans as true/false.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
