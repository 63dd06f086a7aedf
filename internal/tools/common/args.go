package common

import (
	"fmt"
	"strings"
)

// StringArg returns the trimmed string argument name, or "".
func StringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// RejectPathArg returns an error when args carry pathArg. Tools take file
// content inline as contentArg and never read files on the server host.
func RejectPathArg(args map[string]interface{}, pathArg, contentArg string) error {
	if _, ok := args[pathArg]; !ok {
		return nil
	}
	return fmt.Errorf("%s is not supported: the server does not read local files, send the file base64 encoded as %s", pathArg, contentArg)
}

// RequiredStringArg returns the string argument name or an error when it is missing or blank.
func RequiredStringArg(args map[string]interface{}, name string) (string, error) {
	v := StringArg(args, name)
	if v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}

// IntArg returns the numeric argument name, or def when it is absent or not a number.
// JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, name string, def int64) int64 {
	switch v := args[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return def
}

// BoolArg returns the boolean argument name, or def.
func BoolArg(args map[string]interface{}, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// StringListArg accepts a comma-separated string or an array of strings.
// Blank entries are dropped.
func StringListArg(args map[string]interface{}, name string) []string {
	switch v := args[name].(type) {
	case string:
		return ParseCommaList(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return ParseCommaList(strings.Join(v, ","))
	}
	return nil
}

// ParseCommaList splits s on commas and trims each item.
func ParseCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
