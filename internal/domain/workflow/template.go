package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([\w.\[\]]+)\s*\}\}`)

// resolveTemplates walks a parameter tree and substitutes {{dotted.path}}
// placeholders from the context. A string consisting of exactly one
// placeholder is replaced by the looked-up value with its type preserved;
// placeholders embedded in longer strings are stringified in place.
// Unresolvable placeholders are left verbatim.
func resolveTemplates(value interface{}, ctx map[string]interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return resolveString(v, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = resolveTemplates(item, ctx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = resolveTemplates(item, ctx)
		}
		return out
	default:
		return value
	}
}

func resolveString(s string, ctx map[string]interface{}) interface{} {
	// Whole-value substitution keeps the context value's type.
	if match := placeholderPattern.FindStringSubmatch(s); match != nil && match[0] == s {
		if resolved, ok := lookupPath(ctx, match[1]); ok {
			return resolved
		}
		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(placeholder string) string {
		path := placeholderPattern.FindStringSubmatch(placeholder)[1]
		resolved, ok := lookupPath(ctx, path)
		if !ok {
			return placeholder
		}
		return fmt.Sprint(resolved)
	})
}

var bracketIndex = strings.NewReplacer("[", ".", "]", "")

// lookupPath resolves a dotted path against a tree of maps and slices.
// Numeric segments index into slices; bracketed indices like items[0]
// normalize to dotted segments first.
func lookupPath(ctx map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = ctx
	for _, segment := range strings.Split(bracketIndex.Replace(path), ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}
	return current, true
}
