package workflow

import (
	"reflect"
	"testing"
)

func TestResolveTemplates(t *testing.T) {
	ctx := map[string]interface{}{
		"user": map[string]interface{}{"name": "Lee"},
		"items": []interface{}{
			map[string]interface{}{"sku": "A-1"},
			map[string]interface{}{"sku": "B-2"},
		},
		"count": 3,
		"input": "hi",
	}

	tests := []struct {
		name     string
		template interface{}
		want     interface{}
	}{
		{"plain string untouched", "no placeholders", "no placeholders"},
		{"embedded placeholder", "Hello {{user.name}}", "Hello Lee"},
		{"whole value preserves type", "{{count}}", 3},
		{"list index path", "{{items.1.sku}}", "B-2"},
		{"bracketed list index", "{{items[0].sku}}", "A-1"},
		{"unresolvable left verbatim", "Hello {{user.missing}}", "Hello {{user.missing}}"},
		{"whole value unresolvable left verbatim", "{{ghost}}", "{{ghost}}"},
		{
			"nested map",
			map[string]interface{}{"msg": "{{input}}", "deep": map[string]interface{}{"who": "{{user.name}}"}},
			map[string]interface{}{"msg": "hi", "deep": map[string]interface{}{"who": "Lee"}},
		},
		{
			"slice of templates",
			[]interface{}{"{{input}}", "{{count}}"},
			[]interface{}{"hi", 3},
		},
		{"non-string passthrough", 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveTemplates(tt.template, ctx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveTemplates() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLookupPath(t *testing.T) {
	ctx := map[string]interface{}{
		"a": map[string]interface{}{
			"b": []interface{}{"zero", "one"},
		},
	}

	tests := []struct {
		path  string
		want  interface{}
		found bool
	}{
		{"a.b.0", "zero", true},
		{"a.b.1", "one", true},
		{"a.b[1]", "one", true},
		{"a.b.2", nil, false},
		{"a.b.x", nil, false},
		{"a.missing", nil, false},
		{"a", map[string]interface{}{"b": []interface{}{"zero", "one"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, found := lookupPath(ctx, tt.path)
			if found != tt.found {
				t.Fatalf("lookupPath(%q) found = %v, want %v", tt.path, found, tt.found)
			}
			if found && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lookupPath(%q) = %#v, want %#v", tt.path, got, tt.want)
			}
		})
	}
}
