package prompt

import (
	"regexp"
	"sort"
)

// Scope maps placeholder names to their replacement values.
type Scope map[string]string

// Merged returns a new scope with overlay entries shadowing s on name
// collision.
func (s Scope) Merged(overlay Scope) Scope {
	out := make(Scope, len(s)+len(overlay))
	for name, value := range s {
		out[name] = value
	}
	for name, value := range overlay {
		out[name] = value
	}
	return out
}

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Resolve replaces every {{name}} placeholder in text whose name is present
// in scope. Unknown placeholders are left verbatim. Substitution is a single
// pass over the input: replacement values are never re-scanned, so a value
// containing {{...}} cannot trigger further expansion.
func Resolve(text string, scope Scope) string {
	if len(scope) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := scope[name]; ok {
			return value
		}
		return match
	})
}

// DetectVariables extracts the distinct placeholder names referenced by any
// of the spec's five fields, sorted for stable output. It is a pure function
// of the spec text and does not consult any scope.
func DetectVariables(s Spec) []string {
	seen := make(map[string]struct{})
	for _, f := range Fields {
		for _, m := range placeholderRe.FindAllStringSubmatch(s.FieldValue(f), -1) {
			seen[m[1]] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
