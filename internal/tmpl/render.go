package tmpl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// loopScope carries the bindings available inside an each-block body.
type loopScope struct {
	item  any
	index int
	total int
}

// Render evaluates the template against a flat data record. Missing keys
// render as empty strings; whitespace-only lines are blanked in the result.
func (t *Template) Render(data map[string]any) string {
	var sb strings.Builder
	renderNodes(&sb, t.nodes, data, nil)
	return blankWhitespaceLines(sb.String())
}

func renderNodes(sb *strings.Builder, nodes []node, data map[string]any, loop *loopScope) {
	for _, n := range nodes {
		switch n := n.(type) {
		case literalNode:
			sb.WriteString(n.text)

		case varNode:
			v, _ := lookup(n.name, data, loop)
			sb.WriteString(stringify(v))

		case ifNode:
			if truthyCond(n.cond, data, loop) {
				renderNodes(sb, n.body, data, loop)
			}

		case eachNode:
			v, ok := lookup(n.name, data, loop)
			if !ok {
				continue
			}
			items := toSlice(v)
			for i, item := range items {
				inner := &loopScope{item: item, index: i, total: len(items)}
				renderNodes(sb, n.body, data, inner)
			}
		}
	}
}

// lookup resolves a name against the current loop item first, then the outer
// data record. The pseudo-variables this and @index only exist inside a loop.
func lookup(name string, data map[string]any, loop *loopScope) (any, bool) {
	switch name {
	case "this":
		if loop != nil {
			return loop.item, true
		}
		return nil, false
	case "@index":
		if loop != nil {
			return loop.index, true
		}
		return nil, false
	}

	if strings.HasPrefix(name, "@") {
		return nil, false
	}

	if loop != nil {
		if m, ok := loop.item.(map[string]any); ok {
			if v, ok := m[name]; ok {
				return v, true
			}
		}
	}

	v, ok := data[name]
	return v, ok
}

// truthyCond evaluates an if-condition: @first / @last inside loops, any
// other name through the data lookup and the truthiness rules.
func truthyCond(cond string, data map[string]any, loop *loopScope) bool {
	switch cond {
	case "@first":
		return loop != nil && loop.index == 0
	case "@last":
		return loop != nil && loop.index == loop.total-1
	}
	v, ok := lookup(cond, data, loop)
	if !ok {
		return false
	}
	return truthy(v)
}

// truthy implements the directive truthiness rules: defined, non-nil, not
// false, not the empty string. Numeric zero is truthy.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}

// toSlice normalizes a data value into an iterable sequence. Non-sequence
// values iterate zero times.
func toSlice(v any) []any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// stringify converts a resolved value to its output text. Missing and nil
// values render as the empty string, never as a literal token.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
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
	default:
		return fmt.Sprint(v)
	}
}

// blankWhitespaceLines replaces lines containing only whitespace with empty
// lines. Markup characters are never touched.
func blankWhitespaceLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" && strings.TrimSpace(line) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
