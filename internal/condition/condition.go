// Package condition evaluates and validates the recursive condition
// trees used by trigger instances.
package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// MaxDepth is the maximum nesting depth a condition tree may reach.
const MaxDepth = 5

// Resolve walks a dotted path ("a.b.c") through nested maps. Any
// missing or non-map step yields nil rather than an error.
func Resolve(data map[string]any, dotPath string) any {
	var current any = data
	for _, part := range strings.Split(dotPath, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// Evaluate checks cond against data. Depth beyond MaxDepth is treated as
// non-matching rather than an error, matching the evaluator's policy of
// never panicking on adversarial nesting.
func Evaluate(cond *skillsdk.Condition, data map[string]any) bool {
	return evaluate(cond, data, 0)
}

func evaluate(cond *skillsdk.Condition, data map[string]any, depth int) bool {
	if cond == nil || depth > MaxDepth {
		return false
	}
	switch cond.Type {
	case skillsdk.ConditionRegex:
		return evalRegex(cond, data)
	case skillsdk.ConditionKeyword:
		return evalKeyword(cond, data)
	case skillsdk.ConditionThreshold:
		return evalThreshold(cond, data)
	case skillsdk.ConditionAnd:
		return evalAnd(cond, data, depth)
	case skillsdk.ConditionOr:
		return evalOr(cond, data, depth)
	case skillsdk.ConditionNot:
		return evalNot(cond, data, depth)
	default:
		return false
	}
}

func evalRegex(cond *skillsdk.Condition, data map[string]any) bool {
	if cond.Field == "" || cond.Pattern == "" {
		return false
	}
	value := Resolve(data, cond.Field)
	if value == nil {
		return false
	}
	re, err := compileRegex(cond.Pattern, cond.Flags)
	if err != nil {
		return false
	}
	return re.MatchString(fmt.Sprint(value))
}

func evalKeyword(cond *skillsdk.Condition, data map[string]any) bool {
	if cond.Field == "" || len(cond.Keywords) == 0 {
		return false
	}
	value := Resolve(data, cond.Field)
	if value == nil {
		return false
	}
	text := strings.ToLower(fmt.Sprint(value))
	if cond.MatchMode == skillsdk.MatchAll {
		for _, kw := range cond.Keywords {
			if !strings.Contains(text, strings.ToLower(kw)) {
				return false
			}
		}
		return true
	}
	for _, kw := range cond.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func evalThreshold(cond *skillsdk.Condition, data map[string]any) bool {
	if cond.Field == "" || cond.Operator == "" || cond.Value == nil {
		return false
	}
	value := Resolve(data, cond.Field)
	if value == nil {
		return false
	}
	num, ok := toFloat(value)
	if !ok {
		return false
	}
	threshold := *cond.Value
	switch cond.Operator {
	case skillsdk.OpGT:
		return num > threshold
	case skillsdk.OpLT:
		return num < threshold
	case skillsdk.OpEQ:
		return num == threshold
	case skillsdk.OpGTE:
		return num >= threshold
	case skillsdk.OpLTE:
		return num <= threshold
	case skillsdk.OpNEQ:
		return num != threshold
	default:
		return false
	}
}

func evalAnd(cond *skillsdk.Condition, data map[string]any, depth int) bool {
	if len(cond.Conditions) == 0 {
		return false
	}
	for _, c := range cond.Conditions {
		if !evaluate(c, data, depth+1) {
			return false
		}
	}
	return true
}

func evalOr(cond *skillsdk.Condition, data map[string]any, depth int) bool {
	if len(cond.Conditions) == 0 {
		return false
	}
	for _, c := range cond.Conditions {
		if evaluate(c, data, depth+1) {
			return true
		}
	}
	return false
}

func evalNot(cond *skillsdk.Condition, data map[string]any, depth int) bool {
	if len(cond.Conditions) == 0 {
		return false
	}
	return !evaluate(cond.Conditions[0], data, depth+1)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	var prefix string
	if strings.Contains(flags, "i") {
		prefix += "i"
	}
	if strings.Contains(flags, "m") {
		prefix += "m"
	}
	if strings.Contains(flags, "s") {
		prefix += "s"
	}
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	return regexp.Compile(pattern)
}
