package condition

import (
	"fmt"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// ErrTooDeep is returned by ValidateDepth when a condition tree nests beyond
// MaxDepth.
type ErrTooDeep struct{}

func (ErrTooDeep) Error() string { return fmt.Sprintf("condition nesting exceeds depth %d", MaxDepth) }

// ValidateDepth fails if cond nests more than MaxDepth levels deep.
func ValidateDepth(cond *skillsdk.Condition) error {
	return validateDepth(cond, 0)
}

func validateDepth(cond *skillsdk.Condition, depth int) error {
	if cond == nil {
		return nil
	}
	if depth > MaxDepth {
		return ErrTooDeep{}
	}
	for _, c := range cond.Conditions {
		if err := validateDepth(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRegex compiles every regex leaf in the tree, failing with the
// compiler's own error message on the first bad pattern.
func ValidateRegex(cond *skillsdk.Condition) error {
	if cond == nil {
		return nil
	}
	if cond.Type == skillsdk.ConditionRegex {
		if _, err := compileRegex(cond.Pattern, cond.Flags); err != nil {
			return fmt.Errorf("invalid regex %q: %w", cond.Pattern, err)
		}
	}
	for _, c := range cond.Conditions {
		if err := ValidateRegex(c); err != nil {
			return err
		}
	}
	return nil
}

// CheckFields reports, via the returned slice, every leaf condition
// whose Field is not present in validFields. This is warn-only: the
// caller logs the result rather than rejecting the trigger, matching
// the runtime's soft-compat policy for declared trigger schemas.
func CheckFields(cond *skillsdk.Condition, validFields map[string]bool) []string {
	var unknown []string
	checkFields(cond, validFields, &unknown)
	return unknown
}

func checkFields(cond *skillsdk.Condition, validFields map[string]bool, unknown *[]string) {
	if cond == nil {
		return
	}
	switch cond.Type {
	case skillsdk.ConditionRegex, skillsdk.ConditionKeyword, skillsdk.ConditionThreshold:
		if cond.Field != "" && len(validFields) > 0 && !validFields[cond.Field] {
			*unknown = append(*unknown, cond.Field)
		}
	default:
		for _, c := range cond.Conditions {
			checkFields(c, validFields, unknown)
		}
	}
}
