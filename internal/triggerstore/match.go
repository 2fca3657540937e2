package triggerstore

import (
	"time"

	"github.com/haasonsaas/skillrt/internal/condition"
	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// Match is one trigger that matched an event and survived its cooldown.
type Match struct {
	Trigger     *skillsdk.TriggerInstance
	MatchedData map[string]any
}

// PreFilter lets skill code reject a candidate trigger before its
// condition tree is evaluated (e.g. a chat-name substring check against
// Config), mirroring the original's skill-supplied pre-filter step.
type PreFilter func(t *skillsdk.TriggerInstance, data map[string]any) bool

// Match evaluates every enabled trigger of eventType against data and
// returns the ones whose condition tree matched and are outside their
// 5-second cooldown window. The cooldown timestamp is updated
// immediately for every survivor, before the caller dispatches the
// fire, so back-to-back matches within the window are suppressed
// regardless of how long the caller takes to act on the result.
func (s *Store) Match(eventType string, data map[string]any, now time.Time, pre PreFilter) []Match {
	s.mu.Lock()
	candidates := make([]*skillsdk.TriggerInstance, 0, len(s.triggers))
	for _, t := range s.triggers {
		if !t.Enabled || t.Type != eventType {
			continue
		}
		candidates = append(candidates, t)
	}
	s.mu.Unlock()

	var matches []Match
	for _, t := range candidates {
		if pre != nil && !pre(t, data) {
			continue
		}
		if !matchesAll(t.Conditions, data) {
			continue
		}

		s.mu.Lock()
		last, fired := s.lastFired[t.ID]
		withinCooldown := fired && now.Sub(last) < Cooldown
		if !withinCooldown {
			s.lastFired[t.ID] = now
		}
		s.mu.Unlock()

		if withinCooldown {
			continue
		}
		matches = append(matches, Match{Trigger: t, MatchedData: data})
	}
	return matches
}

// matchesAll treats a trigger's top-level Conditions list as an implicit
// AND: every condition in the list must hold for the trigger to fire.
// Skills that want OR semantics across conditions compose it explicitly
// with a single top-level "or" compound node instead.
func matchesAll(conds []*skillsdk.Condition, data map[string]any) bool {
	if len(conds) == 0 {
		return false
	}
	for _, c := range conds {
		if !condition.Evaluate(c, data) {
			return false
		}
	}
	return true
}
