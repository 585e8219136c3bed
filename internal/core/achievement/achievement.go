// Package achievement is the monotonic unlock state machine
// Evaluate only ever adds keys, and an unlock timestamp is written once
package achievement

import (
	"time"

	"gitplanet/internal/core/metrics"
)

// Key identifies an achievement
type Key string

// Achievement keys
const (
	FirstPlanet         Key = "FIRST_PLANET"
	FirstActivity       Key = "FIRST_ACTIVITY"
	Velocity            Key = "VELOCITY"
	ExternalContributor Key = "EXTERNAL_CONTRIBUTOR"
	Stargazer           Key = "STARGAZER"
	Polyglot            Key = "POLYGLOT"
	Veteran             Key = "VETERAN"
	Commit100           Key = "COMMIT_100"
	Commit500           Key = "COMMIT_500"
	Commit1000          Key = "COMMIT_1000"
)

// Unlock is a persisted achievement entry
type Unlock struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// State maps unlocked keys to their entry
type State map[Key]Unlock

// Facts are the inputs every rule is evaluated against
type Facts struct {
	TotalCommits             int
	WeeklyCommits            int
	TotalStars               int
	LanguagesCount           int
	HasExternalContributions bool
	AccountAgeDays           int
}

// FactsFrom derives Facts from normalized stats as of now
func FactsFrom(s metrics.Stats, now time.Time) Facts {
	return Facts{
		TotalCommits:             s.TotalCommits,
		WeeklyCommits:            s.WeeklyCommits,
		TotalStars:               s.TotalStars,
		LanguagesCount:           s.LanguagesCount,
		HasExternalContributions: s.HasExternalContributions,
		AccountAgeDays:           metrics.AccountAgeDays(s.AccountCreatedAt, now),
	}
}

// Rule is one unlock condition
type Rule struct {
	Key         Key
	Name        string
	Description string
	Holds       func(Facts) bool
}

var rules = []Rule{
	{FirstPlanet, "First Planet", "Your planet was born.", func(Facts) bool { return true }},
	{FirstActivity, "First Activity", "Made your first contribution.", func(f Facts) bool { return f.TotalCommits >= 1 }},
	{Velocity, "Velocity", "50 or more contributions in a single week.", func(f Facts) bool { return f.WeeklyCommits >= 50 }},
	{ExternalContributor, "External Contributor", "Contributed to someone else's repository.", func(f Facts) bool { return f.HasExternalContributions }},
	{Stargazer, "Stargazer", "Collected 10 or more stars.", func(f Facts) bool { return f.TotalStars >= 10 }},
	{Polyglot, "Polyglot", "Wrote code in 5 or more languages.", func(f Facts) bool { return f.LanguagesCount >= 5 }},
	{Veteran, "Veteran", "GitHub account is at least a year old.", func(f Facts) bool { return f.AccountAgeDays >= 365 }},
	{Commit100, "Centurion", "Reached 100 contributions.", func(f Facts) bool { return f.TotalCommits >= 100 }},
	{Commit500, "Half Millennium", "Reached 500 contributions.", func(f Facts) bool { return f.TotalCommits >= 500 }},
	{Commit1000, "Millennium", "Reached 1000 contributions.", func(f Facts) bool { return f.TotalCommits >= 1000 }},
}

// Rules returns the rule catalog in display order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Lookup returns the rule for k
func Lookup(k Key) (Rule, bool) {
	for _, r := range rules {
		if r.Key == k {
			return r, true
		}
	}
	return Rule{}, false
}

// Evaluate returns a new state with every holding rule unlocked at now
// existing is never mutated and entries already present are carried over untouched
// added lists the newly unlocked keys in catalog order
func Evaluate(existing State, f Facts, now time.Time) (next State, added []Key) {
	next = existing.Clone()
	for _, r := range rules {
		if _, ok := next[r.Key]; ok {
			continue
		}
		if !r.Holds(f) {
			continue
		}
		next[r.Key] = Unlock{Name: r.Name, Description: r.Description, UnlockedAt: now.UTC()}
		added = append(added, r.Key)
	}
	return next, added
}

// Clone copies s, a nil state yields an empty map
func (s State) Clone() State {
	out := make(State, len(s)+len(rules))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether k is unlocked
func (s State) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys lists the unlocked keys in catalog order followed by unknown keys
func (s State) Keys() []Key {
	out := make([]Key, 0, len(s))
	seen := make(map[Key]bool, len(s))
	for _, r := range rules {
		if s.Has(r.Key) {
			out = append(out, r.Key)
			seen[r.Key] = true
		}
	}
	for k := range s {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}
