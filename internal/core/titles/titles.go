// Package titles maps unlocked achievements to cosmetic title words
package titles

import (
	"slices"

	"gitplanet/internal/core/achievement"
)

// Default title words every inventory starts with, also the first planet reward
const (
	DefaultPrefix = "Newborn"
	DefaultSuffix = "Wanderer"
)

// Inventory is the append only set of title words a user owns
type Inventory struct {
	Prefixes []string `json:"prefixes"`
	Suffixes []string `json:"suffixes"`
}

// Active is the title a user currently displays
type Active struct {
	Prefix string `json:"prefix" validate:"required,max=64" example:"Diligent"`
	Suffix string `json:"suffix" validate:"required,max=64" example:"Builder"`
}

// Reward is the pair of words an achievement grants
type Reward struct {
	Prefix string
	Suffix string
}

var rewards = []struct {
	key achievement.Key
	Reward
}{
	{achievement.FirstPlanet, Reward{DefaultPrefix, DefaultSuffix}},
	{achievement.FirstActivity, Reward{"Awakened", "Coder"}},
	{achievement.Velocity, Reward{"Blazing", "Comet"}},
	{achievement.ExternalContributor, Reward{"Allied", "Voyager"}},
	{achievement.Stargazer, Reward{"Shining", "Star"}},
	{achievement.Polyglot, Reward{"Multilingual", "Polyglot"}},
	{achievement.Veteran, Reward{"Ancient", "Veteran"}},
	{achievement.Commit100, Reward{"Diligent", "Builder"}},
	{achievement.Commit500, Reward{"Tireless", "Architect"}},
	{achievement.Commit1000, Reward{"Legendary", "Creator"}},
}

// Default returns the seeded inventory
func Default() Inventory {
	return Inventory{Prefixes: []string{DefaultPrefix}, Suffixes: []string{DefaultSuffix}}
}

// DefaultActive returns the title shown before the user picks one
func DefaultActive() Active {
	return Active{Prefix: DefaultPrefix, Suffix: DefaultSuffix}
}

// RewardFor returns the words granted by k
func RewardFor(k achievement.Key) (Reward, bool) {
	for _, r := range rewards {
		if r.key == k {
			return r.Reward, true
		}
	}
	return Reward{}, false
}

// Map returns inv extended with the rewards of every key in state
// Words are appended once in reward catalog order, existing words keep their position
func Map(state achievement.State, inv Inventory) Inventory {
	out := inv.Clone()
	if len(out.Prefixes) == 0 && len(out.Suffixes) == 0 {
		out = Default()
	}
	for _, r := range rewards {
		if !state.Has(r.key) {
			continue
		}
		out.Prefixes = appendUnique(out.Prefixes, r.Prefix)
		out.Suffixes = appendUnique(out.Suffixes, r.Suffix)
	}
	return out
}

// Clone returns a deep copy with duplicates removed
func (inv Inventory) Clone() Inventory {
	var out Inventory
	for _, p := range inv.Prefixes {
		out.Prefixes = appendUnique(out.Prefixes, p)
	}
	for _, s := range inv.Suffixes {
		out.Suffixes = appendUnique(out.Suffixes, s)
	}
	return out
}

// Has reports whether both words of a are owned
func (inv Inventory) Has(a Active) bool {
	return slices.Contains(inv.Prefixes, a.Prefix) && slices.Contains(inv.Suffixes, a.Suffix)
}

// CarryOver keeps a unless it is unset
func CarryOver(a *Active) Active {
	if a == nil || a.Prefix == "" || a.Suffix == "" {
		return DefaultActive()
	}
	return *a
}

func appendUnique(xs []string, w string) []string {
	if w == "" || slices.Contains(xs, w) {
		return xs
	}
	return append(xs, w)
}
