// Package naming derives the display name of a planet
// Template is adjective + noun + "の" + tier suffix
// Adjectives are keyed by language, nouns by planet color
// A lookup miss leaves a placeholder token which the assistant may refine
package naming

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gitplanet/internal/core/palette"
	"gitplanet/internal/platform/logger"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder tokens mark a lookup miss
const (
	PlaceholderAdjective = "名もなき"
	PlaceholderNoun      = "未確認天体"
	Connector            = "の"
)

// Tier suffixes by commit count
const (
	SuffixTier1 = "見習い"
	SuffixTier2 = "開拓者"
	SuffixTier3 = "覇者"
)

// Namer builds planet names, safe for concurrent use
type Namer struct {
	assistant palette.Assistant
	log       *logger.Logger
}

// New constructs a Namer, a nil assistant disables refinement
func New(a palette.Assistant) *Namer {
	return &Namer{assistant: a, log: logger.Named("naming")}
}

// Tier returns 1, 2 or 3 for the commit count
func Tier(totalCommits int) int {
	switch {
	case totalCommits > 1000:
		return 3
	case totalCommits > 500:
		return 2
	default:
		return 1
	}
}

// Suffix returns the tier word for the commit count
func Suffix(totalCommits int) string {
	switch Tier(totalCommits) {
	case 3:
		return SuffixTier3
	case 2:
		return SuffixTier2
	default:
		return SuffixTier1
	}
}

// Deterministic builds the table driven name
// resolved is false when the name carries a placeholder token
func Deterministic(language, color string, totalCommits int) (name string, resolved bool) {
	adj, okAdj := adjectives[language]
	if !okAdj {
		adj = PlaceholderAdjective
	}
	noun, okNoun := nounFor(color)
	if !okNoun {
		noun = PlaceholderNoun
	}
	return adj + noun + Connector + Suffix(totalCommits), okAdj && okNoun
}

// HasPlaceholder reports whether name still carries a placeholder token
func HasPlaceholder(name string) bool {
	return strings.Contains(name, PlaceholderAdjective) || strings.Contains(name, PlaceholderNoun)
}

// Name returns a non empty planet name and never fails
func (n *Namer) Name(ctx context.Context, language, color string, totalCommits int) string {
	name, resolved := Deterministic(language, color, totalCommits)
	if resolved || n == nil || n.assistant == nil {
		return name
	}

	text, ok := n.assistant.Generate(ctx, prompt(language, color, totalCommits))
	if !ok {
		return name
	}
	refined := Clean(text)
	if refined == "" {
		n.log.Debug().Str("language", language).Msg("assistant returned an empty name")
		return name
	}
	return refined
}

var cleanPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))
	},
}

// Clean strips newlines and control runes and trims surrounding space
func Clean(s string) string {
	s = strings.NewReplacer("\r\n", "", "\n", "", "\r", "").Replace(s)
	s = strings.ToValidUTF8(s, "")

	tr := cleanPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	cleanPool.Put(tr)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func prompt(language, color string, totalCommits int) string {
	return fmt.Sprintf(
		"Name a planet in Japanese using the shape <adjective><noun>の<suffix>. "+
			"The adjective reflects the programming language %q, the noun reflects the color %s, "+
			"and the suffix must be %q (commit tier %d). Answer with the name only.",
		language, color, Suffix(totalCommits), Tier(totalCommits))
}
