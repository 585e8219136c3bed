// Package palette resolves a programming language to the hex color used to paint a planet
// Lookup order
// 1 empty or Unknown short circuits to NeutralGray
// 2 static table of well known languages
// 3 injected cache of previously resolved languages
// 4 assistant fallback, parsed for the first #RRGGBB token
package palette

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gitplanet/internal/platform/logger"
)

// NeutralGray paints planets with no known language
const NeutralGray = "#8b949e"

// Unknown is the language label used when a user has no language data
const Unknown = "Unknown"

var hexToken = regexp.MustCompile(`#[0-9a-fA-F]{6}`)

// Assistant is the generative text collaborator
// ok is false when the assistant is unconfigured or produced nothing
type Assistant interface {
	Generate(ctx context.Context, prompt string) (text string, ok bool)
}

// Resolver maps languages to colors, safe for concurrent use
type Resolver struct {
	cache     Cache
	assistant Assistant
	log       *logger.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache injects the cache for assistant resolved colors
func WithCache(c Cache) Option { return func(r *Resolver) { r.cache = c } }

// WithAssistant injects the generative fallback
func WithAssistant(a Assistant) Option { return func(r *Resolver) { r.assistant = a } }

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option { return func(r *Resolver) { r.log = l } }

// New constructs a Resolver with a fresh MemoryCache unless one is injected
func New(opts ...Option) *Resolver {
	r := &Resolver{log: logger.Named("palette")}
	for _, o := range opts {
		o(r)
	}
	if r.cache == nil {
		r.cache = NewMemoryCache()
	}
	return r
}

// Resolve returns the display color for language and never fails
// Duplicate assistant calls for the same language may happen under concurrency
func (r *Resolver) Resolve(ctx context.Context, language string) string {
	lang := strings.TrimSpace(language)
	if lang == "" || lang == Unknown {
		return NeutralGray
	}
	if c, ok := Static(lang); ok {
		return c
	}
	if c, ok := r.cache.Get(lang); ok {
		return c
	}
	if r.assistant == nil {
		return NeutralGray
	}

	text, ok := r.assistant.Generate(ctx, prompt(lang))
	if !ok {
		return NeutralGray
	}
	c, ok := ExtractHex(text)
	if !ok {
		r.log.Debug().Str("language", lang).Msg("assistant answer had no hex color")
		return NeutralGray
	}
	r.cache.Set(lang, c)
	return c
}

// Cache exposes the resolver cache, mostly for diagnostics
func (r *Resolver) Cache() Cache { return r.cache }

// ExtractHex returns the first #RRGGBB token in s, lower cased
func ExtractHex(s string) (string, bool) {
	m := hexToken.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.ToLower(m), true
}

func prompt(lang string) string {
	return fmt.Sprintf(
		"Pick one color that represents the programming language %q. "+
			"Answer with a single hex code in the form #RRGGBB and nothing else.", lang)
}

// Assisted reports whether unknown languages are sent to the assistant
func (r *Resolver) Assisted() bool { return r.assistant != nil }
