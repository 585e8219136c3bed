// Package config reads settings from the environment through prefixed views
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gitplanet/internal/platform/logger"
)

// Conf reads keys under a prefix, New() is the unprefixed root
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix narrows the view, prefixes nest
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value, blank counts as unset
func (c Conf) lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(k)))
	return v, v != ""
}

// may parses k with parse, falling back to def when unset or unparsable
func may[T any](c Conf, k string, def T, parse func(string) (T, error)) T {
	s, ok := c.lookup(k)
	if !ok {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Interface("default", def).Msg("unparsable env, using default")
		return def
	}
	return v
}

// MustString panics when k is unset
func (c Conf) MustString(k string) string {
	v, ok := c.lookup(k)
	if !ok {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

// MayString returns def when k is unset
func (c Conf) MayString(k, def string) string {
	return may(c, k, def, func(s string) (string, error) { return s, nil })
}

// MayInt returns def when k is unset or not an integer
func (c Conf) MayInt(k string, def int) int { return may(c, k, def, strconv.Atoi) }

// MayBool accepts anything strconv.ParseBool does
func (c Conf) MayBool(k string, def bool) bool { return may(c, k, def, strconv.ParseBool) }

// MayDuration accepts Go duration syntax such as 250ms or 6h
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return may(c, k, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blanks, def when nothing is left
func (c Conf) MayCSV(k string, def []string) []string {
	s, ok := c.lookup(k)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
