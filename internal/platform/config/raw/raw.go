// Package raw reads env during bootstrap, before the logger exists.
// It must not import logger.
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed env view
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix narrows the view
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool treats 1, true and yes as true, any other value as false
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(c.Get(key, "")) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// GetInt accepts non negative integers only
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.Get(key, ""))
	if err != nil || n < 0 {
		return def
	}
	return n
}
