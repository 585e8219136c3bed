package modkit

import "net/http"

// Option adjusts how a module is built
type Option func(*buildCfg)

type buildCfg struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	ports  any
}

// WithName names the module for logs and the port registry
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPrefix sets the route prefix, empty means the module mounts no routes
func WithPrefix(prefix string) Option {
	return func(c *buildCfg) { c.prefix = prefix }
}

// WithMiddlewares wraps only this module's routes, in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithPorts hands the module the ports it imports, the module owns type T
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}
