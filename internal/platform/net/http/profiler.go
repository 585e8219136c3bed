package http

import (
	stdhttp "net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix, for example /debug/pprof/
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	pprof := stdhttp.StripPrefix(prefix, chimw.Profiler()).ServeHTTP
	r.Get(prefix, pprof)
	r.Get(prefix+"/*", pprof)
}
