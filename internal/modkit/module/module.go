// Package module is the contract between the api composition and its modules
package module

import phttp "gitplanet/internal/platform/net/http"

// Module mounts routes and exports ports for other modules
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
