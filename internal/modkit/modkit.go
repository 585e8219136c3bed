// Package modkit assembles API modules from shared dependencies
package modkit

import (
	"gitplanet/internal/modkit/module"
	"gitplanet/internal/modkit/repokit"
	"gitplanet/internal/platform/config"
	"gitplanet/internal/platform/logger"
	"gitplanet/internal/platform/store"
)

// Module is the contract the api composes
type Module = module.Module

// Deps are handed to every module constructor, CH may be nil
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
