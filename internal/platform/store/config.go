package store

import (
	"time"

	"gitplanet/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot guard knobs, zero means default
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag are reported to the server as client info
	ClientName string
	ClientTag  string
}

// FromConfig reads SERVICE_PGSQL_ and SERVICE_CLICKHOUSE_ values from root
// clickhouse stays off unless SERVICE_CLICKHOUSE_ENABLED is set
func FromConfig(root config.Conf, app, tag string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        true,
			URL:            pg.MustString("DBURL"),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 0),
		},
		CH: CHConfig{
			Enabled:    ch.MayBool("ENABLED", false),
			URL:        ch.MayString("DBURL", ""),
			ClientName: app,
			ClientTag:  tag,
		},
	}
}
