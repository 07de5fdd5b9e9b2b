// Package config reads the process configuration from the environment and opens the configured event log.
//
// Variables are prefixed with DCB_, e.g. DCB_ENGINE=postgres DCB_POSTGRES_HOST=db DCB_POSTGRES_DRIVER=pgx.
package config
