package config

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// OpenSQLX opens and pings a sqlx handle on the lib/pq driver.
func (c PostgresConfig) OpenSQLX(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", c.DSN())
	if err != nil {
		return nil, err
	}

	c.configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
