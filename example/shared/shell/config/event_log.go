package config

import (
	"context"
	"errors"

	"github.com/dcbkit/dcb-runtime-go/eventstore"
	"github.com/dcbkit/dcb-runtime-go/eventstore/memengine"
	"github.com/dcbkit/dcb-runtime-go/eventstore/postgresengine"
	"github.com/dcbkit/dcb-runtime-go/eventstore/sqliteengine"
)

// Store is an opened engine. Snapshots is nil when snapshots are disabled.
type Store struct {
	Log       eventstore.EventLog
	Snapshots eventstore.SnapshotStore
	close     []func() error
}

// Close releases the connections of the engine.
func (s Store) Close() error {
	var err error
	for _, closeFn := range s.close {
		err = errors.Join(err, closeFn())
	}

	return err
}

// Migrator is implemented by the engines that own a schema.
type Migrator interface {
	CreateSchema(ctx context.Context) error
}

// OpenEventLog opens the engine named by cfg.Engine with the given observability.
func OpenEventLog(ctx context.Context, cfg Config, obs Observability) (Store, error) {
	var store Store
	var err error

	switch cfg.Engine {
	case EngineMemory:
		store, err = openMemory(obs)
	case EngineSQLite:
		store, err = openSQLite(ctx, cfg, obs)
	case EnginePostgres:
		store, err = openPostgres(ctx, cfg.Postgres, obs)
	default:
		err = ErrUnknownEngine
	}

	if err != nil {
		return Store{}, err
	}

	if !cfg.Snapshots {
		store.Snapshots = nil
	}

	return store, nil
}

func openMemory(obs Observability) (Store, error) {
	log, err := memengine.NewEventStore(memengine.WithLogger(obs.EventstoreLogger()), memengine.WithMetrics(obs.EventstoreMetrics()))
	if err != nil {
		return Store{}, err
	}

	return Store{Log: log, Snapshots: memengine.NewSnapshotStore()}, nil
}

func openSQLite(ctx context.Context, cfg Config, obs Observability) (Store, error) {
	es, err := sqliteengine.Open(ctx, cfg.SQLitePath, sqliteengine.WithLogger(obs.EventstoreLogger()), sqliteengine.WithMetrics(obs.EventstoreMetrics()))
	if err != nil {
		return Store{}, err
	}

	return Store{Log: es, Snapshots: es, close: []func() error{es.Close}}, nil
}

func openPostgres(ctx context.Context, cfg PostgresConfig, obs Observability) (Store, error) {
	options := []postgresengine.Option{
		postgresengine.WithLogger(obs.EventstoreLogger()),
		postgresengine.WithMetrics(obs.EventstoreMetrics()),
		postgresengine.WithTracing(obs.EventstoreTracing()),
	}

	switch cfg.Driver {
	case DriverPGX:
		return openPGX(ctx, cfg, options)

	case DriverSQL:
		db, err := cfg.OpenSQLDB(ctx)
		if err != nil {
			return Store{}, err
		}

		es, err := postgresengine.NewEventStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return Store{}, err
		}

		return Store{Log: es, Snapshots: es, close: []func() error{db.Close}}, nil

	case DriverSQLX:
		db, err := cfg.OpenSQLX(ctx)
		if err != nil {
			return Store{}, err
		}

		es, err := postgresengine.NewEventStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return Store{}, err
		}

		return Store{Log: es, Snapshots: es, close: []func() error{db.Close}}, nil

	default:
		return Store{}, ErrUnknownPostgresDriver
	}
}

func openPGX(ctx context.Context, cfg PostgresConfig, options []postgresengine.Option) (Store, error) {
	primary, err := cfg.OpenPGXPool(ctx, cfg.DSN())
	if err != nil {
		return Store{}, err
	}

	closers := []func() error{func() error { primary.Close(); return nil }}

	if cfg.ReplicaDSN == "" {
		es, err := postgresengine.NewEventStoreFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return Store{}, err
		}

		return Store{Log: es, Snapshots: es, close: closers}, nil
	}

	replica, err := cfg.OpenPGXPool(ctx, cfg.ReplicaDSN)
	if err != nil {
		primary.Close()
		return Store{}, err
	}
	closers = append(closers, func() error { replica.Close(); return nil })

	es, err := postgresengine.NewEventStoreFromPGXPoolAndReplica(primary, replica, options...)
	if err != nil {
		primary.Close()
		replica.Close()
		return Store{}, err
	}

	return Store{Log: es, Snapshots: es, close: closers}, nil
}
