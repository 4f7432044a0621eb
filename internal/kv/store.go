// Package kv holds the small string-keyed store that survives between survey
// sessions on one device: the submission map and the language preference.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/mascot-survey/internal/db"
)

// Store is a string key/value store. Get reports ok=false for a key that was
// never set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
)

var ErrUnsupportedDriver = errors.New("kv: unsupported driver")

// Open builds the store named by driver. The returned close func releases any
// connection the store holds and is never nil.
func Open(ctx context.Context, driver Driver, dsn string) (Store, func() error, error) {
	noop := func() error { return nil }
	driver = Driver(strings.ToLower(strings.TrimSpace(string(driver))))
	switch driver {
	case DriverMemory:
		return NewMemory(), noop, nil
	case DriverFile, "":
		s, err := NewFile(dsn)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case DriverSQLite, DriverPostgres:
		d := db.Driver(driver)
		conn, err := db.Open(ctx, d, dsn)
		if err != nil {
			return nil, noop, fmt.Errorf("kv: open %s: %w", driver, err)
		}
		return NewSQL(conn), conn.Close, nil
	case DriverRedis:
		s, err := NewRedis(dsn)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
