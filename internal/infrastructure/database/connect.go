package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/helpers"
)

const (
	defaultConnectRetries = 15
	defaultConnectDelay   = 3 * time.Second
)

// Connect opens the master and replica pools described by cfg and pings the
// master, retrying until it answers or the attempts run out.
func Connect(cfg *config.DatabaseConfig) (*dbpg.DB, error) {
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = defaultConnectRetries
	}
	delay := time.Duration(cfg.ConnectRetryDelaySec) * time.Second
	if delay <= 0 {
		delay = defaultConnectDelay
	}

	var slaves []string
	if strings.TrimSpace(cfg.Slaves) != "" {
		slaves = helpers.SplitAndTrim(cfg.Slaves, ",")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeSec) * time.Second,
	}

	var (
		db  *dbpg.DB
		err error
	)
	for i := 0; i < retries; i++ {
		zlog.Logger.Info().Msgf("Database connection attempt %d/%d", i+1, retries)

		db, err = dbpg.New(cfg.DSN, slaves, opts)
		switch {
		case err != nil:
			zlog.Logger.Warn().Err(err).Msgf("dbpg.New failed on attempt %d/%d", i+1, retries)
			db = nil
		case db.Master == nil:
			err = fmt.Errorf("database.Master is nil")
			zlog.Logger.Warn().Err(err).Msgf("nil master connection on attempt %d/%d", i+1, retries)
			db = nil
		default:
			if pingErr := db.Master.Ping(); pingErr != nil {
				err = pingErr
				zlog.Logger.Warn().Err(pingErr).Msgf("db ping failed on attempt %d/%d", i+1, retries)
				Close(db)
				db = nil
			} else {
				zlog.Logger.Info().Int("replicas", len(slaves)).Msg("Database connection established successfully")
				return db, nil
			}
		}

		if i < retries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", retries, err)
}

// Close releases the master pool and every replica pool.
func Close(db *dbpg.DB) {
	if db == nil {
		return
	}
	if db.Master != nil {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("closing db master failed")
		}
	}
	for i, s := range db.Slaves {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			zlog.Logger.Error().Err(err).Int("slave_index", i).Msg("closing db slave failed")
		}
	}
}
