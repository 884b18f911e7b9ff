package configs

import (
	"fmt"
	"net"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxRetries = 10
	retryDelay = 5 * time.Second
)

func OpenConnection(env ENV) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if env.IsProduction() {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	switch env.DBDriver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(env.SQLitePath), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %s: %w", env.SQLitePath, err)
		}
		log.Info().Str("path", env.SQLitePath).Msg("SQLite database opened")
		return db, nil
	case "mysql":
		return openMySQL(env, cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
}

func openMySQL(env ENV, cfg *gorm.Config) (*gorm.DB, error) {
	mc := gomysql.NewConfig()
	mc.User = env.DBUser
	mc.Passwd = env.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(env.DBHost, env.DBPort)
	mc.DBName = env.DBName
	mc.ParseTime = true
	// report matched rather than changed rows so a no-op status update is not
	// mistaken for a missing order
	mc.ClientFoundRows = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	dsn := mc.FormatDSN()

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		log.Info().Int("attempt", i+1).Int("max", maxRetries).Str("host", env.DBHost).Msg("Attempting to connect to database")
		db, err := gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					log.Info().Msg("Database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warn().Err(pingErr).Dur("retry_in", retryDelay).Msg("Failed to ping database")
		} else {
			lastErr = err
			log.Warn().Err(err).Dur("retry_in", retryDelay).Msg("Failed to open GORM connection")
		}

		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxRetries, lastErr)
}
