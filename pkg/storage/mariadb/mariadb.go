package mariadb

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/c14220110/hms-backend/config"
	"github.com/go-sql-driver/mysql"
)

var (
	db      *sql.DB
	once    sync.Once
	connErr error
)

// DSN builds the driver connection string. Times are parsed in UTC.
func DSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = false
	return mc.FormatDSN()
}

// Connect opens the MariaDB pool once and pings it.
func Connect(cfg *config.Config) (*sql.DB, error) {
	once.Do(func() {
		var err error
		db, err = sql.Open("mysql", DSN(cfg))
		if err != nil {
			connErr = fmt.Errorf("open database: %w", err)
			return
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err = db.Ping(); err != nil {
			connErr = fmt.Errorf("ping database: %w", err)
		}
	})
	return db, connErr
}

// GetDB returns the pool opened by Connect.
func GetDB() *sql.DB {
	return db
}
