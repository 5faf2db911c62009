package configs

import (
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(env ENV) (gorm.Dialector, string, error) {
	switch strings.ToLower(env.DBDriver) {
	case "", "mysql":
		cfg := mysqldriver.NewConfig()
		cfg.User = env.DBUser
		cfg.Passwd = env.DBPassword
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(env.DBHost, env.DBPort)
		cfg.DBName = env.DBName
		cfg.ParseTime = true
		cfg.Loc = time.Local
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(cfg.FormatDSN()), fmt.Sprintf("mysql://%s@%s/%s", env.DBUser, cfg.Addr, env.DBName), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.DBHost,
			env.DBUser,
			env.DBPassword,
			env.DBName,
			env.DBPort,
		)
		return postgres.Open(dsn), fmt.Sprintf("postgres://%s@%s:%s/%s", env.DBUser, env.DBHost, env.DBPort, env.DBName), nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
}

// OpenConnection connects to the configured database, retrying while it comes up.
func OpenConnection(env ENV) (*gorm.DB, error) {
	dial, target, err := dialector(env)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Info
	if env.IsProduction() {
		logLevel = logger.Warn
	}

	maxRetries := env.DBMaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	retryDelay := env.DBRetryDelay

	for i := 0; i < maxRetries; i++ {
		log.Printf("Attempting to connect to database (Attempt %d/%d) at %s", i+1, maxRetries, target)
		db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					log.Println("✅ Database connection successful!")
					return db, nil
				}
			}

			log.Printf("❌ Failed to ping database: %v. Retrying in %v...", pingErr, retryDelay)
		} else {
			log.Printf("❌ Failed to open GORM connection: %v. Retrying in %v...", err, retryDelay)
		}

		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries (%s)", maxRetries, target)
}
