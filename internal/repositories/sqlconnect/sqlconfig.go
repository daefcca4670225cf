package sqlconnect

import (
	"database/sql"
	"embed"
	"fmt"
	"net"
	"time"

	"khata_ledger/pkg/utils"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var DB *sql.DB

// DSNFromEnv builds the MySQL DSN. Times are parsed into time.Time and read
// and written in UTC.
func DSNFromEnv() string {
	cfg := mysql.NewConfig()
	cfg.User = utils.GetEnv("DB_USER", "root")
	cfg.Passwd = utils.GetEnv("DB_PASSWORD", "")
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(utils.GetEnv("DB_HOST", "127.0.0.1"), utils.GetEnv("DB_PORT", "3306"))
	cfg.DBName = utils.GetEnv("DB_NAME", "khata_ledger")
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

func ConnectDb() error {
	if DB != nil {
		return nil
	}

	utils.Logger.Info("Connecting to MySQL...")

	var err error
	DB, err = sql.Open("mysql", DSNFromEnv())
	if err != nil {
		return fmt.Errorf("failed to open DB connection: %w", err)
	}

	DB.SetMaxOpenConns(utils.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	DB.SetMaxIdleConns(utils.GetEnvInt("DB_MAX_IDLE_CONNS", 5))
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping DB: %w", err)
	}

	if err = RunMigrations(DB); err != nil {
		return err
	}

	utils.Logger.Info("Connected to MySQL")
	return nil
}

func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(utils.Logger)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
