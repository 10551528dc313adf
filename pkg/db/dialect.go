package db

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/geofin/countrypulse/internal/config"
	"github.com/glebarez/sqlite"
	sqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// tlsConfigName is the go-sql-driver profile registered when a CA cert is configured.
const tlsConfigName = "countrypulse"

// Dialect builds the gorm dialector for the configured database type.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		if cfg.DBCACert != "" {
			if err := registerTLSConfig(cfg.DBCACert); err != nil {
				return nil, err
			}
			dsn += "&tls=" + tlsConfigName
		}
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName + ".db"), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

func registerTLSConfig(caCert string) error {
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM([]byte(caCert)); !ok {
		return fmt.Errorf("failed to parse database CA certificate")
	}
	return sqldriver.RegisterTLSConfig(tlsConfigName, &tls.Config{RootCAs: pool})
}
