package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/sirupsen/logrus"
)

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseClient wraps a database/sql handle opened through the
// clickhouse-go std interface.
type ClickHouseClient struct {
	DB  *sql.DB
	log logrus.FieldLogger
}

func NewClickHouseDB(ctx context.Context, cfg ClickHouseConfig, log logrus.FieldLogger) (*ClickHouseClient, error) {
	if cfg.Addr == "" || cfg.Database == "" {
		return nil, fmt.Errorf("clickhouse address and database must be set")
	}

	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "folio-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	})
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.WithField("addr", cfg.Addr).Info("Successfully connected to ClickHouse database")
	return &ClickHouseClient{DB: db, log: log}, nil
}

func (c *ClickHouseClient) PingContext(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *ClickHouseClient) Close() {
	if c.DB == nil {
		return
	}
	if err := c.DB.Close(); err != nil {
		c.log.WithError(err).Error("Error closing ClickHouse connection")
		return
	}
	c.log.Info("ClickHouse connection closed")
}
