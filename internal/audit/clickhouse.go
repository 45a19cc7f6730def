package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/sanjitgh/authorization-server-side/internal/config"
)

// Client writes auth audit events to ClickHouse over the native protocol.
type Client struct {
	conn     driver.Conn
	database string
}

func NewClient(cfg config.ClickHouseConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     cfg.MaxConns,
		MaxIdleConns:     cfg.MaxConns / 2,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return &Client{conn: conn, database: cfg.Database}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// AuthEvent is one row in the audit table, the stream event plus the
// user-agent breakdown.
type AuthEvent struct {
	EventID    string
	EventType  string
	UserID     string
	UserName   string
	OccurredAt time.Time

	IPAddress  string
	UserAgent  string
	Browser    string
	OS         string
	DeviceType string
}

// EnsureSchema creates the audit table if it is missing.
func (c *Client) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.auth_events (
			event_id String,
			event_type String,
			user_id String,
			user_name String,
			occurred_at DateTime,
			ip_address String,
			user_agent String,
			browser String,
			os String,
			device_type String
		) ENGINE = MergeTree()
		ORDER BY (event_type, occurred_at)
	`, c.database)

	if err := c.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create auth_events table: %w", err)
	}
	return nil
}

func (c *Client) InsertAuthEvents(ctx context.Context, events []AuthEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf(`INSERT INTO %s.auth_events (
		event_id, event_type, user_id, user_name, occurred_at,
		ip_address, user_agent, browser, os, device_type
	)`, c.database))
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.EventType,
			event.UserID,
			event.UserName,
			event.OccurredAt,
			event.IPAddress,
			event.UserAgent,
			event.Browser,
			event.OS,
			event.DeviceType,
		)
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}
