package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type testDatabaseConfig struct {
	lifetime time.Duration
	timeout  time.Duration
}

func (c testDatabaseConfig) GetDatabaseURL() string               { return "postgres://portal@localhost:5432/bookings" }
func (c testDatabaseConfig) GetDBMaxConns() int32                 { return 8 }
func (c testDatabaseConfig) GetDBMinConns() int32                 { return 1 }
func (c testDatabaseConfig) GetDBConnMaxLifetime() time.Duration  { return c.lifetime }
func (c testDatabaseConfig) GetDBStatementTimeout() time.Duration { return c.timeout }

func TestConfigurePoolAppliesSettings(t *testing.T) {
	cfg := testDatabaseConfig{lifetime: time.Hour, timeout: 10 * time.Second}
	pc, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	configurePool(pc, cfg)

	if pc.MaxConns != 8 || pc.MinConns != 1 {
		t.Fatalf("conns = %d/%d, want 8/1", pc.MaxConns, pc.MinConns)
	}
	if pc.MaxConnLifetime != time.Hour || pc.MaxConnIdleTime != 30*time.Minute {
		t.Fatalf("lifetime = %s idle = %s", pc.MaxConnLifetime, pc.MaxConnIdleTime)
	}
	params := pc.ConnConfig.RuntimeParams
	if params["statement_timeout"] != "10000" || params["application_name"] != applicationName {
		t.Fatalf("runtime params = %v", params)
	}
}

func TestConfigurePoolWithoutStatementTimeout(t *testing.T) {
	cfg := testDatabaseConfig{}
	pc, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	configurePool(pc, cfg)

	if _, ok := pc.ConnConfig.RuntimeParams["statement_timeout"]; ok {
		t.Fatal("statement timeout set without configuration")
	}
}
