package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USER", "someone-else")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "retail", cfg.Database.User)
	assert.Equal(t, "retail", cfg.Database.Name)
	assert.EqualValues(t, 5, cfg.Database.ConnectRetries)
	assert.True(t, cfg.App.Dev)
	assert.True(t, cfg.App.AllowNegativeStock)
	assert.NotEmpty(t, cfg.App.SessionSecret)
	assert.Equal(t, "fr", cfg.Invoice.Lang)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "retail.orders", cfg.Kafka.OrderTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("ALLOW_NEGATIVE_STOCK", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("INVOICE_LANG", "en")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
	assert.False(t, cfg.App.AllowNegativeStock)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "en", cfg.Invoice.Lang)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("DEV", "false")
	t.Setenv("SESSION_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "retail", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=retail sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/retail?sslmode=disable", d.URL())
}
