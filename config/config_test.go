package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
http:
  address: ":8080"
  swagger_dir: "./docs"
database:
  host: "localhost"
  port: 5432
  user: "flightbook"
  password: "secret"
  name: "flightbook"
  ssl_mode: "disable"
redis:
  addr: "localhost:6379"
  db: 0
kafka:
  brokers:
    - "localhost:9092"
  notifications_topic: "booking_notifications"
  flight_status_topic: "flight_status"
  group_id: "flightbook-worker"
booking:
  hold_ttl_minutes: 5
  search_cache_ttl_seconds: 60
worker:
  hold_sweep_minutes: 1
`
	assert.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "host=localhost port=5432 user=flightbook password=secret dbname=flightbook sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "booking_notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, 5*time.Minute, cfg.Booking.HoldTTL())
	assert.Equal(t, 60*time.Second, cfg.Booking.SearchCacheTTL())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.yaml")

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("http: [broken"), 0o644))

	cfg, err := LoadConfig(path)

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
