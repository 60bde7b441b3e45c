package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DataDir       string
	StorageDriver string // "file", "memory", "redis", "postgres"
	SnapshotKey   string // hex key; empty keeps the legacy reversible codec
	RedisURL      string
	PostgresURL   string
	JWTSigningKey string // empty disables bearer auth on the HTTP surface
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
var ShutdownTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("SENTINELA_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("SENTINELA_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	driver := os.Getenv("SENTINELA_STORAGE_DRIVER")
	if driver == "" {
		driver = "file"
	}

	return Server{
		Addr:          addr,
		DataDir:       dataDir,
		StorageDriver: driver,
		SnapshotKey:   os.Getenv("SENTINELA_SNAPSHOT_KEY"),
		RedisURL:      os.Getenv("SENTINELA_REDIS_URL"),
		PostgresURL:   os.Getenv("SENTINELA_POSTGRES_URL"),
		JWTSigningKey: os.Getenv("SENTINELA_JWT_SIGNING_KEY"),
	}
}
