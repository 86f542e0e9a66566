package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	MongoURI          string
	MongoDBName       string
	TasksCollection   string
	UsersCollection   string
	CORSOrigin        string
	RequestTimeout    time.Duration
	LogFile           string
	LogLevel          string
	CassandraHosts    string
	CassandraKeyspace string
}

// NotificationsEnabled reports whether a Cassandra host was configured.
func (c Config) NotificationsEnabled() bool {
	return c.CassandraHosts != ""
}

// Load reads the environment, after applying the given .env files if they exist.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", file, err)
		}
	}

	cfg := Config{
		ServerPort:        os.Getenv("SERVER_PORT"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "coder_management"),
		TasksCollection:   getEnv("MONGO_TASKS_COLLECTION", "tasks"),
		UsersCollection:   getEnv("MONGO_USERS_COLLECTION", "users"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		LogFile:           getEnv("LOG_FILE", "logs/tasks.log"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CassandraHosts:    strings.TrimSpace(os.Getenv("CASS_DB")),
		CassandraKeyspace: getEnv("CASS_KEYSPACE", "notifications"),
	}

	var missing []string
	if cfg.ServerPort == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%s is not set in the environment variables", strings.Join(missing, ", "))
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
