package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds client configuration loaded from environment.
type Config struct {
	Env          string
	APIAddr      string
	GatewayAddr  string
	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	ScyllaHosts  []string
	Keyspace     string
	PageSize     int
	StatePath    string
}

// Load parses environment variables into a Config with dev defaults
// matching the chat system's local compose setup.
func Load() Config {
	return Config{
		Env:          getEnv("APP_ENV", "dev"),
		APIAddr:      getEnv("API_ADDR", "http://localhost:8081"),
		GatewayAddr:  getEnv("GATEWAY_ADDR", "localhost:8080"),
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "localhost:19092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "chat-messages"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		ScyllaHosts:  splitAndTrim(getEnv("SCYLLA_HOSTS", "localhost:9042")),
		Keyspace:     getEnv("SCYLLA_KEYSPACE", "chat"),
		PageSize:     parseIntWithDefault(os.Getenv("CHAT_PAGE_SIZE"), 50),
		StatePath:    getEnv("CHAT_STATE_PATH", defaultStatePath()),
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chat-client-active"
	}
	return home + "/.chat-client-active"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIntWithDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
