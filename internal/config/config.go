// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	JWTSecretKey   string
	DatabasePath   string
	Environment    string
	LogLevel       string
	TokenTTL       time.Duration
	AllowedOrigins []string
	// Outbound frames buffered per websocket before the connection is dropped.
	WSSendBuffer int

	AuthRateLimitAttempts int
	AuthRateLimitWindow   time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		JWTSecretKey:          getEnv("JWT_SECRET_KEY", ""),
		DatabasePath:          getEnv("DATABASE_PATH", "bazaar.db"),
		Environment:           env,
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		TokenTTL:              getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		AllowedOrigins:        getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		WSSendBuffer:          getEnvAsInt("WS_SEND_BUFFER", 128),
		AuthRateLimitAttempts: getEnvAsInt("AUTH_RATE_LIMIT_ATTEMPTS", 5),
		AuthRateLimitWindow:   getEnvAsDuration("AUTH_RATE_LIMIT_WINDOW", 15*time.Minute),
	}
}

// Validate reports the settings that must be present before the server starts.
func (c *Config) Validate() error {
	missing := []string{}
	if isProduction(c.Environment) && c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.WSSendBuffer)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
