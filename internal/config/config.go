package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration.
type Config struct {
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Auth      AuthConfig
	MQTT      MQTTConfig
	Geo       GeoConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// HTTPConfig contains API server settings.
type HTTPConfig struct {
	Port string
}

// MongoConfig contains database settings.
type MongoConfig struct {
	URI      string
	Database string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
	AdminEmails []string // sign-ups with these emails get the admin role
}

// MQTTConfig contains like-event broker settings. An empty Broker disables publishing.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// GeoConfig contains the metro registry source and the default reference point
// that cafe distances are measured from.
type GeoConfig struct {
	RegistryPath string
	ReferenceLat float64
	ReferenceLon float64
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	MaxRequests   int
	WindowSeconds int
}

// LogConfig contains logrus settings.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

const defaultJWTSecret = "dev-secret-change-me"

// Load reads a .env file if present and builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables with sensible defaults.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		HTTP: HTTPConfig{
			Port: getEnv("PORT", "8080"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "cafes"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
			AdminEmails: getEnvList("ADMIN_EMAILS"),
		},
		MQTT: MQTTConfig{
			Broker:      getEnv("MQTT_BROKER", ""),
			ClientID:    getEnv("MQTT_CLIENT_ID", "cafe-discovery-api"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "cafes-app"),
		},
		Geo: GeoConfig{
			RegistryPath: getEnv("METRO_REGISTRY_PATH", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Auth.TokenExpiry, err = getEnvDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Geo.ReferenceLat, err = getEnvFloat("REFERENCE_LAT", 34.06); err != nil {
		return nil, err
	}
	if cfg.Geo.ReferenceLon, err = getEnvFloat("REFERENCE_LON", -118.23); err != nil {
		return nil, err
	}
	if !inRange(cfg.Geo.ReferenceLat, 90) {
		return nil, fmt.Errorf("invalid REFERENCE_LAT %v: must be within [-90, 90]", cfg.Geo.ReferenceLat)
	}
	if !inRange(cfg.Geo.ReferenceLon, 180) {
		return nil, fmt.Errorf("invalid REFERENCE_LON %v: must be within [-180, 180]", cfg.Geo.ReferenceLon)
	}
	if cfg.RateLimit.MaxRequests, err = getEnvInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.WindowSeconds, err = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == defaultJWTSecret {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	return cfg, nil
}

// IsAdminEmail reports whether email is configured as an administrator.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Log.Level, err)
	}
	log.SetLevel(level)
	if c.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, Mongo: %s/%s, MQTT: %q, Registry: %q, Reference: (%g, %g), Auth: *** (masked) ***}",
		c.HTTP.Port, maskURI(c.Mongo.URI), c.Mongo.Database, c.MQTT.Broker, c.Geo.RegistryPath,
		c.Geo.ReferenceLat, c.Geo.ReferenceLon)
}

// maskURI hides credentials in a connection string.
func maskURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		return scheme + "://***@" + rest[at+1:]
	}
	return uri
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %w", key, err)
		}
		return f, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}
