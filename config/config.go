package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for cart and wishlist state
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StoragePebble   = "pebble"
)

// Activity sinks
const (
	SinkNone  = "none"
	SinkFile  = "file"
	SinkKafka = "kafka"
	SinkBoth  = "both"
)

// Config holds all storefront configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Storage    StorageConfig    `yaml:"storage"`
	Identity   IdentityConfig   `yaml:"identity"`
	QuickOrder QuickOrderConfig `yaml:"quick_order"`
	Activity   ActivityConfig   `yaml:"activity"`
	Export     ExportConfig     `yaml:"export"`
	Images     ImagesConfig     `yaml:"images"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
	// PublicBaseURL is how headless Chrome reaches this server when exporting quotes
	PublicBaseURL   string `yaml:"public_base_url"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// BackendConfig configures the external REST backend.
type BackendConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	Timeout    string `yaml:"timeout"`
}

// StorageConfig selects where session carts and wishlists live.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // memory, postgres, pebble
	DatabaseURL string `yaml:"database_url"`
	PebbleDir   string `yaml:"pebble_dir"`
}

// IdentityConfig names the headers the identity proxy sets on signed-in requests.
type IdentityConfig struct {
	UserIDHeader    string `yaml:"user_id_header"`
	UserEmailHeader string `yaml:"user_email_header"`
}

// QuickOrderConfig configures the per-session quick order workspaces.
type QuickOrderConfig struct {
	WorkspaceTTL string `yaml:"workspace_ttl"`
}

// ActivityConfig configures quick order activity events.
type ActivityConfig struct {
	Sink           string `yaml:"sink"` // none, file, kafka, both
	Dir            string `yaml:"dir"`
	KafkaBootstrap string `yaml:"kafka_bootstrap"`
	Topic          string `yaml:"topic"`
}

// ExportConfig configures quote PDF export.
type ExportConfig struct {
	ChromePath   string `yaml:"chrome_path"`
	TemplatePath string `yaml:"template_path"`
}

// ImagesConfig configures the product thumbnail cache.
type ImagesConfig struct {
	CacheDir string `yaml:"cache_dir"`
	// AllowedHosts may serve product images besides the backend host
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			PublicBaseURL:   "http://localhost:8080",
			ShutdownTimeout: "10s",
		},
		Backend: BackendConfig{
			APIBaseURL: "http://localhost:4000",
			Timeout:    "15s",
		},
		Storage: StorageConfig{
			Backend:   StorageMemory,
			PebbleDir: "./data/storefront",
		},
		Identity: IdentityConfig{
			UserIDHeader:    "X-User-Id",
			UserEmailHeader: "X-User-Email",
		},
		QuickOrder: QuickOrderConfig{
			WorkspaceTTL: "2h",
		},
		Activity: ActivityConfig{
			Sink:  SinkNone,
			Dir:   "./data/activity",
			Topic: "storefront.quick-order",
		},
		Export: ExportConfig{
			TemplatePath: "templates/quote.html",
		},
		Images: ImagesConfig{
			CacheDir: "cache/images",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path (optional) over the defaults and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override the file
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		// PORT from some platforms includes a leading colon
		c.Server.Port = strings.TrimPrefix(port, ":")
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.Server.PublicBaseURL = v
	}

	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.Backend.APIBaseURL = v
	} else if v := os.Getenv("API_BASE_URL_PROD"); v != "" {
		c.Backend.APIBaseURL = v
	}
	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		c.Backend.Timeout = v
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PEBBLE_DIR"); v != "" {
		c.Storage.PebbleDir = v
	}
	if dsn := databaseURLFromEnv(); dsn != "" {
		c.Storage.DatabaseURL = dsn
	}

	if v := os.Getenv("IDENTITY_USER_ID_HEADER"); v != "" {
		c.Identity.UserIDHeader = v
	}
	if v := os.Getenv("IDENTITY_USER_EMAIL_HEADER"); v != "" {
		c.Identity.UserEmailHeader = v
	}

	if v := os.Getenv("ACTIVITY_SINK"); v != "" {
		c.Activity.Sink = strings.ToLower(v)
	}
	if v := os.Getenv("ACTIVITY_DIR"); v != "" {
		c.Activity.Dir = v
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP"); v != "" {
		c.Activity.KafkaBootstrap = v
	}
	if v := os.Getenv("ACTIVITY_TOPIC"); v != "" {
		c.Activity.Topic = v
	}

	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.Export.ChromePath = v
	}
	if v := os.Getenv("IMAGE_CACHE_DIR"); v != "" {
		c.Images.CacheDir = v
	}
	if v := os.Getenv("IMAGE_ALLOWED_HOSTS"); v != "" {
		c.Images.AllowedHosts = nil
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				c.Images.AllowedHosts = append(c.Images.AllowedHosts, h)
			}
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// databaseURLFromEnv returns DATABASE_URL or builds a DSN from the DB_* variables
func databaseURLFromEnv() string {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, os.Getenv("DB_PASSWORD"), dbname, sslmode)
}

// Validate checks option values that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if strings.TrimSpace(c.Backend.APIBaseURL) == "" {
		return fmt.Errorf("backend api_base_url is required")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage backend postgres requires DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
		}
	case StoragePebble:
		if c.Storage.PebbleDir == "" {
			return fmt.Errorf("storage backend pebble requires pebble_dir")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want memory, postgres or pebble)", c.Storage.Backend)
	}

	switch c.Activity.Sink {
	case SinkNone, SinkFile:
	case SinkKafka, SinkBoth:
		if c.Activity.KafkaBootstrap == "" {
			return fmt.Errorf("activity sink %s requires kafka_bootstrap", c.Activity.Sink)
		}
	default:
		return fmt.Errorf("unknown activity sink %q", c.Activity.Sink)
	}

	for name, d := range map[string]string{
		"backend timeout":           c.Backend.Timeout,
		"server shutdown_timeout":   c.Server.ShutdownTimeout,
		"quick_order workspace_ttl": c.QuickOrder.WorkspaceTTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}
	return nil
}

// BackendTimeout returns the per-request timeout for backend calls
func (c *Config) BackendTimeout() time.Duration {
	return mustDuration(c.Backend.Timeout, 15*time.Second)
}

// ShutdownTimeout returns the graceful shutdown budget
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// WorkspaceTTL returns how long an idle quick order workspace is kept
func (c *Config) WorkspaceTTL() time.Duration {
	return mustDuration(c.QuickOrder.WorkspaceTTL, 2*time.Hour)
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
