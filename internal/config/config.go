package config

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/runnerkit/hello-service/internal/domain"
)

// Config holds all runtime configuration. It is built once at startup by
// Load and passed by pointer; nothing mutates it afterwards.
type Config struct {
	// Application
	SecretKey    string
	Debug        bool
	AllowedHosts []string
	Environment  string
	Ping         string

	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBSSLMode  string
	DBMaxConns int32
	// DBConnectTimeout bounds each dial. It stays below WriteTimeout so a
	// failed readiness probe still reaches the client.
	DBConnectTimeout time.Duration

	// Object storage
	S3Bucket           string
	S3Region           string
	S3CustomDomain     string
	S3ObjectParameters map[string]string

	// Probes and background work
	ProbeRateLimit int
	ProbeInterval  time.Duration
	UploadWorkers  int

	// Tracing is disabled when the endpoint is empty.
	OTLPEndpoint string
}

// Required lists the variables that must be present and non-empty.
var Required = []string{
	"SECRET_KEY",
	"DEBUG",
	"ALLOWED_HOSTS",
	"DB_NAME",
	"DB_USERNAME",
	"DB_PASSWORD",
	"DB_HOST",
	"DB_PORT",
	"AWS_STORAGE_BUCKET_NAME",
	"AWS_S3_REGION_NAME",
	"AWS_S3_CUSTOM_DOMAIN",
	"AWS_S3_OBJECT_PARAMETERS",
}

// Load reads configuration from an optional YAML file and the process
// environment. Environment values win over the file. Keys in the file are
// the lower-cased variable names (db_host, allowed_hosts, ...).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var missing []string
	for _, name := range Required {
		if raw(k, name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, strings.Join(missing, ", "))
	}

	debug, err := strconv.ParseBool(raw(k, "DEBUG"))
	if err != nil {
		return nil, fmt.Errorf("%w: DEBUG must be a boolean, got %q", domain.ErrInvalidConfig, raw(k, "DEBUG"))
	}

	params, err := objectParameters(k)
	if err != nil {
		return nil, err
	}

	maxConns := getInt(k, "DB_MAX_CONNS", 10)
	if maxConns < 1 || maxConns > math.MaxInt32 {
		return nil, fmt.Errorf("%w: DB_MAX_CONNS must be between 1 and %d, got %d", domain.ErrInvalidConfig, math.MaxInt32, maxConns)
	}

	cfg := &Config{
		SecretKey:    raw(k, "SECRET_KEY"),
		Debug:        debug,
		AllowedHosts: list(k, "ALLOWED_HOSTS"),
		Environment:  getString(k, "ENVIRONMENT", "development"),
		Ping:         getString(k, "PING", "NO_SECRET"),

		HTTPPort:        getString(k, "PORT", "8080"),
		ReadTimeout:     getDuration(k, "READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration(k, "WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration(k, "SHUTDOWN_TIMEOUT", 30*time.Second),

		DBName:     raw(k, "DB_NAME"),
		DBUser:     raw(k, "DB_USERNAME"),
		DBPassword: raw(k, "DB_PASSWORD"),
		DBHost:     raw(k, "DB_HOST"),
		DBPort:     raw(k, "DB_PORT"),
		DBSSLMode:  getString(k, "DB_SSLMODE", "disable"),
		DBMaxConns: int32(maxConns),

		DBConnectTimeout: getDuration(k, "DB_CONNECT_TIMEOUT", 5*time.Second),

		S3Bucket:           raw(k, "AWS_STORAGE_BUCKET_NAME"),
		S3Region:           raw(k, "AWS_S3_REGION_NAME"),
		S3CustomDomain:     raw(k, "AWS_S3_CUSTOM_DOMAIN"),
		S3ObjectParameters: params,

		ProbeRateLimit: getInt(k, "PROBE_RATE_LIMIT", 50),
		ProbeInterval:  getDuration(k, "PROBE_INTERVAL", 30*time.Second),
		UploadWorkers:  getInt(k, "UPLOAD_WORKERS", 4),

		OTLPEndpoint: raw(k, "OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if _, err := strconv.ParseUint(cfg.DBPort, 10, 16); err != nil {
		return nil, fmt.Errorf("%w: DB_PORT must be a port number, got %q", domain.ErrInvalidConfig, cfg.DBPort)
	}
	if len(cfg.AllowedHosts) == 0 {
		return nil, fmt.Errorf("%w: ALLOWED_HOSTS", domain.ErrConfigurationMissing)
	}
	if cfg.ProbeInterval <= 0 {
		return nil, fmt.Errorf("%w: PROBE_INTERVAL must be positive, got %s", domain.ErrInvalidConfig, cfg.ProbeInterval)
	}
	if cfg.UploadWorkers < 1 {
		return nil, fmt.Errorf("%w: UPLOAD_WORKERS must be at least 1, got %d", domain.ErrInvalidConfig, cfg.UploadWorkers)
	}
	if cfg.WriteTimeout <= 0 {
		return nil, fmt.Errorf("%w: WRITE_TIMEOUT must be positive, got %s", domain.ErrInvalidConfig, cfg.WriteTimeout)
	}
	if cfg.DBConnectTimeout < time.Second || cfg.DBConnectTimeout >= cfg.WriteTimeout {
		return nil, fmt.Errorf("%w: DB_CONNECT_TIMEOUT must be at least 1s and below WRITE_TIMEOUT (%s), got %s",
			domain.ErrInvalidConfig, cfg.WriteTimeout, cfg.DBConnectTimeout)
	}

	return cfg, nil
}

// DatabaseURL assembles a postgres:// connection string from the parts.
// connect_timeout is in whole seconds and omitted when unset.
func (c *Config) DatabaseURL() string {
	q := url.Values{"sslmode": {c.DBSSLMode}}
	if secs := int(c.DBConnectTimeout / time.Second); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.HTTPPort }

func key(name string) string { return strings.ToLower(name) }

// raw returns the trimmed value for name, flattening YAML lists and maps.
func raw(k *koanf.Koanf, name string) string {
	switch v := k.Get(key(name)).(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func list(k *koanf.Koanf, name string) []string {
	var out []string
	for _, p := range strings.Split(raw(k, name), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func objectParameters(k *koanf.Koanf) (map[string]string, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw(k, "AWS_S3_OBJECT_PARAMETERS")), &decoded); err != nil {
		return nil, fmt.Errorf("%w: AWS_S3_OBJECT_PARAMETERS must be a JSON object: %v", domain.ErrInvalidConfig, err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: AWS_S3_OBJECT_PARAMETERS", domain.ErrConfigurationMissing)
	}

	names := make([]string, 0, len(decoded))
	for n := range decoded {
		names = append(names, n)
	}
	sort.Strings(names)

	params := make(map[string]string, len(decoded))
	for _, n := range names {
		switch v := decoded[n].(type) {
		case string:
			params[n] = v
		case float64, bool:
			params[n] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("%w: AWS_S3_OBJECT_PARAMETERS.%s must be a scalar", domain.ErrInvalidConfig, n)
		}
	}
	return params, nil
}

func getString(k *koanf.Koanf, name, defaultVal string) string {
	if v := raw(k, name); v != "" {
		return v
	}
	return defaultVal
}

func getInt(k *koanf.Koanf, name string, defaultVal int) int {
	if v := raw(k, name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(k *koanf.Koanf, name string, defaultVal time.Duration) time.Duration {
	if v := raw(k, name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
