package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"

	PolicyAllow  = "allow"
	PolicyReject = "reject"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"db"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf(":%d", s.Port) }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory | postgres | firestore
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// FirebaseConfig apunta a las APIs REST del proveedor hosteado.
// Las URLs vacías usan los endpoints públicos por defecto de cada adapter.
type FirebaseConfig struct {
	APIKey        string `mapstructure:"api_key"`
	ProjectID     string `mapstructure:"project_id"`
	StorageBucket string `mapstructure:"storage_bucket"`
	AuthURL       string `mapstructure:"auth_url"`
	FirestoreURL  string `mapstructure:"firestore_url"`
	StorageURL    string `mapstructure:"storage_url"`
}

type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"` // vacío = sin guard distribuido
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	ClaimTTL time.Duration `mapstructure:"claim_ttl"`
}

type ScheduleConfig struct {
	Timezone        string        `mapstructure:"timezone"`
	Tolerance       time.Duration `mapstructure:"tolerance"`
	GracePeriod     time.Duration `mapstructure:"grace_period"`
	DuplicatePolicy string        `mapstructure:"duplicate_policy"`
	MaxWindowDays   int           `mapstructure:"max_window_days"`
}

// Location resuelve la zona horaria del shelter.
func (s ScheduleConfig) Location() (*time.Location, error) {
	tz := strings.TrimSpace(s.Timezone)
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

type AuthConfig struct {
	// DevMode acepta X-Debug-User-ID / X-Debug-Shelter-ID sin verificar tokens.
	DevMode bool `mapstructure:"dev_mode"`
}

// Load lee defaults, luego el archivo (si existe) y por último env SHELTER_*.
// Prioridad: env > archivo > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("db.dsn", "")

	v.SetDefault("firebase.api_key", "")
	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.storage_bucket", "")
	v.SetDefault("firebase.auth_url", "")
	v.SetDefault("firebase.firestore_url", "")
	v.SetDefault("firebase.storage_url", "")

	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.retry_count", 2)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.claim_ttl", "2h")

	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.tolerance", "60m")
	v.SetDefault("schedule.grace_period", "60m")
	v.SetDefault("schedule.duplicate_policy", PolicyAllow)
	v.SetDefault("schedule.max_window_days", 31)

	v.SetDefault("auth.dev_mode", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SHELTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.Schedule.DuplicatePolicy = strings.ToLower(strings.TrimSpace(cfg.Schedule.DuplicatePolicy))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rechaza combinaciones que no pueden arrancar.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be in 1-65535, got %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("config: db.dsn is required for storage.backend=postgres")
		}
	case BackendFirestore:
		if strings.TrimSpace(c.Firebase.ProjectID) == "" {
			return fmt.Errorf("config: firebase.project_id is required for storage.backend=firestore")
		}
		if strings.TrimSpace(c.Firebase.APIKey) == "" {
			return fmt.Errorf("config: firebase.api_key is required for storage.backend=firestore")
		}
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}

	switch c.Schedule.DuplicatePolicy {
	case PolicyAllow, PolicyReject:
	default:
		return fmt.Errorf("config: unknown schedule.duplicate_policy %q", c.Schedule.DuplicatePolicy)
	}

	if c.Schedule.Tolerance < 0 {
		return fmt.Errorf("config: schedule.tolerance must not be negative")
	}
	if c.Schedule.GracePeriod < 0 {
		return fmt.Errorf("config: schedule.grace_period must not be negative")
	}
	if c.Schedule.MaxWindowDays <= 0 {
		return fmt.Errorf("config: schedule.max_window_days must be positive")
	}
	if c.HTTP.Timeout < 0 || c.HTTP.RetryCount < 0 {
		return fmt.Errorf("config: http.timeout and http.retry_count must not be negative")
	}
	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("config: schedule.timezone: %w", err)
	}
	return nil
}
