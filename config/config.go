// ABOUTME: Layered configuration for dealboard
// ABOUTME: Defaults, optional YAML file, .env, DEALBOARD_* env vars, then command-line flags
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/harperreed/dealboard/charm"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppName   = "dealboard"
	EnvPrefix = "DEALBOARD"

	BackendSQL    = "sql"
	BackendMemory = "memory"
	BackendKV     = "kv"
)

// Config is the complete runtime configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	DB     DBConfig     `mapstructure:"db"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
	Export ExportConfig `mapstructure:"export"`
	Charm  charm.Config `mapstructure:"charm"`
}

type StoreConfig struct {
	// Backend is one of sql, memory, kv
	Backend string `mapstructure:"backend"`
	// Seed loads demo records into an empty store
	Seed bool `mapstructure:"seed"`
}

type DBConfig struct {
	// Driver is sqlite3 or pgx
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ExportConfig struct {
	// Dir is the filesystem target used when no bucket is set
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// Flags are the global command-line overrides. Zero values leave the loaded
// configuration alone.
type Flags struct {
	DBPath   string
	Backend  string
	Port     int
	LogLevel string
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	charmCfg := charm.DefaultConfig()
	return &Config{
		Store:  StoreConfig{Backend: BackendSQL},
		DB:     DBConfig{Driver: "sqlite3", Path: DefaultDatabasePath()},
		HTTP:   HTTPConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "text"},
		Export: ExportConfig{Dir: filepath.Join(xdg.DataHome, AppName, "exports"), S3: S3Config{Region: "us-east-1"}},
		Charm:  *charmCfg,
	}
}

// DefaultDatabasePath is the sqlite file under the XDG data directory.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

// ConfigFile is the default location of the YAML config file.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.seed", d.Store.Seed)

	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.dsn", d.DB.DSN)

	v.SetDefault("http.port", d.HTTP.Port)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.s3.bucket", d.Export.S3.Bucket)
	v.SetDefault("export.s3.region", d.Export.S3.Region)
	v.SetDefault("export.s3.endpoint", d.Export.S3.Endpoint)
	v.SetDefault("export.s3.path_style", d.Export.S3.PathStyle)

	v.SetDefault("charm.host", d.Charm.Host)
	v.SetDefault("charm.auto_sync", d.Charm.AutoSync)
	v.SetDefault("charm.offline", d.Charm.Offline)
	v.SetDefault("charm.stale_threshold", d.Charm.StaleThreshold)
}

// Load builds the configuration. An empty path reads the default config file
// if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = ConfigFile()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || isMissingFile(err)) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Apply layers command-line flags over the loaded values.
func (c *Config) Apply(f Flags) {
	if f.DBPath != "" {
		c.DB.Path = f.DBPath
	}
	if f.Backend != "" {
		c.Store.Backend = f.Backend
	}
	if f.Port != 0 {
		c.HTTP.Port = f.Port
	}
	if f.LogLevel != "" {
		c.Log.Level = f.LogLevel
	}
}

// DataSource is what db.Open expects for the configured driver.
func (c *Config) DataSource() string {
	if c.DB.Driver == "pgx" {
		return c.DB.DSN
	}
	return c.DB.Path
}
