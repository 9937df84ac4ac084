package serv

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/hitsdb/hitsdb/core"
)

type Core = core.Config

// Config struct holds the service config values
type Config struct {
	// Core holds config values for the embedded engine
	Core `mapstructure:",squash"`

	// Serv holds config values for the HTTP service
	Serv `mapstructure:",squash"`

	hostPort string
	cpath    string
	vi       *viper.Viper
}

// Serv struct contains config values used by the service
type Serv struct {
	// AppName is the name of your application used in log and debug messages
	AppName string `mapstructure:"app_name"`

	// Production when set to true runs the service with production
	// level defaults
	Production bool

	// LogLevel can be debug, error, warn, info
	LogLevel string `mapstructure:"log_level"`

	// LogFormat can be json or simple
	LogFormat string `mapstructure:"log_format"`

	// HostPort to run the service on. Example localhost:8080
	HostPort string `mapstructure:"host_port"`

	// Host to run the service on
	Host string

	// Port to run the service on
	Port string

	// HTTPGZip enables gzip compression of API responses
	HTTPGZip bool `mapstructure:"http_compress"`

	// WatchAndReload enables reloading the service on config changes
	WatchAndReload bool `mapstructure:"reload_on_config_change"`

	// AllowedOrigins sets the HTTP CORS Access-Control-Allow-Origin header
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// AllowedHeaders sets the HTTP CORS Access-Control-Allow-Headers header
	AllowedHeaders []string `mapstructure:"cors_allowed_headers"`

	// DebugCORS enables debug logs for cors
	DebugCORS bool `mapstructure:"cors_debug"`

	// CacheControl sets the HTTP Cache-Control header on query responses
	CacheControl string `mapstructure:"cache_control"`

	// DataFile is an optional TSV, TSV.gz or Arrow snapshot loaded
	// into the store on startup
	DataFile string `mapstructure:"data_file"`

	// Bench holds the defaults for suite runs started over the API
	Bench struct {
		Iterations int
		Workers    int
		TimeLimit  time.Duration `mapstructure:"time_limit"`
	}

	// DB is the external database the SQL bench runner targets
	DB struct {
		Type string
		DSN  string
	} `mapstructure:"database"`
}

// ReadInConfig function reads in the config file for the environment
// specified in the GO_ENV environment variable.
func ReadInConfig(configFile string) (*Config, error) {
	return readInConfig(configFile, nil)
}

// ReadInConfigFS is ReadInConfig over a filesystem, used by tests.
func ReadInConfigFS(configFile string, fs afero.Fs) (*Config, error) {
	return readInConfig(configFile, fs)
}

func readInConfig(configFile string, fs afero.Fs) (*Config, error) {
	cpath := path.Dir(configFile)
	cfile := path.Base(configFile)

	vi := newViper(cpath, cfile)
	if fs != nil {
		vi.SetFs(fs)
	}

	if err := vi.ReadInConfig(); err != nil {
		return nil, err
	}

	inherits := vi.GetString("inherits")

	if inherits != "" {
		vi = newViper(cpath, inherits)
		if fs != nil {
			vi.SetFs(fs)
		}

		if err := vi.ReadInConfig(); err != nil {
			return nil, err
		}

		if vi.IsSet("inherits") {
			return nil, fmt.Errorf("inherited config (%s) cannot itself inherit (%s)",
				inherits,
				vi.GetString("inherits"))
		}

		vi.SetConfigName(cfile)

		if err := vi.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	c := &Config{vi: vi, cpath: cpath}

	if err := vi.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config, %v", err)
	}

	return c, nil
}

func newViper(configPath, configFile string) *viper.Viper {
	vi := viper.New()

	vi.SetEnvPrefix("HDB")
	vi.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vi.AutomaticEnv()

	vi.AddConfigPath(configPath)
	vi.SetConfigName(configFile)
	vi.AddConfigPath("./config")

	vi.SetDefault("host_port", "0.0.0.0:8080")
	vi.SetDefault("log_level", "info")
	vi.SetDefault("log_format", "json")

	vi.SetDefault("default_limit", 0)
	vi.SetDefault("plan_cache_size", 500)
	vi.SetDefault("result_cache_size", 0)

	vi.SetDefault("bench.iterations", 3)
	vi.SetDefault("bench.workers", 1)

	vi.SetDefault("database.type", "postgres")

	vi.SetDefault("env", "development")

	vi.BindEnv("env", "GO_ENV") //nolint: errcheck
	vi.BindEnv("host", "HOST")  //nolint: errcheck
	vi.BindEnv("port", "PORT")  //nolint: errcheck

	return vi
}

// GetConfigName returns the config file name for the environment in
// the GO_ENV environment variable.
func GetConfigName() string {
	ge := strings.ToLower(os.Getenv("GO_ENV"))

	switch {
	case strings.HasPrefix(ge, "pro"):
		return "prod"

	case strings.HasPrefix(ge, "sta"):
		return "stage"

	case strings.HasPrefix(ge, "tes"):
		return "test"
	}

	return "dev"
}

// RelPath resolves p against the config directory unless absolute.
func (c *Config) RelPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return path.Join(c.cpath, p)
}
