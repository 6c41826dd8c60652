package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "TECHSTORE_CONFIG_FILE"
	envPrefix         = "TECHSTORE"
)

type api struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type store struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type events struct {
	Enabled            bool     `mapstructure:"enabled"`
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	Topic              string   `mapstructure:"topic"`
	TLS                tlsFiles `mapstructure:"tls"`
}

type Config struct {
	LogLevel slog.Level `mapstructure:"log_level"`
	API      api        `mapstructure:"api"`
	Store    store      `mapstructure:"store"`
	Events   events     `mapstructure:"events"`
}

// Load reads the config file named by --config or TECHSTORE_CONFIG_FILE
// and returns it with the command line arguments left after the global
// flags. Without a config file the defaults are used.
func Load(args []string) (Config, []string) {
	cfg, rest, err := load(args)
	if err != nil {
		die(err)
	}
	return cfg, rest
}

func load(args []string) (Config, []string, error) {
	path, rest, err := parseArgs(args)
	if err != nil {
		return Config{}, nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, err
		}
	}

	var cfg Config
	err = v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, nil, err
	}

	return cfg, rest, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("store.driver", "leveldb")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.dsn", "")
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.seed_brokers", []string{})
	v.SetDefault("events.schema_registry_urls", []string{})
	v.SetDefault("events.topic", "techstore-activity")
	v.SetDefault("events.tls.ca", "")
	v.SetDefault("events.tls.cert", "")
	v.SetDefault("events.tls.key", "")
}

// parseArgs stops at the first command word, so command flags are left
// for the command itself.
func parseArgs(args []string) (string, []string, error) {
	cmdLine := pflag.NewFlagSet("techstore", pflag.ContinueOnError)
	cmdLine.SetInterspersed(false)
	arg := cmdLine.String("config", defaultConfigFile(), "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", nil, err
	}

	path := *arg
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		path = env
	}

	if !cmdLine.Changed("config") && path == defaultConfigFile() {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return path, cmdLine.Args(), nil
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "techstore", "config.yaml")
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".techstore", "store")
	}
	return filepath.Join(dir, "techstore", "store")
}

func die(err error) {
	fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print(w io.Writer) {
	tamplate := `
	General:
	LogLevel=%q

	API:
	BaseURL=%q
	Timeout=%q

	Store:
	Driver=%q
	Path=%q

	Events:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topic=%q
	TLS=%t

`
	fmt.Fprintln(w, "Loaded config:")
	fmt.Fprintf(
		w,
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.API.BaseURL,
		c.API.Timeout,
		c.Store.Driver,
		c.Store.Path,
		c.Events.Enabled,
		c.Events.SeedBrokers,
		c.Events.SchemaRegistryURLs,
		c.Events.Topic,
		c.Events.TLS.Enabled(),
	)
}
