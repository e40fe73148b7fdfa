package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables the loader reads.
const EnvPrefix = "LINKTRACK_"

// Option is a functional option for Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads config.yml and LINKTRACK_ environment variables into a Config,
// then applies defaults and validates. A .env file is loaded first when
// present, so local development needs no exported variables.
func Load(opts ...Option) (*Config, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	loadEnvFile(o.envFile)

	v := viper.New()
	if file := findConfigFile(o.configFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	bindEnvVars(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(explicit string) {
	if explicit != "" {
		_ = godotenv.Load(explicit)
		return
	}
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, path := range []string{"./config.yml", "./config/config.yml", "../config.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// bindEnvVars maps LINKTRACK_SECTION_KEY variables onto nested viper keys.
// The first underscore separates the section; the rest is the key, so
// LINKTRACK_DATABASE_PAGE_SIZE becomes database.page_size.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], EnvPrefix))
		parts := strings.SplitN(key, "_", 2)
		if len(parts) != 2 {
			continue
		}
		v.Set(parts[0]+"."+parts[1], pair[1])
	}
}
