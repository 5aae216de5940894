// Package config resolves command options from, in increasing precedence,
// defaults, a config file, a dotenv file, environment variables and changed
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config embeds viper so callers keep its getters.
type Config struct {
	*viper.Viper

	// explicit is set when a file was named rather than searched for.
	explicit bool
	// dotenv holds settings merged on top of the config file.
	dotenv map[string]any
}

// Option configures New.
type Option func(*Config) error

// New applies opts in order and reads the config file. A searched-for file
// that does not exist is not an error; a file named with WithFile is.
//
//	cfg, err := config.New(
//	  config.WithConfigNamePaths("vergen", "."),
//	  config.WithEnv("VERGEN"),
//	  config.WithPFlags(cmd.Flags()),
//	)
func New(opts ...Option) (*Config, error) {
	cfg := &Config{Viper: viper.New()}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config: applying option failed: %w", err)
		}
	}
	if err := cfg.read(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.dotenv) > 0 {
		if err := cfg.MergeConfigMap(cfg.dotenv); err != nil {
			return nil, fmt.Errorf("config: merge dotenv: %w", err)
		}
	}
	return cfg, nil
}

func (c *Config) read() error {
	err := c.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if !c.explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// WithDefaults sets values used when nothing else sets a key.
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) error {
		for k, v := range defaults {
			c.SetDefault(k, v)
		}
		return nil
	}
}

// WithFile names the config file. Its extension selects the parser. An empty
// path leaves the search configured by WithConfigNamePaths in place.
func WithFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		c.SetConfigFile(path)
		c.explicit = true
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
			c.SetConfigType(ext)
		}
		return nil
	}
}

// WithConfigNamePaths searches paths (default ".") for name with any
// supported extension, e.g. vergen.yaml or vergen.toml.
func WithConfigNamePaths(name string, paths ...string) Option {
	return func(c *Config) error {
		if name != "" {
			c.SetConfigName(name)
		}
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, p := range paths {
			c.AddConfigPath(p)
		}
		return nil
	}
}

// keyReplacer maps option keys to variable names: fail-on-error becomes FAIL_ON_ERROR.
var keyReplacer = strings.NewReplacer(".", "_", "-", "_")

// WithEnv lets PREFIX_KEY variables set keys, so VERGEN_FAIL_ON_ERROR sets
// fail-on-error.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		if prefix != "" {
			c.SetEnvPrefix(prefix)
		}
		c.SetEnvKeyReplacer(keyReplacer)
		c.AutomaticEnv()
		return nil
	}
}

// WithBindEnv binds key to explicit variable names, ignoring the prefix. The
// first one set wins.
func WithBindEnv(key string, envs ...string) Option {
	return func(c *Config) error {
		return c.BindEnv(append([]string{key}, envs...)...)
	}
}

// WithPFlags binds flags. Changed flags beat every other source; unchanged
// ones only supply their default. A nil set binds pflag.CommandLine.
func WithPFlags(flags *pflag.FlagSet) Option {
	return func(c *Config) error {
		if flags == nil {
			flags = pflag.CommandLine
		}
		return c.BindPFlags(flags)
	}
}

// WithDotEnv reads PREFIX_KEY=value lines from a dotenv file and layers them
// over the config file. Variables without the prefix are ignored. A missing
// file is ignored unless required.
func WithDotEnv(path, prefix string, required bool) Option {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		values, err := godotenv.Read(path)
		if err != nil {
			if !required && errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if c.dotenv == nil {
			c.dotenv = make(map[string]any)
		}
		for name, value := range values {
			key, ok := dotenvKey(name, prefix)
			if ok {
				c.dotenv[key] = value
			}
		}
		return nil
	}
}

// dotenvKey turns VERGEN_FAIL_ON_ERROR into fail-on-error.
func dotenvKey(name, prefix string) (string, bool) {
	if prefix != "" {
		rest, ok := strings.CutPrefix(name, prefix+"_")
		if !ok {
			return "", false
		}
		name = rest
	}
	if name == "" {
		return "", false
	}
	return strings.ReplaceAll(strings.ToLower(name), "_", "-"), true
}

// GetStringD returns the value of key, or def when it is empty.
func (c *Config) GetStringD(key, def string) string {
	if val := c.GetString(key); val != "" {
		return val
	}
	return def
}

// Decode unmarshals the subtree at key, or everything when key is empty,
// using mapstructure tags.
func (c *Config) Decode(key string, out any) error {
	var err error
	if key == "" {
		err = c.Unmarshal(out)
	} else {
		err = c.UnmarshalKey(key, out)
	}
	if err != nil {
		return fmt.Errorf("config: decode %q: %w", key, err)
	}
	return nil
}
