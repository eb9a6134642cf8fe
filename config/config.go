// Package config loads runtime settings and lookup-table overrides from
// an optional YAML file and TINYDNS_LOGSTAT_* environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"tinydns-logstat/decoder"
	"tinydns-logstat/errors"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "TINYDNS_LOGSTAT"

type (
	Configuration struct {
		Lenient   bool            `mapstructure:"lenient"`
		Log       LogConfig       `mapstructure:"log"`
		Dashboard DashboardConfig `mapstructure:"dashboard"`
		Codes     []LabelOverride `mapstructure:"codes"`
		Types     []LabelOverride `mapstructure:"types"`
	}

	LogConfig struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	DashboardConfig struct {
		Listen   string `mapstructure:"listen"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
	}

	// LabelOverride adds or replaces one lookup-table entry. Overrides are
	// lists rather than maps because viper lower-cases map keys, and code
	// tokens such as "I" and "C" are case sensitive.
	LabelOverride struct {
		Token string `mapstructure:"token"`
		Label string `mapstructure:"label"`
	}
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("lenient", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("dashboard.listen", ":8080")
	v.SetDefault("dashboard.user", "")
	v.SetDefault("dashboard.password", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when it is non-empty; otherwise only defaults and the
// environment apply.
func Load(path string) (*Configuration, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Attr(errors.Wrapf(err, errors.KindConfig, "read config %s", path), "path", path)
		}
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects overrides that could never match a log token.
func (c *Configuration) Validate() error {
	for _, o := range c.Codes {
		if len(o.Token) != 1 || o.Label == "" {
			return errors.Attr(errors.Errorf(errors.KindConfig, "code override %q: token must be one character and label non-empty", o.Token), "token", o.Token)
		}
	}
	for _, o := range c.Types {
		if len(o.Token) != 4 || o.Label == "" {
			return errors.Attr(errors.Errorf(errors.KindConfig, "type override %q: token must be 4 hex digits and label non-empty", o.Token), "token", o.Token)
		}
	}
	return nil
}

// DecoderOptions turns the table overrides into LineDecoder options.
func (c *Configuration) DecoderOptions() []decoder.Option {
	return []decoder.Option{
		decoder.WithCodeTable(decoder.CodeTable().With(overrideMap(c.Codes, false))),
		decoder.WithTypeTable(decoder.TypeTable().With(overrideMap(c.Types, true))),
	}
}

func overrideMap(overrides []LabelOverride, lower bool) map[string]string {
	m := make(map[string]string, len(overrides))
	for _, o := range overrides {
		token := o.Token
		if lower {
			token = strings.ToLower(token)
		}
		m[token] = o.Label
	}
	return m
}
