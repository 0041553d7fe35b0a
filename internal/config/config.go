// Package config resolves the settings shared by the metaform commands from
// a YAML file, METAFORM_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-metaform/pkg/page"
	"github.com/goliatone/go-metaform/pkg/render"
)

// Environment variable prefix for metaform configuration.
const envPrefix = "METAFORM"

// Config keys.
const (
	KeyMetadata             = "metadata"
	KeyAddr                 = "addr"
	KeyTitle                = "title"
	KeyUniSelectThreshold   = "uniSelectThreshold"
	KeyMultiSelectThreshold = "multiSelectThreshold"
	KeyDefaultRef           = "defaultRef"
	KeyTemplates            = "templates"
	KeyVerbose              = "verbose"
)

// DefaultAddr is the listen address used by serve.
const DefaultAddr = ":8080"

// Config is the resolved configuration. Zero thresholds defer to the
// metadata document's own _options.
type Config struct {
	Metadata             string `mapstructure:"metadata"`
	Addr                 string `mapstructure:"addr"`
	Title                string `mapstructure:"title"`
	UniSelectThreshold   int    `mapstructure:"uniSelectThreshold"`
	MultiSelectThreshold int    `mapstructure:"multiSelectThreshold"`
	DefaultRef           string `mapstructure:"defaultRef"`
	Templates            string `mapstructure:"templates"`
	Verbose              bool   `mapstructure:"verbose"`
}

// flagKeys maps command line flag names onto config keys.
var flagKeys = map[string]string{
	"metadata":     KeyMetadata,
	"addr":         KeyAddr,
	"title":        KeyTitle,
	"uni-select":   KeyUniSelectThreshold,
	"multi-select": KeyMultiSelectThreshold,
	"default-ref":  KeyDefaultRef,
	"templates":    KeyTemplates,
	"verbose":      KeyVerbose,
}

// Loader merges defaults, a config file, environment variables and flags.
// Flags win over the environment, which wins over the file.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings in place.
func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault(KeyMetadata, "")
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyTitle, "metaform")
	v.SetDefault(KeyUniSelectThreshold, 0)
	v.SetDefault(KeyMultiSelectThreshold, 0)
	v.SetDefault(KeyDefaultRef, render.DefaultRef)
	v.SetDefault(KeyTemplates, "")
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv(KeyMetadata, "METAFORM_METADATA")
	_ = v.BindEnv(KeyAddr, "METAFORM_ADDR")
	_ = v.BindEnv(KeyTitle, "METAFORM_TITLE")
	_ = v.BindEnv(KeyUniSelectThreshold, "METAFORM_UNI_SELECT_THRESHOLD")
	_ = v.BindEnv(KeyMultiSelectThreshold, "METAFORM_MULTI_SELECT_THRESHOLD")
	_ = v.BindEnv(KeyDefaultRef, "METAFORM_DEFAULT_REF")
	_ = v.BindEnv(KeyTemplates, "METAFORM_TEMPLATES")
	_ = v.BindEnv(KeyVerbose, "METAFORM_VERBOSE")

	return &Loader{v: v}
}

// BindFlags binds the known flags present in fs so explicitly set flags
// override every other source.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("config: bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile, when given, and resolves the configuration. A
// missing file is an error only when it was asked for explicitly.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config: %s not found: %w", configFile, err)
			}
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.UniSelectThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", KeyUniSelectThreshold))
	}
	if c.MultiSelectThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: %s must not be negative", KeyMultiSelectThreshold))
	}
	if strings.TrimSpace(c.DefaultRef) == "" {
		errs = append(errs, fmt.Errorf("config: %s must not be empty", KeyDefaultRef))
	}
	return errors.Join(errs...)
}

// RequireMetadata reports an error when no metadata document is configured.
func (c *Config) RequireMetadata() error {
	if strings.TrimSpace(c.Metadata) == "" {
		return fmt.Errorf("config: %s is required (flag --metadata or METAFORM_METADATA)", KeyMetadata)
	}
	return nil
}

// PageOptions converts the configuration into page shell options.
func (c *Config) PageOptions() []page.Option {
	if strings.TrimSpace(c.Templates) == "" {
		return nil
	}
	return []page.Option{page.WithTemplateDir(c.Templates)}
}

// RenderOptions converts the configuration into renderer options.
func (c *Config) RenderOptions() []render.Option {
	return []render.Option{
		render.WithConfig(render.Config{
			UniSelectThreshold:   c.UniSelectThreshold,
			MultiSelectThreshold: c.MultiSelectThreshold,
			DefaultRef:           c.DefaultRef,
		}),
	}
}
