package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dux/internal/paths"
	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/normalize"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
	cfgKeyDataDir   = "data_dir"
	cfgKeyTimeout   = "timeout"

	// EnvAPIToken is sent as a bearer token when set.
	EnvAPIToken = "DUX_API_TOKEN"

	defaultTimeout = 30 * time.Second
)

// entityConfig describes one REST collection.
type entityConfig struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	CreateURL   string `mapstructure:"create_url" yaml:"create_url,omitempty"`
	ReadListURL string `mapstructure:"read_list_url" yaml:"read_list_url,omitempty"`
	UpdateURL   string `mapstructure:"update_url" yaml:"update_url,omitempty"`
	DeleteURL   string `mapstructure:"delete_url" yaml:"delete_url,omitempty"`
	ListPath    string `mapstructure:"list_path" yaml:"list_path,omitempty"`
	IDField     string `mapstructure:"id_field" yaml:"id_field,omitempty"`
	AssignIDs   bool   `mapstructure:"assign_ids" yaml:"assign_ids,omitempty"`
}

// appConfig is the decoded config.yaml.
type appConfig struct {
	LogLevel  string                  `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string                  `mapstructure:"log_format" yaml:"log_format"`
	DataDir   string                  `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Timeout   time.Duration           `mapstructure:"timeout" yaml:"timeout"`
	Headers   map[string]string       `mapstructure:"headers" yaml:"headers,omitempty"`
	Entities  map[string]entityConfig `mapstructure:"entities" yaml:"entities"`

	// APIToken comes from the environment or the .env file, never from
	// config.yaml.
	APIToken string `mapstructure:"-" yaml:"-"`
}

// loadConfig reads config.yaml and .env from configDir. A missing
// config.yaml is not an error: the defaults apply and no entity is
// configured.
func loadConfig(configDir string) (*appConfig, error) {
	if err := loadDotEnv(configDir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "text")
	v.SetDefault(cfgKeyTimeout, defaultTimeout)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.APIToken = os.Getenv(EnvAPIToken)
	return &cfg, nil
}

// loadDotEnv loads configDir/.env without overriding variables that are
// already set.
func loadDotEnv(configDir string) error {
	path := filepath.Join(configDir, paths.EnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// entityNames returns the configured entity names, sorted.
func (c *appConfig) entityNames() []string {
	names := make([]string, 0, len(c.Entities))
	for name := range c.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// entity looks name up, reporting the configured names on a miss.
func (c *appConfig) entity(name string) (entityConfig, error) {
	ec, ok := c.Entities[name]
	if !ok {
		names := c.entityNames()
		if len(names) == 0 {
			return entityConfig{}, fmt.Errorf("unknown entity %q (no entities configured)", name)
		}
		return entityConfig{}, fmt.Errorf("unknown entity %q (configured: %s)", name, strings.Join(names, ", "))
	}
	return ec, nil
}

// options converts ec into dux options without the transport.
func (ec entityConfig) options(name string) dux.Options {
	opts := dux.Options{
		BaseURL:     parseURL(ec.BaseURL),
		CreateURL:   parseURL(ec.CreateURL),
		ReadListURL: parseURL(ec.ReadListURL),
		UpdateURL:   parseURL(ec.UpdateURL),
		DeleteURL:   parseURL(ec.DeleteURL),
		IDField:     ec.IDField,
		AssignIDs:   ec.AssignIDs,
	}
	if ec.ListPath != "" {
		opts.Schema = &normalize.ListSchema{
			Entity: &normalize.Schema{Name: name, IDField: ec.IDField},
			Path:   ec.ListPath,
		}
	}
	return opts
}

// parseURL treats addresses containing a brace as templates.
func parseURL(s string) dux.URL {
	if s == "" {
		return dux.URL{}
	}
	return dux.Template(s)
}
