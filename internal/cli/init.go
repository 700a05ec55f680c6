package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dux/internal/paths"
	"github.com/mesh-intelligence/dux/pkg/sqlite"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// initFile is the structure written to config.yaml by init.
type initFile struct {
	LogLevel  string                  `yaml:"log_level"`
	LogFormat string                  `yaml:"log_format"`
	DataDir   string                  `yaml:"data_dir,omitempty"`
	Timeout   string                  `yaml:"timeout"`
	Entities  map[string]entityConfig `yaml:"entities"`
}

// exampleEntity seeds a fresh config.yaml so the entities block shows its
// shape.
var exampleEntity = entityConfig{
	BaseURL: "https://jsonplaceholder.typicode.com/users/",
	IDField: "id",
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and snapshot cache",
		Long:  "Write a default config.yaml if none exists, then create the snapshot cache.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	configPath := filepath.Join(configDir, paths.ConfigFileName)
	if err := writeConfigIfMissing(configPath); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cache := sqlite.NewCache()
	if err := cache.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return sysError(fmt.Errorf("initialize cache: %w", err))
	}
	if err := cache.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize cache: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config: %s\ncache:  %s\n", configPath, dataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := initFile{
		LogLevel:  "warn",
		LogFormat: "text",
		Timeout:   defaultTimeout.String(),
		Entities:  map[string]entityConfig{"user": exampleEntity},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
