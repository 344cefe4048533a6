package cmd

import (
	"fmt"

	"github.com/fulmenhq/starcat/pkg/config"
	"github.com/fulmenhq/starcat/pkg/exitcode"
	"github.com/fulmenhq/starcat/pkg/reconcile"
	"github.com/fulmenhq/starcat/pkg/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// globalBindings maps persistent flags onto config keys. A flag only wins when
// it was set on the command line; otherwise env and file values apply.
var globalBindings = map[string]string{
	"catalog":  "catalog.path",
	"textures": "textures.dir",
}

// loadSettings resolves configuration for a command run: defaults, the config
// file, STARCAT_* env, then explicit flags.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, withExitCode(exitcode.ConfigError, err)
	}
	if err := bindGlobalFlags(v, cmd.Flags()); err != nil {
		return nil, withExitCode(exitcode.ConfigError, err)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, withExitCode(exitcode.ConfigError, err)
	}
	return cfg, nil
}

func bindGlobalFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range globalBindings {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func newPipeline(cfg *config.Config) *texture.Pipeline {
	return texture.NewPipeline(cfg.Textures.Dir,
		texture.WithTimeout(cfg.Fetch.Timeout),
		texture.WithMaxBytes(cfg.Fetch.MaxBytes),
		texture.WithUserAgent(cfg.Fetch.UserAgent),
		texture.WithJPEGQuality(cfg.Encode.JPEGQuality),
	)
}

func newEngine(cfg *config.Config) *reconcile.Engine {
	return reconcile.New(
		reconcile.WithCatalogPath(cfg.Catalog.Path),
		reconcile.WithTextureDir(cfg.Textures.Dir),
		reconcile.WithPipeline(newPipeline(cfg)),
		reconcile.WithLargeTextureBytes(cfg.Textures.LargeWarningBytes),
		reconcile.WithIgnore(cfg.Textures.Ignore),
	)
}
