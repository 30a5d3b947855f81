// config.go implements "lifesim config".
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lifesim-dev/lifesim/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshalling config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s (with environment overrides)\n%s", filepath.Join(dir, "config.yaml"), data)
		return nil
	},
}

var forceFlag bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config.yaml to the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if _, err := config.ReadConfig(dir); err == nil && !forceFlag {
			return fmt.Errorf("config already exists in %s (use --force to overwrite)", dir)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) && !forceFlag {
			return err
		}

		cfg := config.DefaultConfig()
		if serverFlag != "" {
			cfg.Server.BaseURL = serverFlag
		}
		if err := config.WriteConfig(dir, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(dir, "config.yaml"))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config")
	configCmd.AddCommand(configInitCmd)
}
