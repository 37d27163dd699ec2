package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/tujuhre12/recycler/internal/config"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print directories used by recycler",
	Long: heredoc.Doc(`
		Print the directories where recycler reads its global configuration,
		stores values written with config set, and writes its logs.
	`),
	Example: heredoc.Doc(`
		# Print all directories
		recycler dirs

		# Print only the config directory
		recycler dirs --config-dir

		# Print only the data directory
		recycler dirs --data
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		configOnly, _ := cmd.Flags().GetBool("config-dir")
		dataOnly, _ := cmd.Flags().GetBool("data")

		if configOnly && dataOnly {
			return fmt.Errorf("cannot specify both --config-dir and --data flags")
		}

		configDir := filepath.Dir(config.GlobalConfig())
		dataDir := filepath.Dir(config.GlobalConfigData())

		out := cmd.OutOrStdout()
		if configOnly {
			fmt.Fprintln(out, configDir)
			return nil
		}
		if dataOnly {
			fmt.Fprintln(out, dataDir)
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Config directory: %s\n", configDir)
		fmt.Fprintf(out, "Data directory:   %s\n", dataDir)
		fmt.Fprintf(out, "Log directory:    %s\n", filepath.Dir(cfg.LogFile()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().Bool("config-dir", false, "Print only the config directory")
	dirsCmd.Flags().Bool("data", false, "Print only the data directory")
}
