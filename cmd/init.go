package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/cgblog/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cgblog configuration with an interactive wizard",
	Long:  `Runs an interactive wizard for the content host, site identity and server settings, and writes a .cgblog.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
