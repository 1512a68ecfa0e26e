package cmd

import (
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <token>",
	Short: "Open a labeled entry",
	Long:  `Opens the file or directory behind token in the configured editor, or prints the path if no editor is set.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		path, err := store.Lookup(args[0])
		if err != nil {
			return err
		}
		return openPath(e.cfg, path)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
