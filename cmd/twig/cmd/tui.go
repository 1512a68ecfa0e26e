package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [dir]",
	Short: "Browse a directory tree interactively",
	Long: `Opens the interactive browser rooted at dir (default: the current
directory). Press ? for keybindings and H for help.

Pressing o exits and opens the selected entry in the configured editor.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		filters, err := filtersFromFlags(cmd, e.cfg.Defaults)
		if err != nil {
			return err
		}

		root, err := fs.ResolveRoot(dirArg(args))
		if err != nil {
			return err
		}

		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		exit, err := tui.Run(e.ctx, tui.Options{
			Config:   e.cfg,
			Theme:    e.theme,
			Root:     root,
			Filters:  filters,
			Defaults: e.cfg.Defaults,
			Exclude:  e.exclude,
			Store:    store,
		})
		if err != nil {
			return fmt.Errorf("session failed: %w", err)
		}

		if exit.Kind == tui.ExitOpen {
			return openPath(e.cfg, exit.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
