package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/pass"
)

var branchesRemote bool

var branchesCmd = &cobra.Command{
	Use:   "branches [dir]",
	Short: "Show the branches of a repository as a tree",
	Long: `Branch names are split on "/" and laid out like paths, so feature/a and
feature/b share a feature directory. The current branch is marked with *.
Directory labels and numbers are cached like for a file tree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if !git.Available() {
			return errors.New("git not found on PATH")
		}

		f, err := filtersFromFlags(cmd, e.cfg.Defaults)
		if err != nil {
			return err
		}
		f = e.colorize(f)

		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		repo := dirArg(args)
		res, err := pass.Run(e.ctx, pass.Options{Root: repo, Filters: f, Branches: true, Remote: branchesRemote}, store)
		switch {
		case errors.Is(err, pass.ErrNothingFound):
			fmt.Fprintln(os.Stderr, "no branches")
			return nil
		case errors.Is(err, pass.ErrNoMatches):
			return fmt.Errorf("no branches match %q", f.Pattern)
		case errors.Is(err, git.ErrNotRepo):
			return fmt.Errorf("%s is not inside a git repository", repo)
		case err != nil:
			return err
		}

		if jsonOut {
			return writeJSON(os.Stdout, treeJSON(res.Tree))
		}
		return printTree(os.Stdout, res.Tree, f, e.theme)
	},
}

func init() {
	branchesCmd.Flags().BoolVarP(&branchesRemote, "remote", "r", false, "include remote-tracking branches")
	rootCmd.AddCommand(branchesCmd)
}
