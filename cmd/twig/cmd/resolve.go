package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/lookup"
)

var resolveExpand bool

type resolveResult struct {
	Resolved   []string `json:"resolved"`
	Unresolved []string `json:"unresolved"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <token>...",
	Short: "Print the paths behind labels and numbers",
	Long: `Resolves tokens from the last printed tree. Numbers resolve to files,
letters (case-insensitive) to directories. With --expand a directory label
resolves to every file shown directly under it.

Tokens that do not resolve are reported on stderr; the rest still print.`,
	Args: cobra.MinimumNArgs(1),
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

		return resolveTokens(store, args, resolveExpand, os.Stdout, os.Stderr)
	},
}

// resolveTokens prints the path of every token that resolves and reports the
// rest on stderr. The error counts the tokens that failed.
func resolveTokens(store *lookup.Store, args []string, expand bool, stdout, stderr io.Writer) error {
	var (
		result resolveResult
		err    error
	)
	if expand {
		result.Resolved, result.Unresolved, err = store.Expand(args)
	} else {
		result.Resolved, result.Unresolved, err = store.ResolveTokens(args)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		if err := writeJSON(stdout, result); err != nil {
			return err
		}
	} else {
		for _, p := range result.Resolved {
			fmt.Fprintln(stdout, p)
		}
		for _, tok := range result.Unresolved {
			fmt.Fprintf(stderr, "unresolved: %s\n", tok)
		}
	}

	if n := len(result.Unresolved); n > 0 {
		return fmt.Errorf("%d token(s) did not resolve", n)
	}
	return nil
}

func init() {
	resolveCmd.Flags().BoolVarP(&resolveExpand, "expand", "e", false, "expand directory labels into their files")
	rootCmd.AddCommand(resolveCmd)
}
