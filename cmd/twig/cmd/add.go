package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/lookup"
)

type addResult struct {
	Staged     []string `json:"staged"`
	Unresolved []string `json:"unresolved,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

var addCmd = &cobra.Command{
	Use:   "add <token>...",
	Short: "Stage files by label or number",
	Long: `Runs git add for the files behind the given tokens. A directory label
stages every file shown directly under that directory in the last tree.

Tokens that do not resolve and files git refuses are reported one by one;
everything else is still staged.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		if !git.Available() {
			return errors.New("git not found on PATH")
		}

		store, err := e.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		return addTokens(store, args, os.Stdout, os.Stderr)
	},
}

// addTokens stages the files behind tokens. Unresolved tokens and refused
// files are reported individually; the error counts them.
func addTokens(store *lookup.Store, args []string, stdout, stderr io.Writer) error {
	files, unresolved, err := store.Expand(args)
	if err != nil {
		return err
	}

	result := addResult{Unresolved: unresolved}
	failed := stageFiles(files)
	for _, f := range files {
		if ferr, ok := failed[f]; ok {
			msg := fmt.Sprintf("%s: %v", f, ferr)
			result.Errors = append(result.Errors, msg)
			if !jsonOut {
				fmt.Fprintln(stderr, "Error:", msg)
			}
			continue
		}
		result.Staged = append(result.Staged, f)
		if !jsonOut {
			fmt.Fprintf(stdout, "staged %s\n", f)
		}
	}

	if jsonOut {
		if err := writeJSON(stdout, result); err != nil {
			return err
		}
	} else {
		for _, tok := range unresolved {
			fmt.Fprintf(stderr, "unresolved: %s\n", tok)
		}
	}

	if n := len(result.Unresolved) + len(result.Errors); n > 0 {
		return fmt.Errorf("%d item(s) not staged", n)
	}
	return nil
}

// stageFiles runs one git add per repository and returns the files that
// could not be staged. A batch git refuses is retried file by file so the
// refusal is pinned to the file that caused it.
func stageFiles(files []string) map[string]error {
	failed := map[string]error{}

	type repoDir struct {
		top string
		err error
	}
	dirs := map[string]repoDir{}
	batches := map[string][]string{}
	var order []string

	for _, f := range files {
		dir := filepath.Dir(f)
		rd, ok := dirs[dir]
		if !ok {
			rd.top, rd.err = git.Toplevel(dir)
			dirs[dir] = rd
		}
		if rd.err != nil {
			failed[f] = rd.err
			continue
		}
		if _, seen := batches[rd.top]; !seen {
			order = append(order, rd.top)
		}
		batches[rd.top] = append(batches[rd.top], f)
	}

	for _, top := range order {
		batch := batches[top]
		err := git.Stage(top, batch...)
		if err == nil {
			continue
		}
		if len(batch) == 1 {
			failed[batch[0]] = err
			continue
		}
		for _, f := range batch {
			if err := git.Stage(top, f); err != nil {
				failed[f] = err
			}
		}
	}
	return failed
}

func init() {
	rootCmd.AddCommand(addCmd)
}
