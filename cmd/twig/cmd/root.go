package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/logger"
	"github.com/tormodhaugland/twig/internal/match"
	"github.com/tormodhaugland/twig/internal/pass"
	"github.com/tormodhaugland/twig/internal/tree"
	"github.com/tormodhaugland/twig/internal/tui"
)

var (
	cfgFile string
	jsonOut bool
	debug   bool

	interactive bool
	exportPath  string
)

var rootCmd = &cobra.Command{
	Use:   "twig [dir]",
	Short: "Directory trees with git markers, pattern highlighting and short labels",
	Long: `twig prints a directory as a tree. Files carry their git status, names
matching --pattern are highlighted, and every directory gets a letter label
(A, B, ... A1) and every file a number.

The labels of the last tree are cached so other commands can take them
instead of paths:

  twig add 3 B     stage file 3 and every file in directory B
  twig open 7      open file 7 in $EDITOR

Use -i (or 'twig tui') for the interactive browser.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactive {
			return tuiCmd.RunE(cmd, args)
		}

		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

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

		root := dirArg(args)
		res, err := pass.Run(e.ctx, pass.Options{Root: root, Filters: f, Exclude: e.exclude}, store)
		switch {
		case errors.Is(err, pass.ErrNothingFound):
			fmt.Fprintf(os.Stderr, "nothing to show in %s\n", root)
			return nil
		case errors.Is(err, pass.ErrNoMatches):
			return fmt.Errorf("no entries match %q", f.Pattern)
		case err != nil:
			logger.FromContext(e.ctx).Error(err, "pass failed")
			return err
		}

		if exportPath != "" {
			if err := exportTree(res.Tree, f, exportPath); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}

		if jsonOut {
			return writeJSON(os.Stdout, treeJSON(res.Tree))
		}
		return printTree(os.Stdout, res.Tree, f, e.theme)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/twig/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug entries to the log file")
	addFilterFlags(rootCmd)

	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse interactively")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "also write the plain tree to this file")
}

func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func printTree(w io.Writer, t *tree.Tree, f config.Filters, theme *config.Theme) error {
	p, err := t.Render(f.Labels, tui.Decorator(f, theme))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, p.String())
	return err
}

// exportTree writes the tree without any terminal styling.
func exportTree(t *tree.Tree, f config.Filters, path string) error {
	f.Plain = true
	f.Icons = false
	p, err := t.Render(f.Labels, tui.Decorator(f, nil))
	if err != nil {
		return err
	}
	return tree.Export(path, p.String())
}

type nodeJSON struct {
	Path   string      `json:"path"`
	Kind   string      `json:"kind"`
	Depth  int         `json:"depth"`
	Label  string      `json:"label,omitempty"`
	Marker string      `json:"marker,omitempty"`
	Span   *match.Span `json:"span,omitempty"`
	Size   int64       `json:"size,omitempty"`
}

type treeOutput struct {
	Root   string      `json:"root"`
	Nodes  []nodeJSON  `json:"nodes"`
	Labels tree.Labels `json:"labels"`
}

func treeJSON(t *tree.Tree) treeOutput {
	out := treeOutput{Root: t.Root, Labels: t.Labels, Nodes: make([]nodeJSON, 0, len(t.Nodes))}
	for _, n := range t.Nodes {
		out.Nodes = append(out.Nodes, nodeJSON{
			Path:   n.Path,
			Kind:   n.Kind.String(),
			Depth:  n.Depth(),
			Label:  n.Label,
			Marker: string(n.Marker),
			Span:   n.Span,
			Size:   n.Size,
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
