package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/lookup"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy-search the entries of the last tree",
	Long: `Matches query against every path of the last printed tree and lists the
best hits with their tokens, so they can be passed to resolve, add or open.`,
	Args: cobra.ExactArgs(1),
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

		hits, err := store.Search(args[0], findLimit)
		if err != nil {
			return err
		}

		if jsonOut {
			return writeJSON(os.Stdout, hits)
		}
		if len(hits) == 0 {
			fmt.Fprintf(os.Stderr, "no entries match %q\n", args[0])
			return nil
		}

		f := e.colorize(config.Filters{})
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(e.theme.Match))
		for _, h := range hits {
			path := h.Path
			if !f.Plain {
				path = highlightHit(h, style)
			}
			fmt.Printf("%-4s %s\n", h.Token, path)
		}
		return nil
	},
}

// highlightHit styles the matched characters of a hit's path.
func highlightHit(h lookup.Hit, style lipgloss.Style) string {
	matched := make(map[int]bool, len(h.MatchedIndexes))
	for _, i := range h.MatchedIndexes {
		matched[i] = true
	}
	var sb strings.Builder
	for i, r := range h.Path {
		if matched[i] {
			sb.WriteString(style.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func init() {
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "maximum number of results (0 = all)")
	rootCmd.AddCommand(findCmd)
}
