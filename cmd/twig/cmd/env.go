package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/logger"
	"github.com/tormodhaugland/twig/internal/lookup"
)

var (
	flagPattern  string
	flagHidden   bool
	flagNoIgnore bool
	flagDepth    int
	flagMaxSize  string
	flagFollow   bool
	flagDirsOnly bool
	flagNoGit    bool
	flagNoLabels bool
	flagIcons    bool
	flagMeta     bool
	flagPlain    bool
	flagExclude  []string
)

// addFilterFlags registers the pass filters as persistent flags so the
// tree, tui and branches commands share them.
func addFilterFlags(c *cobra.Command) {
	pf := c.PersistentFlags()
	pf.StringVarP(&flagPattern, "pattern", "p", "", "highlight and keep only entries whose name matches this regular expression")
	pf.BoolVarP(&flagHidden, "hidden", "H", false, "show hidden files")
	pf.BoolVarP(&flagNoIgnore, "no-ignore", "I", false, "do not respect .gitignore, .ignore and exclude patterns")
	pf.IntVarP(&flagDepth, "depth", "L", 0, "maximum depth (0 = unlimited)")
	pf.StringVar(&flagMaxSize, "max-size", "", "skip files larger than this (e.g. 10MB)")
	pf.BoolVarP(&flagFollow, "follow", "l", false, "follow symlinked directories")
	pf.BoolVarP(&flagDirsOnly, "dirs-only", "d", false, "show directories only")
	pf.BoolVar(&flagNoGit, "no-git", false, "do not show git status markers")
	pf.BoolVar(&flagNoLabels, "no-labels", false, "do not print labels and numbers")
	pf.BoolVar(&flagIcons, "icons", false, "show file type icons (needs a nerd font)")
	pf.BoolVar(&flagMeta, "meta", false, "show size and modification time")
	pf.BoolVar(&flagPlain, "plain", false, "no colors")
	pf.StringSliceVar(&flagExclude, "exclude", nil, "additional exclude globs (doublestar syntax)")
}

// filtersFromFlags overlays the flags the user set on base.
func filtersFromFlags(cmd *cobra.Command, base config.Filters) (config.Filters, error) {
	f := base
	flags := cmd.Flags()

	if flags.Changed("pattern") {
		f.Pattern = flagPattern
	}
	if flags.Changed("hidden") {
		f.ShowHidden = flagHidden
	}
	if flags.Changed("no-ignore") {
		f.NoIgnore = flagNoIgnore
	}
	if flags.Changed("depth") {
		if flagDepth < 0 {
			return f, fmt.Errorf("invalid depth %d", flagDepth)
		}
		f.MaxDepth = flagDepth
	}
	if flags.Changed("max-size") {
		n, err := humanize.ParseBytes(flagMaxSize)
		if err != nil {
			return f, fmt.Errorf("invalid --max-size %q: %w", flagMaxSize, err)
		}
		f.MaxFileSize = int64(n)
	}
	if flags.Changed("follow") {
		f.FollowLinks = flagFollow
	}
	if flags.Changed("dirs-only") {
		f.DirsOnly = flagDirsOnly
	}
	if flags.Changed("no-git") {
		f.GitMarkers = !flagNoGit
	}
	if flags.Changed("no-labels") {
		f.Labels = !flagNoLabels
	}
	if flags.Changed("icons") {
		f.Icons = flagIcons
	}
	if flags.Changed("meta") {
		f.Metadata = flagMeta
	}
	if flags.Changed("plain") {
		f.Plain = flagPlain
	}
	return f, nil
}

// env is what every command loads before doing work.
type env struct {
	ctx     context.Context
	cfg     *config.Config
	theme   *config.Theme
	log     *logger.Logger
	exclude *fs.ExcludeList
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	theme, err := config.LoadTheme(cfg.ThemeFile)
	if err != nil {
		return nil, err
	}

	level := logger.LevelInfo
	if debug {
		level = logger.LevelDebug
	}
	log, err := logger.New(cfg.LogPath(), level)
	if err != nil {
		return nil, err
	}

	additional := append(append([]string{}, cfg.Exclude...), flagExclude...)
	exclude := fs.BuildExcludeList(fs.ExcludeOptions{Additional: additional})
	if err := exclude.Validate(); err != nil {
		log.Close()
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, log.WithValues(logger.CommandKey, cmd.Name()))

	return &env{ctx: ctx, cfg: cfg, theme: theme, log: log, exclude: exclude}, nil
}

func (e *env) close() {
	e.log.Close()
}

func (e *env) openStore() (*lookup.Store, error) {
	store, err := lookup.Open(e.cfg.LookupPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup store: %w", err)
	}
	return store, nil
}

// colorize decides whether one-shot output is styled. Output that is not a
// terminal, or NO_COLOR, turns on plain mode.
func (e *env) colorize(f config.Filters) config.Filters {
	if f.Plain {
		return f
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !term.IsTerminal(int(os.Stdout.Fd())) {
		f.Plain = true
		return f
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	return f
}

// openPath opens path in the configured editor. Without one the path is
// printed so it can be piped.
func openPath(cfg *config.Config, path string) error {
	editor := cfg.EditorCommand()
	if editor == "" {
		if runtime.GOOS == "darwin" {
			return exec.Command("open", path).Start()
		}
		fmt.Println(path)
		return nil
	}

	parts := strings.Fields(editor)
	c := exec.Command(parts[0], append(parts[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
