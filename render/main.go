package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Ukraine-DAO/thread-graph/common"
	"github.com/Ukraine-DAO/thread-graph/dot"
	"github.com/Ukraine-DAO/thread-graph/identity"
	"github.com/Ukraine-DAO/thread-graph/source"
	"github.com/Ukraine-DAO/thread-graph/thread"
)

const version = "0.1.0"

func init() {
	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "thread-graph",
		Usage:     "Render the reply tree of a Twitter conversation as a Graphviz digraph",
		Version:   version,
		ArgsUsage: "ROOT_TWEET_ID",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringSliceFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Read recorded tweets from `FILE` (repeatable, - for stdin)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Input format: auto, pages, state or yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the graph to `FILE` instead of stdout",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "Where to print the user legend: stderr, stdout or none",
			},
			&cli.StringFlag{
				Name:  "rankdir",
				Usage: "Graph direction: LR, TB, RL or BT",
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "Node labels: handle, name or both",
			},
			&cli.BoolFlag{
				Name:  "show-text",
				Usage: "Include the tweet text in node labels",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: run,
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig(c *cli.Context) (*common.Config, error) {
	cfg, err := common.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("format") {
		cfg.Input.Format = c.String("format")
	}
	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}
	if c.IsSet("summary") {
		cfg.Output.Summary = c.String("summary")
	}
	if c.IsSet("rankdir") {
		cfg.Render.RankDir = c.String("rankdir")
	}
	if c.IsSet("label") {
		cfg.Render.Label = c.String("label")
	}
	if c.IsSet("show-text") {
		cfg.Render.ShowText = c.Bool("show-text")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readInputs(c *cli.Context, format source.Format, rootID string) ([]*source.Input, error) {
	paths := c.StringSlice("input")
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	inputs := []*source.Input{}
	for _, path := range paths {
		var (
			in  *source.Input
			err error
		)
		if path == "-" {
			in, err = source.Read(c.App.Reader, "stdin", format, rootID)
		} else {
			in, err = source.Open(path, format, rootID)
		}
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func run(c *cli.Context) error {
	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	format, _ := source.ParseFormat(cfg.Input.Format)

	arg := c.Args().First()
	inputs, err := readInputs(c, format, arg)
	if err != nil {
		return err
	}
	rootID := arg

	reg := identity.NewRegistry()
	b := thread.NewBuilder(reg, thread.WithLogger(logger))
	for _, in := range inputs {
		n := b.IngestAll(thread.Records(in.Records))
		logger.Debug().Str("input", in.Name).Str("format", string(in.Format)).Int("records", len(in.Records)).Int("accepted", n).Msg("Input read")
		for _, w := range in.Warnings {
			logger.Warn().Str("input", in.Name).Err(w).Msg("API reported a partial error")
		}
		switch {
		case in.Root == "" || in.Root == rootID:
		case in.Format == source.State:
			// State threads are keyed by their last tweet.
			logger.Debug().Str("input", in.Name).Str("thread", arg).Str("root", in.Root).Msg("Root taken from the state thread")
			rootID = in.Root
		case rootID == "":
			rootID = in.Root
		}
	}
	if rootID == "" {
		return fmt.Errorf("missing required argument: ROOT_TWEET_ID")
	}

	tree, anomalies, err := b.Finalize(rootID)
	for _, a := range anomalies {
		logger.Warn().Str("kind", a.Kind.String()).Str("post_id", a.PostID).Str("parent_id", a.ParentID).Msg(a.Detail)
	}
	if err != nil {
		if errors.Is(err, thread.ErrRootNotFound) {
			return fmt.Errorf("failed to find the specified root tweet: %w", err)
		}
		return err
	}
	if d := b.Duplicates(); d > 0 {
		logger.Debug().Int("duplicates", d).Msg("Duplicate tweets ignored")
	}
	for _, group := range reg.HandleCollisions() {
		ids := make([]string, 0, len(group))
		for _, a := range group {
			ids = append(ids, a.ID)
		}
		logger.Info().Str("handle", group[0].Handle).Strs("author_ids", ids).Msg("Several users share a handle")
	}
	warnIfOld(logger, tree, cfg.Warn.MaxAgeDays, time.Now())

	summary := dot.Summarize(tree, reg)
	switch cfg.Output.Summary {
	case "stderr":
		fmt.Fprint(c.App.ErrWriter, summary)
	case "stdout":
		fmt.Fprint(c.App.Writer, summary)
	}

	graph := dot.Render(tree, reg, cfg.RenderOptions())
	if cfg.Output.Path == "" {
		_, err := io.WriteString(c.App.Writer, graph)
		return err
	}
	if err := os.WriteFile(cfg.Output.Path, []byte(graph), 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", cfg.Output.Path, err)
	}
	logger.Info().Str("path", cfg.Output.Path).Int("nodes", tree.Len()).Msg("Graph written")
	return nil
}

// warnIfOld flags roots older than the recent search window, whose replies
// are probably incomplete.
func warnIfOld(logger zerolog.Logger, tree *thread.Tree, maxAgeDays int, now time.Time) bool {
	root, ok := tree.Root()
	if !ok || maxAgeDays <= 0 || root.CreatedAt.IsZero() {
		return false
	}
	age := now.Sub(root.CreatedAt)
	if age < time.Duration(maxAgeDays)*24*time.Hour {
		return false
	}
	logger.Warn().
		Str("root", root.ID).
		Int("age_days", int(age.Hours()/24)).
		Msgf("The root tweet is over %d days old; recent search will not find older replies", maxAgeDays)
	return true
}

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
