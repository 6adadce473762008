package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codecollage/internal/cluster"
	"github.com/standardbeagle/codecollage/internal/config"
	ccerrors "github.com/standardbeagle/codecollage/internal/errors"
	"github.com/standardbeagle/codecollage/internal/extractor"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/pattern"
	"github.com/standardbeagle/codecollage/internal/pipeline"
	"github.com/standardbeagle/codecollage/internal/server"
	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/version"
	"github.com/standardbeagle/codecollage/internal/watch"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root, c.String("config"))
	if err != nil {
		return nil, ccerrors.NewConfigError("config", c.String("config"), err)
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	v := config.NewValidator()
	if err := v.ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(filepath.Join(cfg.Project.Root, "data"))
}

func walkOptions(cfg *config.Config, c *cli.Context) extractor.WalkOptions {
	exts := c.StringSlice("extensions")
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	return extractor.WalkOptions{
		Extensions: exts,
		Include:    cfg.Include,
		Exclude:    cfg.Exclude,
	}
}

func main() {
	app := &cli.App{
		Name:    "codecollage",
		Usage:   "mine recurring code patterns from a snippet corpus",
		Version: version.FullInfo(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to .codecollage.kdl"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root to operate on", Value: "."},
			&cli.StringSliceFlag{Name: "include", Usage: "include glob patterns (doublestar)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "exclude glob patterns (doublestar)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "walk paths and append extracted snippets to the store",
				ArgsUsage: "<paths...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "recursive", Aliases: []string{"R"}, Value: true, Usage: "recurse into subdirectories"},
					&cli.StringSliceFlag{Name: "extensions", Usage: "file extensions to extract (e.g. --extensions .go --extensions .py)"},
					&cli.BoolFlag{Name: "watch", Usage: "keep running, incrementally ingesting file changes after the initial walk"},
				},
				Action: ingestCommand,
			},
			{
				Name:  "index",
				Usage: "build the MinHash/LSH index and write clusters",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "bands", Usage: "LSH band count", Value: config.DefaultBands},
					&cli.IntFlag{Name: "rows", Usage: "LSH rows per band", Value: config.DefaultRowsPerBand},
					&cli.IntFlag{Name: "min-cluster-size", Value: config.DefaultMinClusterSize},
					&cli.BoolFlag{Name: "emit-singletons", Usage: "keep single-snippet clusters in the output"},
				},
				Action: indexCommand,
			},
			{
				Name:  "synth",
				Usage: "mine patterns from the current clusters",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "type", Usage: "pattern tiers to mine: ngram, lcs, ast (default: all three)"},
					&cli.BoolFlag{Name: "parallel", Usage: "parallelise the LCS tier's per-cluster work"},
				},
				Action: synthCommand,
			},
			{
				Name:  "serve",
				Usage: "serve the read-only HTTP API over the current store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "host", Value: "127.0.0.1"},
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8089},
				},
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "codecollage: %v\n", err)
		os.Exit(ccerrors.ExitCode(err))
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: codecollage ingest <paths...>", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	opts := pipeline.IngestOptions{
		Roots:     c.Args().Slice(),
		Recursive: c.Bool("recursive"),
		Walk:      walkOptions(cfg, c),
	}
	stats, err := pipeline.Ingest(s, opts)
	if err != nil {
		return err
	}
	fmt.Printf("walked %d files, wrote %d snippets (%d skipped)\n", stats.FilesWalked, stats.SnippetsWritten, stats.FilesSkipped)

	if !c.Bool("watch") {
		return nil
	}
	return runWatch(s, opts.Walk, opts.Roots)
}

func runWatch(s *store.Store, walkOpts extractor.WalkOptions, roots []string) error {
	w, err := watch.New(s, walkOpts)
	if err != nil {
		return err
	}
	w.OnIngested(func(path string, written int) {
		logging.Stage("watch", "%s: wrote %d snippets", path, written)
	})
	for _, root := range roots {
		if err := w.Start(root); err != nil {
			return err
		}
	}
	fmt.Println("watching for changes, press Ctrl+C to stop")
	select {}
}

func indexCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("bands") {
		cfg.LSH.Bands = c.Int("bands")
	}
	if c.IsSet("rows") {
		cfg.LSH.RowsPerBand = c.Int("rows")
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	opts := cluster.Options{
		MinClusterSize: c.Int("min-cluster-size"),
		EmitSingletons: c.Bool("emit-singletons"),
	}
	stats, err := pipeline.Index(s, cfg, opts)
	if err != nil {
		return err
	}
	fmt.Printf("considered %d snippets, kept %d, wrote %d clusters\n", stats.SnippetsConsidered, stats.SnippetsKept, stats.ClustersWritten)
	return nil
}

func synthCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	var tiers []pattern.Tier
	for _, t := range c.StringSlice("type") {
		switch t {
		case "ngram":
			tiers = append(tiers, pattern.TierNGram)
		case "lcs":
			tiers = append(tiers, pattern.TierLCS)
		case "ast":
			tiers = append(tiers, pattern.TierStructural)
		default:
			return cli.Exit(fmt.Sprintf("unknown pattern type %q: want ngram, lcs or ast", t), 2)
		}
	}

	stats, err := pipeline.Synth(s, cfg, pipeline.SynthOptions{Tiers: tiers, Parallel: c.Bool("parallel")})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d patterns\n", stats.PatternsWritten)
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", c.String("host"), c.Int("port"))
	srv := server.New(addr, server.NewReadOnlyStore(s), cfg.Project.Root)
	fmt.Printf("serving %s\n", addr)
	return srv.Start()
}
