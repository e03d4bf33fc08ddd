package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/manifest-lsp/internal/config"
	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/resolve"
	"github.com/standardbeagle/manifest-lsp/internal/runner"
	"github.com/standardbeagle/manifest-lsp/internal/search"
	"github.com/standardbeagle/manifest-lsp/internal/server"
	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, err
	}

	if binary := c.String("runner"); binary != "" {
		cfg.Runner.Binary = binary
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Workers = workers
	}
	if dirs := c.StringSlice("source-dir"); len(dirs) > 0 {
		cfg.Source.Dirs = dirs
	}
	return cfg, nil
}

// positionArgs parses the <file> <line> <col> argument triple shared by the
// one-shot commands. Line and column are one-based on the command line.
func positionArgs(c *cli.Context) (string, []byte, int, int, error) {
	if c.NArg() != 3 {
		return "", nil, 0, 0, fmt.Errorf("expected <file> <line> <col>, got %d arguments", c.NArg())
	}
	path, err := filepath.Abs(c.Args().Get(0))
	if err != nil {
		return "", nil, 0, 0, err
	}
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || line < 1 {
		return "", nil, 0, 0, fmt.Errorf("invalid line %q", c.Args().Get(1))
	}
	col, err := strconv.Atoi(c.Args().Get(2))
	if err != nil || col < 1 {
		return "", nil, 0, 0, fmt.Errorf("invalid column %q", c.Args().Get(2))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, 0, 0, err
	}
	return path, content, line - 1, col - 1, nil
}

func printLocations(locs []types.SourceLocation) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(locs)
}

func main() {
	app := &cli.App{
		Name:    "manifest-lsp",
		Usage:   "Language server bridging maid manifests and Python sources",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "runner",
				Usage: "Path to the maid binary (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel file scan workers (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "source-dir",
				Usage: "Source directory to search, relative to root (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			verbosity := 0
			if c.Bool("verbose") {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the language server over stdio",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfigWithOverrides(c)
					if err != nil {
						return err
					}
					return server.New(cfg).Run()
				},
			},
			{
				Name:      "definition",
				Usage:     "Resolve the definition for the identifier at <file> <line> <col> (one-based)",
				ArgsUsage: "<file> <line> <col>",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfigWithOverrides(c)
					if err != nil {
						return err
					}
					path, content, line, col, err := positionArgs(c)
					if err != nil {
						return err
					}

					run := runner.New(cfg.Runner.Binary, cfg.RunnerTimeout())
					resolver := resolve.New(cfg.ProjectContext(), run)
					loc, err := resolver.Resolve(context.Background(), path, content, line, col)
					if lsperrors.IsNotFound(err) {
						return printLocations(nil)
					}
					if err != nil {
						return err
					}
					return printLocations([]types.SourceLocation{loc})
				},
			},
			{
				Name:      "references",
				Usage:     "List references for the identifier at <file> <line> <col> (one-based)",
				ArgsUsage: "<file> <line> <col>",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfigWithOverrides(c)
					if err != nil {
						return err
					}
					path, content, line, col, err := positionArgs(c)
					if err != nil {
						return err
					}

					engine := search.New(cfg.ProjectContext(), cfg.Workers)
					locs, err := engine.FindReferences(context.Background(), path, content, line, col)
					if lsperrors.IsNotFound(err) {
						return printLocations(nil)
					}
					if err != nil {
						return err
					}
					return printLocations(locs)
				},
			},
		},
		// Bare invocation serves stdio so editors can launch the binary
		// without a subcommand.
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			return server.New(cfg).Run()
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
