package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set by goreleaser at build time.
var version = "dev"

const (
	configDirFlag = "config-dir"
	verboseFlag   = "verbose"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "stageresults",
		Usage:   "Record cycling stage results and derive ranks, bunched times and classification points",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configDirFlag,
				Value: ".",
				Usage: "directory holding stageresults.yml",
			},
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			reportCommand(),
			rankCommand(),
			{
				Name:  "version",
				Usage: "print version and exit",
				Action: func(cCtx *cli.Context) error {
					fmt.Fprintln(cCtx.App.Writer, version)
					return nil
				},
			},
		},
	}
}

// newLogger returns a text logger on stderr, at debug level when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
