package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dusk-indust/stageresults/internal/fixture"
	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/report"
	"github.com/dusk-indust/stageresults/internal/results"
)

const stdoutCLIName = "-"

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "load a YAML race and print its stage classifications",
		ArgsUsage: "<fixture.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(report.FormatText),
				Usage:   "text, json or yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   stdoutCLIName,
				Usage:   "file to write, or \"-\" for stdout",
			},
			&cli.DurationFlag{
				Name:  "bunch-gap",
				Value: results.DefaultBunchGap,
				Usage: "finish gap under which riders share a time",
			},
		},
		Action: runReport,
	}
}

func runReport(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("usage: stageresults report <fixture.yaml>")
	}
	format, err := report.ParseFormat(cCtx.String("format"))
	if err != nil {
		return err
	}
	f, err := fixture.Load(cCtx.Args().First())
	if err != nil {
		return err
	}

	store := results.NewMemStore()
	defer store.Close()
	p := portal.New(store,
		portal.WithAllocator(ids.NewSequenceAllocator()),
		portal.WithLogger(newLogger(cCtx.Bool(verboseFlag))),
		portal.WithBunchGap(cCtx.Duration("bunch-gap")),
	)
	applied, err := f.Apply(cCtx.Context, p)
	if err != nil {
		return err
	}
	rep, err := report.NewBuilder(p).Build(cCtx.Context, applied.RaceID)
	if err != nil {
		return err
	}

	var out io.WriteCloser = nopCloser{cCtx.App.Writer}
	if path := cCtx.String("output"); path != stdoutCLIName {
		out = newLazyWriteCloser(func() (io.WriteCloser, error) {
			return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		})
	}
	if err := report.Write(out, rep, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
