package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dusk-indust/stageresults/internal/config"
	"github.com/dusk-indust/stageresults/internal/results"
	"github.com/dusk-indust/stageresults/internal/rpc"
)

func rankCommand() *cli.Command {
	return &cli.Command{
		Name:      "rank",
		Usage:     "print a stage classification from a running server",
		ArgsUsage: "<stage-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "JSON-RPC endpoint (default: http://<rpcAddr>/ from stageresults.yml)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "request timeout",
			},
		},
		Action: runRank,
	}
}

func runRank(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("usage: stageresults rank <stage-id>")
	}
	stageID := cCtx.Args().First()

	endpoint := cCtx.String("endpoint")
	if endpoint == "" {
		cfg, err := config.Load(cCtx.String(configDirFlag))
		if err != nil {
			return err
		}
		endpoint = "http://" + cfg.RPCAddr + "/"
	}
	c := rpc.NewClient(endpoint, rpc.WithTimeout(cCtx.Duration("timeout")))
	ctx := cCtx.Context

	rank, err := c.Rank(ctx, stageID)
	if err != nil {
		return err
	}
	times, err := c.RankedAdjustedElapsedTimes(ctx, stageID)
	if err != nil {
		return err
	}
	points, err := c.PointsInStage(ctx, stageID)
	if err != nil {
		return err
	}
	mountain, err := c.MountainPointsInStage(ctx, stageID)
	if err != nil {
		return err
	}
	if len(times) != len(rank) || len(points) != len(rank) || len(mountain) != len(rank) {
		return fmt.Errorf("stage %s changed while reading, retry", stageID)
	}

	if len(rank) == 0 {
		fmt.Fprintf(cCtx.App.Writer, "Stage %s: no results.\n", stageID)
		return nil
	}
	tw := tabwriter.NewWriter(cCtx.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRIDER\tTIME\tPTS\tKOM")
	for i, rid := range rank {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", i+1, rid, results.FormatClock(times[i]), points[i], mountain[i])
	}
	return tw.Flush()
}
