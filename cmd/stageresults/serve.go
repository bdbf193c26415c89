package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/stageresults/internal/config"
	"github.com/dusk-indust/stageresults/internal/fixture"
	"github.com/dusk-indust/stageresults/internal/mcptools"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/results"
	"github.com/dusk-indust/stageresults/internal/rpc"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the portal over JSON-RPC and MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "rpc-addr", Usage: "JSON-RPC listen address"},
			&cli.StringFlag{Name: "mcp-addr", Usage: "MCP streamable HTTP listen address"},
			&cli.StringFlag{Name: "store", Usage: "result store backend: memory or kuzu"},
			&cli.StringFlag{Name: "db-path", Usage: "Kuzu database directory (empty for in-memory Kuzu)"},
			&cli.StringFlag{Name: "fixture", Usage: "YAML race to load before serving"},
			&cli.DurationFlag{Name: "bunch-gap", Usage: "finish gap under which riders share a time"},
			&cli.BoolFlag{Name: "stdio", Usage: "serve MCP on stdin/stdout only"},
		},
		Action: runServe,
	}
}

// loadConfig reads stageresults.yml and applies command-line overrides.
func loadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cCtx.String(configDirFlag))
	if err != nil {
		return nil, err
	}
	if cCtx.Bool(verboseFlag) {
		cfg.Verbose = true
	}
	if v := cCtx.String("rpc-addr"); v != "" {
		cfg.RPCAddr = v
	}
	if v := cCtx.String("mcp-addr"); v != "" {
		cfg.MCPAddr = v
	}
	if v := cCtx.String("store"); v != "" {
		cfg.Store.Backend = v
	}
	if v := cCtx.String("db-path"); v != "" {
		cfg.Store.Path = v
	}
	if v := cCtx.String("fixture"); v != "" {
		cfg.Fixture = v
	}
	if cCtx.IsSet("bunch-gap") {
		cfg.BunchGap = cCtx.Duration("bunch-gap")
	}
	return cfg, cfg.Validate()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (results.Store, error) {
	var (
		store results.Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendKuzu:
		store, err = openKuzuStore(cfg.Path)
	default:
		store = results.NewMemStore()
	}
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init %s store: %w", cfg.Backend, err)
	}
	return store, nil
}

func runServe(cCtx *cli.Context) error {
	cfg, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Verbose)

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	p := portal.New(store, portal.WithLogger(log), portal.WithBunchGap(cfg.BunchGap))
	if cfg.Fixture != "" {
		f, err := fixture.Load(cfg.Fixture)
		if err != nil {
			return err
		}
		applied, err := f.Apply(ctx, p)
		if err != nil {
			return fmt.Errorf("apply fixture %s: %w", cfg.Fixture, err)
		}
		log.Info("fixture loaded", "path", cfg.Fixture, "race", applied.RaceID, "stages", len(applied.Stages))
	}

	mcpServer := mcptools.NewMCPServer(mcptools.NewResultsService(p))
	if cCtx.Bool("stdio") {
		return mcptools.RunMCPServerStdio(ctx, mcpServer)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rpc.NewServer(p, log).Serve(gctx, cfg.RPCAddr)
	})
	g.Go(func() error {
		return mcptools.RunMCPServer(gctx, mcpServer, cfg.MCPAddr, log)
	})
	log.Info("serving", "store", cfg.Store.Backend, "rpc", cfg.RPCAddr, "mcp", cfg.MCPAddr)
	return g.Wait()
}
