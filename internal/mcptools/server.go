package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with every results, course and roster
// tool registered.
func NewMCPServer(svc *ResultsService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "stageresults",
		Version: version,
	}, nil)

	// Results.
	mcp.AddTool(server, &mcp.Tool{
		Name:        "register_result",
		Description: "Record a rider's result in a stage that has concluded preparation: start time, one checkpoint per segment in location order, then finish time.",
	}, svc.RegisterResult)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_result",
		Description: "Remove a rider's result from a stage. Removing a missing result succeeds.",
	}, svc.DeleteResult)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rank",
		Description: "Rider IDs of a stage in finishing order. Time trials rank by elapsed time.",
	}, svc.Rank)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "adjusted_elapsed",
		Description: "A rider's elapsed time after the bunched-finish rule: riders finishing less than a second behind the rider ahead share that rider's time.",
	}, svc.AdjustedElapsed)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ranked_adjusted_elapsed",
		Description: "Adjusted elapsed times of every ranked rider, aligned with rank.",
	}, svc.RankedAdjustedElapsed)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "points",
		Description: "Points-classification points of a stage (finish line plus intermediate sprints), aligned with rank.",
	}, svc.Points)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "mountain_points",
		Description: "Mountain-classification points of a stage from its categorized climbs, aligned with rank.",
	}, svc.MountainPoints)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rider_results",
		Description: "A rider's checkpoint times in segment order and elapsed time in a stage.",
	}, svc.RiderResults)

	// Course.
	mcp.AddTool(server, &mcp.Tool{Name: "create_race", Description: "Create a race with a unique name."}, svc.CreateRace)
	mcp.AddTool(server, &mcp.Tool{Name: "list_races", Description: "List race IDs in creation order."}, svc.ListRaces)
	mcp.AddTool(server, &mcp.Tool{Name: "race_details", Description: "Name, description, stage count and total length of a race."}, svc.RaceDetails)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_race", Description: "Remove a race with its stages and their results."}, svc.RemoveRace)
	mcp.AddTool(server, &mcp.Tool{Name: "add_stage", Description: "Add a stage in preparation to a race."}, svc.AddStage)
	mcp.AddTool(server, &mcp.Tool{Name: "race_stages", Description: "Stage IDs of a race ordered by start time."}, svc.RaceStages)
	mcp.AddTool(server, &mcp.Tool{Name: "stage_length", Description: "Length of a stage in kilometres."}, svc.StageLength)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_stage", Description: "Remove a stage with its segments and results."}, svc.RemoveStage)
	mcp.AddTool(server, &mcp.Tool{Name: "conclude_preparation", Description: "Freeze a stage's segments and open it for results."}, svc.ConcludePreparation)
	mcp.AddTool(server, &mcp.Tool{Name: "add_climb", Description: "Add a categorized climb to a stage in preparation."}, svc.AddClimb)
	mcp.AddTool(server, &mcp.Tool{Name: "add_sprint", Description: "Add an intermediate sprint to a stage in preparation."}, svc.AddSprint)
	mcp.AddTool(server, &mcp.Tool{Name: "stage_segments", Description: "Segment IDs of a stage ordered by location."}, svc.StageSegments)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_segment", Description: "Remove a segment from a stage in preparation."}, svc.RemoveSegment)
	mcp.AddTool(server, &mcp.Tool{Name: "race_report", Description: "Text classification table of every stage of a race."}, svc.RaceReport)

	// Roster.
	mcp.AddTool(server, &mcp.Tool{Name: "create_team", Description: "Create a team with a unique name."}, svc.CreateTeam)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_team", Description: "Remove a team, its riders and their results."}, svc.RemoveTeam)
	mcp.AddTool(server, &mcp.Tool{Name: "list_teams", Description: "List team IDs in creation order."}, svc.ListTeams)
	mcp.AddTool(server, &mcp.Tool{Name: "team_riders", Description: "Rider IDs of a team."}, svc.TeamRiders)
	mcp.AddTool(server, &mcp.Tool{Name: "create_rider", Description: "Add a rider to a team."}, svc.CreateRider)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_rider", Description: "Remove a rider and every result they recorded."}, svc.RemoveRider)

	return server
}

// RunMCPServer serves the MCP tools over streamable HTTP on addr until ctx is
// cancelled.
func RunMCPServer(ctx context.Context, server *mcp.Server, addr string, log *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("mcp server listening", "addr", ln.Addr().String())
	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("mcp server stopped")
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
