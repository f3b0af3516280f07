package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentdeck/agentdeck/internal/clock"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/domain"
	"github.com/agentdeck/agentdeck/internal/errors"
	"github.com/agentdeck/agentdeck/internal/feed"
	"github.com/agentdeck/agentdeck/internal/history"
	"github.com/agentdeck/agentdeck/internal/hub"
	"github.com/agentdeck/agentdeck/internal/memory"
	"github.com/agentdeck/agentdeck/internal/repo"
	"github.com/agentdeck/agentdeck/internal/script"
	"github.com/agentdeck/agentdeck/internal/server"
	"github.com/agentdeck/agentdeck/internal/signal"
	"github.com/agentdeck/agentdeck/internal/store"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

// newServeCmd creates the serve command, which runs the dashboard backend
// until interrupted.
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard backend",
		Long: `Serve starts the agentdeck gateway: the REST API, the websocket
subscription endpoint, and the JSON snapshot store. The process runs
until SIGINT or SIGTERM, then drains gracefully.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := InitLogger(cfg.Log)
			return runServer(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	return cmd
}

// runServer wires every component and serves until ctx is cancelled or a
// signal arrives.
func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	st, err := store.New(cfg.Storage.DataDir, logger)
	if err != nil {
		return errors.Wrap(err, "failed to open data directory")
	}
	defer func() { _ = st.Close() }()
	clk := clock.RealClock{}

	// The hub's snapshot closure reads repositories assigned just below.
	var (
		tasks  *repo.Tasks
		agents *repo.Agents
		act    *repo.ActivityLog
	)
	h := hub.New(func() domain.Snapshot {
		return domain.Snapshot{
			Tasks:    tasks.All(),
			Agents:   agents.List(),
			Activity: act.Recent(50),
		}
	}, logger)

	act = repo.NewActivityLog(st, clk, h, logger)
	tasks = repo.NewTasks(st, clk, act, logger)
	agents = repo.NewAgents(st, clk, logger)

	var mem *memory.Store
	if cfg.Memory.DatabasePath != "" {
		mem, err = memory.Open(cfg.Memory.DatabasePath, clk, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("memory store disabled")
			mem = nil
		} else {
			defer func() { _ = mem.Close() }()
		}
	}

	gw := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Clock:   clk,
		Hub:     h,
		Tasks:   tasks,
		Agents:  agents,
		Notes:   repo.NewNotes(st, clk, act, logger),
		Sched:   repo.NewScheduled(st, clk, logger),
		Metrics: repo.NewMetrics(st, clk, logger),
		Mood:    repo.NewMood(st, clk, act, logger),
		Act:     act,
		Feed:    feed.New(clk),
		History: history.NewEngine(tasks, clk),
		Memory:  mem,
		Scripts: script.NewExecutor(script.ShellRunner{}, logger),
		Trigger: trigger.New(cfg.Trigger.URL, logger),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gw.Serve(ctx)
	})

	err = g.Wait()

	select {
	case <-handler.Interrupted():
		logger.Info().Msg("shutdown complete")
		return nil
	default:
	}
	return err
}
