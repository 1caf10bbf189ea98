package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/vesperhq/vesper/internal/config"
	"github.com/vesperhq/vesper/internal/gateway"
	"github.com/vesperhq/vesper/internal/heartbeat"
	"github.com/vesperhq/vesper/internal/scheduler"
)

// NewGatewayCommand returns the gateway subcommand.
func NewGatewayCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Start the Vesper gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runGateway,
	}
}

func runGateway(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	status := rt.Assistant.Registry().SkillStatus()
	slog.Info("skills ready",
		"loaded", status.Loaded,
		"enabled", status.Enabled,
		"failed", status.Failed,
		"intents", status.TotalIntents)

	// Automations
	automations, err := scheduler.LoadAutomations(config.AutomationsPath())
	if err != nil {
		slog.Warn("automations not loaded", "error", err)
	}
	sched, err := scheduler.New(rt.Assistant, rt.Bus, automations)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Heartbeat file for `vesper status`
	hb := heartbeat.NewWriter(config.HeartbeatPath())
	hb.Start()
	defer hb.Stop()

	server := gateway.NewServer(rt.Bus, rt.State, rt.Assistant, cfg.Gateway.Host, cfg.Gateway.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
