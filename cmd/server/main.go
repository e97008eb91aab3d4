package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/persistence"
	"github.com/rxtech-lab/argo-arena/internal/server"
	"github.com/rxtech-lab/argo-arena/internal/simulation"
	"github.com/rxtech-lab/argo-arena/internal/version"
	"github.com/rxtech-lab/argo-arena/pkg/utils"
)

// serveAction loads the configuration, builds the simulation registry, and
// serves the REST API while the background schedulers advance rounds.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := simulation.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := simulation.NewManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build simulations: %w", err)
	}

	var archive *persistence.Archive

	if dataPath := cmd.String("data"); dataPath != "" {
		archive, err = persistence.NewArchive(dataPath, log)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archive.Close()

		if err := archive.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize archive: %w", err)
		}
	}

	srv := server.NewServer(manager, archive, log)
	if err := srv.Start(int(cmd.Int("port"))); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A typed nil archive must not reach the scheduler's interface field.
	scheduler := server.NewScheduler(manager, nil, log)
	if archive != nil {
		scheduler = server.NewScheduler(manager, archive, log)
	}

	scheduler.Run(ctx)

	log.Info("shutting down", zap.String("reason", "signal received"))

	return srv.Stop(context.Background())
}

// runAction drives one simulation for a fixed number of rounds offline and
// prints the final snapshot as JSON.
func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := simulation.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := simulation.NewManager(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build simulations: %w", err)
	}

	store, err := manager.GetSimulation(cmd.String("simulation"))
	if err != nil {
		return err
	}

	rounds := int(cmd.Int("rounds"))
	kind := store.AdvanceKindFor()

	bar := progressbar.Default(int64(rounds))
	bar.Describe(fmt.Sprintf("Advancing %s", store.Definition().ID))

	for i := 0; i < rounds; i++ {
		snap, err := store.AdvanceRound(ctx, kind)
		if err != nil {
			return fmt.Errorf("advance failed at round %d: %w", i+1, err)
		}

		_ = bar.Add(1)

		if snap.Complete {
			break
		}
	}

	encoded, err := json.MarshalIndent(store.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	fmt.Println(string(encoded))

	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the simulations configuration file",
		Value:   "simulations.yaml",
	}

	cmd := &cli.Command{
		Name:    "arena",
		Usage:   "Multi-agent trading game simulation core",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the simulation REST API",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on",
						Value:   8080,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the snapshot archive database (omit to disable archiving)",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "run",
				Usage: "Advance one simulation offline and print the final snapshot",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "simulation",
						Aliases:  []string{"s"},
						Usage:    "Simulation identifier to advance",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "rounds",
						Aliases: []string{"n"},
						Usage:   "Number of rounds to advance",
						Value:   13,
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the simulations configuration file",
				Action: func(_ context.Context, _ *cli.Command) error {
					schema, err := utils.GetSchemaFromConfig(simulation.Config{})
					if err != nil {
						return fmt.Errorf("failed to generate schema: %w", err)
					}

					fmt.Println(schema)

					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
