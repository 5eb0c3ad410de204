package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"termlife/src/config"
	"termlife/src/simulation"
	"termlife/src/universe"
	"termlife/src/view"
)

func main() {
	logger := log.New(os.Stderr, "termlife: ", log.LstdFlags)

	cfg, err := initOptions()
	if err != nil {
		logger.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Fatalln(err)
	}
}

func initOptions() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flaggy.SetName("termlife")
	flaggy.SetDescription("Conway's Game of Life in the terminal")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&cfg.Size, "x", "size", "Dimension of the square universe")
	flaggy.Float64(&cfg.AliveProbability, "p", "probability", "Probability of a cell to be settled alive")
	flaggy.Duration(&cfg.Interval, "i", "interval", "Simulation speed (interval between the steps), for example 250ms")
	flaggy.Int(&cfg.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	flaggy.Int64(&cfg.Seed, "r", "seed", "Random seed, 0 seeds from the clock")
	flaggy.Bool(&cfg.Headless, "H", "headless", "Print to stdout instead of the interactive terminal UI")
	flaggy.Bool(&cfg.StopWhenStill, "t", "stopWhenStill", "Finish when the universe is extinct or stops changing")
	flaggy.Bool(&cfg.NoColor, "", "no-color", "Disable colors in headless output")
	flaggy.Parse()

	return cfg, nil
}

//newSimulation builds the simulation described by cfg, the universe is seeded from a dedicated source
func newSimulation(cfg config.Config, logger *log.Logger) (*simulation.Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.ResolveSeed(time.Now())
	logger.Printf("seed %d, universe %d x %d", seed, cfg.Size, cfg.Size)

	rnd := rand.New(rand.NewSource(seed))
	uo := cfg.UniverseOptions()
	return simulation.New(simulation.Options{
		Interval:      cfg.Interval,
		MaxSteps:      cfg.MaxSteps,
		StopWhenStill: cfg.StopWhenStill,
		ExitOnFinish:  cfg.Headless,
		Logger:        logger,
	}, func() (*universe.Universe, error) {
		return universe.New(&uo, rnd)
	})
}

//run drives the simulation and the selected view until the user quits, ctx is done
//or the headless simulation is finished
func run(ctx context.Context, cfg config.Config, out io.Writer, logger *log.Logger) error {
	sim, err := newSimulation(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Headless {
		co := view.NewConsoleOut(out, !cfg.NoColor, view.DefProgressEvery)
		sim.RegisterViewer(co)
		co.Start(map[string]interface{}{
			"Dimension":         fmt.Sprintf("%v x %v", cfg.Size, cfg.Size),
			"Interval":          cfg.Interval,
			"Max generations":   cfg.MaxSteps,
			"Alive probability": cfg.AliveProbability,
		})
		g.Go(func() error {
			return sim.Run(ctx)
		})
		return g.Wait()
	}

	ui, err := view.NewConsoleUI(sim)
	if err != nil {
		return err
	}
	sim.RegisterViewer(ui)
	//the terminal belongs to the UI from now on
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	g.Go(func() error {
		return sim.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return errors.Wrap(ui.Start(ctx), "console ui")
	})
	return g.Wait()
}
