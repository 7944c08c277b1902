// Package mill generates the synthetic ball-mill dataset: per-unit operation
// series with scheduled failures, degradation and sensor noise.
package mill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pochkachaiki/millsim/internal/dataset"
	"github.com/pochkachaiki/millsim/internal/models/failure"
	"github.com/pochkachaiki/millsim/internal/random"
)

// Observer is notified as units finish. Implementations must be safe for
// concurrent use.
type Observer interface {
	UnitGenerated(unitID string, rows int)
	FailureScheduled(unitID string, t failure.Type)
}

type Options struct {
	Start         time.Time
	DurationYears float64
	// Seed 0 draws a random seed.
	Seed  uint64
	Units []string
	// Workers bounds how many units are generated at once; 0 means all.
	Workers int
}

type Result struct {
	Seed     uint64
	Start    time.Time
	End      time.Time
	Units    []string
	Frame    *dataset.Frame
	Failures []failure.Event
}

type Generator struct {
	opts     Options
	units    []UnitConfig
	observer Observer
}

func New(opts Options, observer Observer) (*Generator, error) {
	if len(opts.Units) == 0 {
		opts.Units = DefaultUnitIDs()
	}
	units, err := Units(opts.Units)
	if err != nil {
		return nil, err
	}
	if opts.Seed == 0 {
		opts.Seed = random.Seed()
	}
	return &Generator{opts: opts, units: units, observer: observer}, nil
}

func (g *Generator) Seed() uint64 { return g.opts.Seed }

// Generate builds the complete dataset. Units run concurrently, each on its
// own random stream derived from the seed, so the output depends only on the
// seed and the options.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	timestamps, err := Horizon(g.opts.Start, g.opts.DurationYears)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "generating base conditions",
		"start", timestamps[0], "end", timestamps[len(timestamps)-1], "points", len(timestamps), "seed", g.opts.Seed)
	base := GenerateBaseConditions(random.New(g.opts.Seed, 0), timestamps)

	perUnit := make([][]dataset.Record, len(g.units))
	events := make([][]failure.Event, len(g.units))

	eg, ctx := errgroup.WithContext(ctx)
	if g.opts.Workers > 0 {
		eg.SetLimit(g.opts.Workers)
	}
	for i, unit := range g.units {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slog.InfoContext(ctx, "generating unit", "unit_id", unit.ID)
			run := newUnitRun(unit, base, random.New(g.opts.Seed, uint64(i+1)))
			records, err := run.generate()
			if err != nil {
				return fmt.Errorf("generate unit %s: %w", unit.ID, err)
			}
			perUnit[i] = records
			events[i] = run.events
			g.notify(unit.ID, records, run.events)
			slog.InfoContext(ctx, "unit generated", "unit_id", unit.ID, "rows", len(records), "failures", len(run.events))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var failures []failure.Event
	for _, ev := range events {
		failures = append(failures, ev...)
	}

	return &Result{
		Seed:     g.opts.Seed,
		Start:    timestamps[0],
		End:      timestamps[len(timestamps)-1],
		Units:    g.opts.Units,
		Frame:    dataset.Assemble(perUnit...),
		Failures: failures,
	}, nil
}

func (g *Generator) notify(unitID string, records []dataset.Record, events []failure.Event) {
	if g.observer == nil {
		return
	}
	g.observer.UnitGenerated(unitID, len(records))
	for _, ev := range events {
		g.observer.FailureScheduled(unitID, ev.Type)
	}
}
