package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stenosis/config"
	"stenosis/model"
	"stenosis/simulator"
)

// runStats summarises a headless run.
type runStats struct {
	Ticks           int
	MaxOffset       float64 // 粒子偏离中心线的最大距离
	NormalWidth     float64
	MeanSpeedOpen   float64
	MeanSpeedNarrow float64
}

func newSimulateCmd(cfg *config.Config) *cobra.Command {
	var (
		env           model.Env
		ticks         int
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Advance the particle field headless and report what it did",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := cfg.Simulation
			if sim.Seed == 0 {
				sim.Seed = time.Now().UnixNano()
			}
			engine := simulator.NewEngine(sim, rand.New(rand.NewSource(sim.Seed)))
			res, err := engine.SetEnv(env)
			if err != nil {
				return err
			}
			if err := engine.Resize(model.Canvas{Width: width, Height: height}); err != nil {
				return err
			}
			stats := simulate(engine, ticks)
			log.WithFields(log.Fields{
				"ticks": stats.Ticks,
				"flow":  res.Flow,
			}).Debug("headless run finished")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "flow:                 %.0f mL/min\n", res.Flow)
			fmt.Fprintf(out, "ticks:                %d\n", stats.Ticks)
			fmt.Fprintf(out, "max lateral offset:   %.2f / %.2f px\n", stats.MaxOffset, stats.NormalWidth)
			fmt.Fprintf(out, "mean speed (open):    %.3f px/frame\n", stats.MeanSpeedOpen)
			fmt.Fprintf(out, "mean speed (narrow):  %.3f px/frame\n", stats.MeanSpeedNarrow)
			return nil
		},
	}
	envFlags(cmd, &env)
	cmd.Flags().IntVar(&ticks, "ticks", 600, "Number of frames to advance")
	cmd.Flags().Float64Var(&width, "width", 800, "Canvas width, px")
	cmd.Flags().Float64Var(&height, "height", 400, "Canvas height, px")
	return cmd
}

func simulate(engine *simulator.Engine, ticks int) runStats {
	stats := runStats{Ticks: ticks}
	var open, narrow float64
	var nOpen, nNarrow int
	for i := 0; i < ticks; i++ {
		frame := engine.Step(1)
		g := frame.Geometry
		stats.NormalWidth = g.NormalWidth
		for _, p := range frame.Particles {
			stats.MaxOffset = math.Max(stats.MaxOffset, math.Abs(p.Y-g.Centerline()))
			if p.X < g.RestrictionPoint {
				open += math.Abs(p.Speed)
				nOpen++
			} else {
				narrow += math.Abs(p.Speed)
				nNarrow++
			}
		}
	}
	if nOpen > 0 {
		stats.MeanSpeedOpen = open / float64(nOpen)
	}
	if nNarrow > 0 {
		stats.MeanSpeedNarrow = narrow / float64(nNarrow)
	}
	return stats
}
