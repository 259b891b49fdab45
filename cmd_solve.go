package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stenosis/config"
	"stenosis/model"
	"stenosis/physics"
)

// envFlags binds the three simulation parameters to a command.
func envFlags(cmd *cobra.Command, env *model.Env) {
	*env = model.DefaultEnv()
	cmd.Flags().Float64Var(&env.UpstreamPressure, "upstream", env.UpstreamPressure, "Upstream pressure, mmHg")
	cmd.Flags().Float64Var(&env.DownstreamPressure, "downstream", env.DownstreamPressure, "Downstream pressure, mmHg")
	cmd.Flags().Float64Var(&env.ConstrictionPercent, "constriction", env.ConstrictionPercent, "Constriction, percent (clamped to 0..90)")
}

func newSolveCmd(cfg *config.Config) *cobra.Command {
	var (
		env    model.Env
		steps  int
		format string
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print flow and pressure profile for one set of parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			env = env.Clamp()
			if err := env.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("steps") {
				steps = cfg.Simulation.ProfileSteps
			}
			return writeResult(cmd.OutOrStdout(), physics.Evaluate(env, steps), format)
		},
	}
	envFlags(cmd, &env)
	cmd.Flags().IntVar(&steps, "steps", physics.DefaultProfileSteps, "Number of profile intervals")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func writeResult(w io.Writer, res physics.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(res)
	case "text":
		fmt.Fprintf(w, "effective pressure: %.1f -> %.1f mmHg\n", res.Effective.Upstream, res.Effective.Downstream)
		fmt.Fprintf(w, "resistance:         %.6f\n", res.Resistance)
		fmt.Fprintf(w, "flow:               %.0f mL/min\n", res.Flow)
		fmt.Fprintln(w, "position  pressure")
		for _, s := range res.Profile {
			fmt.Fprintf(w, "%7.1f%%  %8.0f\n", s.Position, s.Pressure)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
