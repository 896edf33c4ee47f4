package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/aldenbrook/retiresim/internal/calculation"
	"github.com/aldenbrook/retiresim/internal/domain"
	"github.com/aldenbrook/retiresim/internal/output"
	"github.com/aldenbrook/retiresim/internal/planio"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log
// package, same shape as the teacher's cmd/rpgo logger.
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "retiresim %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.String())
			}
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "retiresim",
	Short: "Retirement Monte Carlo decision engine",
	Long:  "Runs a batch of Monte Carlo retirement simulations against a plan and reports success rate and percentile detail.",
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [plan-file] [run-config-file] [historical-data-file]",
		Short: "Run a simulation batch and write the persisted aggregate CSV sections",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			planFile, runConfigFile, dataFile := args[0], args[1], args[2]

			plan, err := planio.LoadFromFile(planFile)
			if err != nil {
				log.Fatal(err)
			}
			runConfig, err := planio.LoadRunConfigFromFile(runConfigFile)
			if err != nil {
				log.Fatal(err)
			}

			var cliLogger calculation.Logger = simpleCLILogger{}
			debugMode, _ := cmd.Flags().GetBool("debug")
			if !debugMode {
				cliLogger = calculation.NopLogger{}
			}

			f, err := os.Open(dataFile)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()

			historical, err := calculation.LoadHistoricalReturns(f, false, cliLogger)
			if err != nil {
				log.Fatal(err)
			}

			parallelism, _ := cmd.Flags().GetInt("parallelism")
			engine := calculation.NewEngine(historical, calculation.DefaultFederalBracketTable(), calculation.EngineOptions{
				Parallelism: parallelism,
				Log:         cliLogger,
			})

			agg, err := engine.RunBatch(context.Background(), plan, *runConfig)
			if err != nil {
				log.Fatal(err)
			}

			writeResults(agg, runConfig)
		},
	}
	cmd.Flags().Bool("debug", false, "enable debug/info logging to stderr")
	cmd.Flags().IntP("parallelism", "p", 8, "worker-pool size; 0 or 1 forces sequential execution")
	return cmd
}

func writeResults(agg *domain.AggregateResult, runConfig *domain.RunConfig) {
	sections := output.Render(agg, runConfig.NumRuns, runConfig.LowerPct, runConfig.UpperPct, "")
	for _, s := range sections {
		data, err := output.Encode(s)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("--- %s ---\n%s\n", s.Name, data)
	}
}

func main() {
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(versionCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
