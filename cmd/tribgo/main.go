package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/tribgo/tribgo/internal/calculation"
	"github.com/tribgo/tribgo/internal/config"
	"github.com/tribgo/tribgo/internal/domain"
	"github.com/tribgo/tribgo/internal/output"
	"github.com/tribgo/tribgo/internal/scenario"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tribgo",
	Short: "Brazilian tax regime comparison CLI",
	Long:  "Compares the Simples Nacional, Lucro Presumido and Lucro Real regimes and the resulting partner take-home income for a company snapshot",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Calculate and rank the three regimes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		tablesFile, _ := cmd.Flags().GetString("tables")
		withScenarios, _ := cmd.Flags().GetBool("scenarios")

		run, input, tables, err := runEngine(cmd, args[0], tablesFile)
		if err != nil {
			return err
		}

		if withScenarios || input.Options.Scenarios {
			appendScenarios(run, input, tables)
		}

		return printRun(run, format)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [input-file]",
	Short: "Simulate dividend-distribution strategies for the winning regime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tablesFile, _ := cmd.Flags().GetString("tables")

		run, input, tables, err := runEngine(cmd, args[0], tablesFile)
		if err != nil {
			return err
		}
		if run.Winner() == nil {
			return fmt.Errorf("no eligible regime to simulate")
		}

		appendScenarios(run, input, tables)
		best := scenario.MinWithholding(run.Scenarios)
		cf := &output.ConsoleFormatter{}
		fmt.Fprint(cmd.OutOrStdout(), cf.Format(run))
		if best >= 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nLowest withholding: %s\n", run.Scenarios[best].Name)
		}
		return nil
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "tribgo %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

// runEngine loads the input and tables, builds the engine and executes one
// run. Validation failures print their alerts before returning the error.
func runEngine(cmd *cobra.Command, inputFile, tablesFile string) (*domain.CalculationRun, *config.Input, *domain.TaxTables, error) {
	parser := config.NewInputParser()
	input, err := parser.LoadFromFile(inputFile)
	if err != nil {
		return nil, nil, nil, err
	}

	tables, err := config.LoadTables(tablesFile)
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := calculation.NewEngineWithTables(tables)
	if err != nil {
		return nil, nil, nil, err
	}

	run, err := engine.Run(cmd.Context(), input.Company, input.Partners)
	if err != nil {
		var verr *calculation.ValidationError
		if errors.As(err, &verr) {
			for _, a := range verr.Alerts {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", a.Severity, a.Message)
			}
		}
		return nil, nil, nil, err
	}
	return run, input, tables, nil
}

// appendScenarios attaches the distribution strategies for the winning
// regime to the run envelope.
func appendScenarios(run *domain.CalculationRun, input *config.Input, tables *domain.TaxTables) {
	winner := run.Winner()
	if winner == nil {
		return
	}
	run.Scenarios = scenario.Simulate(
		winner.Personal.AvailableProfit,
		input.Partners,
		input.Company.PayoutPolicy.Fraction(),
		tables.Personal,
	)
}

func printRun(run *domain.CalculationRun, format string) error {
	switch format {
	case "json":
		jf := &output.JSONFormatter{}
		s, err := jf.Format(run)
		if err != nil {
			return err
		}
		fmt.Println(s)
	case "csv":
		cf := &output.CSVFormatter{}
		s, err := cf.Format(run)
		if err != nil {
			return err
		}
		fmt.Print(s)
	case "table", "":
		cf := &output.ConsoleFormatter{}
		fmt.Print(cf.Format(run))
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", format)
	}
	return nil
}

func main() {
	calculateCmd.Flags().String("format", "table", "Output format: table, json or csv")
	calculateCmd.Flags().String("tables", "", "Optional statutory-tables override YAML")
	calculateCmd.Flags().Bool("scenarios", false, "Append distribution scenarios for the winning regime")
	simulateCmd.Flags().String("tables", "", "Optional statutory-tables override YAML")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
