package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/odanree/llm-local-assistant-sub008/pkg/config"
)

var (
	projectRoot string
	echoSteps   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lassist",
	Short: "Validation and correction pipeline for locally generated code",
	Long: `Lassist turns raw model output into validated file writes. It parses
edit operations out of model text, applies them to an in-memory mirror of the
project, runs layered heuristic validation tuned per code domain, attempts
deterministic fixes, and retries with corrective guidance before anything
touches disk.

Available commands:
  step      - Execute one generation step from prepared model output
  validate  - Run the validation layer over an existing file
  context   - Analyze the project and print the grounding context
  version   - Print version information`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVar(&echoSteps, "echo-steps", term.IsTerminal(int(os.Stdout.Fd())), "echo pipeline progress to stdout")

	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(contextCmd)
}

// loadConfig reads the persisted config under the project root and folds
// in the command-scoped flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.EchoSteps = echoSteps
	return cfg, nil
}
