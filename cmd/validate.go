package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odanree/llm-local-assistant-sub008/pkg/validation"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

var validateShowSuppressed bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Run the validation layer over an existing file",
	Long: `Run domain detection and the full heuristic validation battery over a
file on disk, without generating or writing anything. Exits non-zero when
blocking errors are found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry := validation.NewRegistry()
		if cfg.RuleProfileOverlay != "" {
			if err := registry.LoadOverlay(cfg.RuleProfileOverlay); err != nil {
				return workspace.NewConfigError("rule_profile_overlay", err)
			}
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return workspace.NewFileSystemError("read", args[0], err)
		}

		report := validation.NewEngine(registry).Validate(string(data))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (domain: %s)\n", report.Summary, report.Domain)
		for _, f := range report.Findings {
			fmt.Fprintf(out, "  %-7s [%s] %s\n", f.Severity, f.RuleID, f.Message)
		}
		if validateShowSuppressed {
			for _, f := range report.Suppressed {
				fmt.Fprintf(out, "  suppressed [%s] %s\n", f.RuleID, f.Message)
			}
		}
		if !report.Success {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateShowSuppressed, "show-suppressed", false, "also print findings suppressed by the domain profile")
}
