package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odanree/llm-local-assistant-sub008/pkg/projectcontext"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Analyze the project and print the grounding context",
	Long: `Scan the project root once the way a generation session would: read the
manifest, detect frameworks and the test framework, sample import statements,
and grade the context quality. Prints the result as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := workspace.GetLogger(cfg.EchoSteps)
		defer logger.Close()

		project := projectcontext.NewBuilder(cfg.MaxSampledFiles, logger).BuildContext(projectRoot)
		data, err := json.MarshalIndent(project, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
