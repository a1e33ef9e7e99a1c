package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/odanree/llm-local-assistant-sub008/pkg/pipeline"
	"github.com/odanree/llm-local-assistant-sub008/pkg/projectcontext"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

var (
	stepIntent  string
	stepInputs  []string
	stepDryRun  bool
	stepContext string
)

var stepCmd = &cobra.Command{
	Use:   "step <target-path>",
	Short: "Execute one generation step from prepared model output",
	Long: `Run the full per-step pipeline against model output you already have:
sanitize the target path, extract edit operations, apply them to the virtual
mirror, validate, fix, and commit the result with exactly one file write.

Model output is read from the files given with --from, one file per attempt,
or from stdin when no --from is given. When the pipeline retries past the
last provided output the step ends in a manual task.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if stepIntent == "" {
			return fmt.Errorf("an intent is required; pass it with --message")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := workspace.GetLogger(cfg.EchoSteps)
		defer logger.Close()

		project := projectcontext.NewBuilder(cfg.MaxSampledFiles, logger).BuildContext(projectRoot)

		var writer pipeline.FileWriter
		if stepDryRun {
			writer = pipeline.NewMemoryWriter()
		} else {
			writer = &pipeline.DiskWriter{Root: projectRoot}
		}

		exec, err := pipeline.NewExecutor(cfg, projectRoot, writer, project)
		if err != nil {
			return err
		}

		generate, err := outputFeed(stepInputs)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		step := pipeline.StepDescriptor{
			Number:       1,
			TargetPath:   args[0],
			Intent:       stepIntent,
			PriorContext: stepContext,
		}
		result, err := exec.ExecuteStep(ctx, step, generate)
		if err != nil && !workspace.IsCategory(err, workspace.CategoryRetryExhausted) {
			return err
		}
		printStepResult(cmd.OutOrStdout(), result, stepDryRun)
		if result.Status == pipeline.StatusCommitted {
			return nil
		}
		// Retry exhaustion is a controlled outcome that ends in a manual
		// task, but the step did not land; signal that to scripts via the
		// exit code.
		os.Exit(2)
		return nil
	},
}

func init() {
	stepCmd.Flags().StringVarP(&stepIntent, "message", "m", "", "what this step is meant to accomplish")
	stepCmd.Flags().StringArrayVar(&stepInputs, "from", nil, "file holding model output; repeat for retry attempts")
	stepCmd.Flags().StringVar(&stepContext, "context", "", "extra context text passed into the prompt")
	stepCmd.Flags().BoolVar(&stepDryRun, "dry-run", false, "run the pipeline without writing to disk")
}

// outputFeed turns the prepared model outputs into a GenerateFunc that
// serves one output per attempt. With no files, a single output is read
// from stdin.
func outputFeed(paths []string) (pipeline.GenerateFunc, error) {
	var outputs []string
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading model output from stdin: %w", err)
		}
		outputs = append(outputs, string(data))
	} else {
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, workspace.NewFileSystemError("read", p, err)
			}
			outputs = append(outputs, string(data))
		}
	}

	next := 0
	return func(ctx context.Context, prompt string) (string, error) {
		if next >= len(outputs) {
			return "", fmt.Errorf("no model output left for attempt %d; provide more --from files", next+1)
		}
		out := outputs[next]
		next++
		return out, nil
	}, nil
}

// printStepResult renders the terminal outcome for humans.
func printStepResult(w io.Writer, result *pipeline.StepResult, dryRun bool) {
	switch result.Status {
	case pipeline.StatusCommitted:
		verb := "wrote"
		if dryRun {
			verb = "validated (dry run)"
		}
		fmt.Fprintf(w, "✓ %s %s after %d attempt(s)\n", verb, result.Path, result.Attempts)
		for _, fix := range result.FixesApplied {
			fmt.Fprintf(w, "  fix applied: %s\n", fix)
		}
		if result.Report != nil {
			fmt.Fprintf(w, "  %s\n", result.Report.Summary)
		}
	case pipeline.StatusManual:
		fmt.Fprintf(w, "✗ %s was not written; manual task created\n", result.Path)
		if result.Task != nil {
			fmt.Fprintf(w, "  [%s/%s] %s\n", result.Task.Type, result.Task.Priority, result.Task.Title)
			fmt.Fprintf(w, "  %s\n", result.Task.SuggestedAction)
		}
	default:
		fmt.Fprintf(w, "✗ step aborted for %s\n", result.Path)
	}
}
