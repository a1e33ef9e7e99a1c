package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/odanree/llm-local-assistant-sub008/pkg/config"
	"github.com/odanree/llm-local-assistant-sub008/pkg/diffgen"
	"github.com/odanree/llm-local-assistant-sub008/pkg/fixer"
	"github.com/odanree/llm-local-assistant-sub008/pkg/pathsafety"
	"github.com/odanree/llm-local-assistant-sub008/pkg/projectcontext"
	"github.com/odanree/llm-local-assistant-sub008/pkg/retry"
	"github.com/odanree/llm-local-assistant-sub008/pkg/validation"
	"github.com/odanree/llm-local-assistant-sub008/pkg/virtualfs"
	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// backoffBase is the delay before the second attempt; later attempts
// scale it by the configured multiplier.
const backoffBase = 500 * time.Millisecond

// Executor runs the per-step pipeline: sanitize the target path, parse
// the model output into edits, apply them to the virtual mirror, run the
// structural and semantic validators, attempt deterministic fixes, and
// either commit exactly one write or hand the step off as a manual task.
type Executor struct {
	cfg       *config.Config
	logger    *workspace.Logger
	root      string
	sanitizer *pathsafety.Sanitizer
	gen       *diffgen.Generator
	state     *virtualfs.State
	engine    *validation.Engine
	fixer     *fixer.Fixer
	writer    FileWriter
	project   *projectcontext.Context
}

// NewExecutor wires the full pipeline for one command invocation. The
// rule-profile overlay from the config is loaded here; a broken overlay
// file fails the whole command rather than silently running without it.
func NewExecutor(cfg *config.Config, root string, writer FileWriter, project *projectcontext.Context) (*Executor, error) {
	registry := validation.NewRegistry()
	if cfg.RuleProfileOverlay != "" {
		if err := registry.LoadOverlay(cfg.RuleProfileOverlay); err != nil {
			return nil, workspace.NewConfigError("rule_profile_overlay", err)
		}
	}
	return &Executor{
		cfg:       cfg,
		logger:    workspace.GetLogger(cfg.EchoSteps),
		root:      root,
		sanitizer: pathsafety.NewSanitizer(cfg.MaxPathLength),
		gen:       diffgen.NewGenerator(cfg),
		state:     virtualfs.NewState(),
		engine:    validation.NewEngine(registry),
		fixer:     fixer.New(),
		writer:    writer,
		project:   project,
	}, nil
}

// State exposes the virtual mirror so callers can pre-load files or
// inspect accumulated content between steps.
func (e *Executor) State() *virtualfs.State {
	return e.state
}

// ExecuteStep runs one step to a terminal outcome. A path violation or a
// generator failure aborts the step; validation failures consume the
// retry budget and end in either a committed write or a manual task.
func (e *Executor) ExecuteStep(ctx context.Context, step StepDescriptor, generate GenerateFunc) (*StepResult, error) {
	sanitized, err := e.sanitizer.SanitizePath(step.TargetPath)
	if err != nil {
		e.logger.LogError(err)
		return &StepResult{Status: StatusAborted, Path: step.TargetPath}, err
	}
	if sanitized != step.TargetPath {
		e.logger.Logf("path sanitized: %q -> %q", step.TargetPath, sanitized)
	}
	// Sanitization is corrective; the final path must still pass the full
	// validation gate before anything can be written to it.
	if rep := e.sanitizer.ValidatePath(sanitized); !rep.OK {
		verr := workspace.NewPathViolationError(sanitized, rep.Violations[0])
		e.logger.LogError(verr)
		return &StepResult{Status: StatusAborted, Path: sanitized}, verr
	}

	snapshot, hadFile := e.state.GetFile(sanitized)
	if !hadFile {
		e.loadFromDisk(sanitized)
		snapshot, _ = e.state.GetFile(sanitized)
	}

	session := retry.NewSession(retry.Policy{
		MaxAttempts:         e.cfg.MaxAttempts,
		MaxSimpleFixRetries: e.cfg.MaxSimpleFixRetries,
		BackoffMultiplier:   e.cfg.BackoffMultiplier,
	})
	fixerBudget := e.cfg.MaxSimpleFixRetries
	avoidance := ""

	for {
		if err := e.wait(ctx, session.GetAttemptCount()); err != nil {
			e.state.LoadFile(sanitized, snapshot)
			return &StepResult{Status: StatusAborted, Path: sanitized, Attempts: session.GetAttemptCount()}, err
		}

		e.logger.LogProcessStep(fmt.Sprintf("step %d: generating %s (attempt %d/%d, confidence %.2f)",
			step.Number, sanitized, session.GetAttemptCount()+1, session.Policy().MaxAttempts, session.Confidence()))

		prompt := e.buildPrompt(step, sanitized, avoidance)
		raw, err := generate(ctx, prompt)
		if err != nil {
			e.state.LoadFile(sanitized, snapshot)
			return &StepResult{Status: StatusAborted, Path: sanitized, Attempts: session.GetAttemptCount()},
				fmt.Errorf("generation failed for %s: %w", sanitized, err)
		}

		parsed := e.gen.Parse(raw)
		if !parsed.IsValid {
			// A parse failure re-prompts without touching the mirror or
			// the fixer budget, but it still consumes an attempt so a
			// model that never produces edits cannot loop forever.
			parseErr := workspace.NewDiffParseError(parsed.Explanation)
			e.logger.LogError(parseErr)
			if res, rerr := e.failAttempt(session, sanitized, snapshot, raw, parseErr, nil); res != nil {
				return res, rerr
			}
			avoidance = session.GenerateAvoidancePrompt()
			continue
		}

		applied := e.applyEdits(sanitized, parsed.Edits)
		if len(applied) == 0 {
			applyErr := workspace.NewSemanticError(sanitized,
				"no edits could be applied: original text not found in current file content")
			if res, rerr := e.failAttempt(session, sanitized, snapshot, raw, applyErr, nil); res != nil {
				return res, rerr
			}
			avoidance = session.GenerateAvoidancePrompt()
			continue
		}

		candidate, _ := e.state.GetFile(sanitized)
		var fixes []string
		problems := e.inspect(sanitized, candidate)

		if len(problems) > 0 && fixerBudget > 0 {
			fixerBudget--
			result := e.fixer.Fix(candidate)
			for _, w := range result.Warnings {
				e.logger.Logf("fixer warning on %s: %s", sanitized, w)
			}
			if result.Fixed {
				candidate = result.Code
				fixes = result.Fixes
				e.state.LoadFile(sanitized, candidate)
				problems = e.inspect(sanitized, candidate)
			}
		}

		if len(problems) == 0 {
			return e.commit(step, sanitized, candidate, session, applied, fixes)
		}

		if res, rerr := e.failAttempt(session, sanitized, snapshot, candidate, problems[0], fixes); res != nil {
			return res, rerr
		}
		avoidance = session.GenerateAvoidancePrompt()
	}
}

// loadFromDisk seeds the mirror from the real file when it exists, or
// with empty content for a file this step is creating.
func (e *Executor) loadFromDisk(path string) {
	data, err := os.ReadFile(filepath.Join(e.root, path))
	if err != nil {
		e.state.LoadFile(path, "")
		return
	}
	e.state.LoadFile(path, string(data))
}

// applyEdits runs each confident edit against the mirror, falling back to
// the fuzzy applier when the strict one rejects. Returns the edits that
// actually landed.
func (e *Executor) applyEdits(path string, edits []diffgen.EditOperation) []diffgen.EditOperation {
	var applied []diffgen.EditOperation
	floor := e.cfg.Confidence.ApplyFloor
	for _, edit := range edits {
		if edit.Confidence < floor {
			e.logger.Logf("skipping %s edit below confidence floor (%.2f < %.2f)", edit.Type, edit.Confidence, floor)
			continue
		}
		outcome := e.state.ApplyEdit(path, edit)
		if outcome.Success {
			applied = append(applied, edit)
			continue
		}
		// Strict application failed; search-replace and structured
		// patches get one fuzzy retry against the full content.
		if edit.Type != diffgen.EditSearchReplace && edit.Type != diffgen.EditStructuredPatch {
			e.logger.Logf("edit rejected on %s: %s", path, outcome.Error)
			continue
		}
		content, _ := e.state.GetFile(path)
		patched, ok := e.gen.ApplyOne(content, edit)
		if !ok {
			e.logger.Logf("edit rejected on %s: %s", path, outcome.Error)
			continue
		}
		e.state.LoadFile(path, patched)
		applied = append(applied, edit)
	}
	return applied
}

// inspect runs the structural check and the validation engine, returning
// the blocking error messages. Warnings are logged and never block.
func (e *Executor) inspect(path, candidate string) []error {
	var problems []error
	syntax := e.state.ValidateSyntax(path)
	for _, msg := range syntax.Errors {
		problems = append(problems, workspace.NewSemanticError(path, msg))
	}

	report := e.engine.Validate(candidate)
	for _, f := range report.Findings {
		switch {
		case f.Severity != validation.SeverityError:
			e.logger.Logf("validation warning on %s [%s]: %s", path, f.RuleID, f.Message)
		case f.Pass == "domain":
			problems = append(problems, workspace.NewDomainViolationError(string(report.Domain), f.Message))
		default:
			problems = append(problems, workspace.NewSemanticError(path, f.Message))
		}
	}
	return problems
}

// commit performs the single real write for the step and records it in
// the mirror's step history.
func (e *Executor) commit(step StepDescriptor, path, candidate string, session *retry.Session, applied []diffgen.EditOperation, fixes []string) (*StepResult, error) {
	if err := e.writer.WriteFile(path, candidate); err != nil {
		e.logger.LogError(err)
		return &StepResult{Status: StatusAborted, Path: path, Attempts: session.GetAttemptCount()}, err
	}
	e.state.RecordStep(step.Number, applied)
	report := e.engine.Validate(candidate)
	e.logger.LogValidationResult(path, true, report.Summary)
	return &StepResult{
		Status:       StatusCommitted,
		Path:         path,
		Code:         candidate,
		Attempts:     session.GetAttemptCount() + 1,
		FixesApplied: fixes,
		Report:       report,
	}, nil
}

// failAttempt records a failed attempt, reverts the mirror to the
// pre-step snapshot, and decides whether the step is over. A nil result
// means the loop retries; otherwise the manual handoff result comes back
// alongside a retry-exhausted error the caller surfaces.
func (e *Executor) failAttempt(session *retry.Session, path, snapshot, code string, attemptErr error, fixes []string) (*StepResult, error) {
	msg := attemptErr.Error()
	if structured, ok := attemptErr.(*workspace.StructuredError); ok {
		msg = structured.Message
	}
	kind := retry.ClassifyError(msg)
	if err := session.RecordAttempt(code, msg, kind, fixes); err != nil {
		e.logger.LogError(err)
	}
	e.logger.Logf("attempt %d failed on %s [%s]: %s", session.GetAttemptCount(), path, kind, msg)

	// Every failed attempt reverts the mirror so the next generation
	// starts from the pre-step content, not the rejected candidate.
	e.state.LoadFile(path, snapshot)

	if session.ShouldRetry() {
		return nil, nil
	}

	task := e.buildManualTask(path, session)
	e.logger.LogValidationResult(path, false, "retry budget exhausted; manual task created")
	return &StepResult{
		Status:   StatusManual,
		Path:     path,
		Attempts: session.GetAttemptCount(),
		Task:     task,
	}, workspace.NewRetryExhaustedError(path, session.GetAttemptCount())
}

// buildManualTask packages the attempt history into a handoff record.
func (e *Executor) buildManualTask(path string, session *retry.Session) *ManualTask {
	last, _ := session.LastAttempt()
	priority := "medium"
	if last.ErrorKind == retry.KindSyntax || session.IsInfiniteLoop() {
		priority = "high"
	}
	title := fmt.Sprintf("Manual review required: %s", path)
	description := fmt.Sprintf("Automated generation of %s failed after %d attempts.\n\n%s",
		path, session.GetAttemptCount(), session.GenerateAttemptSummary())
	action := fmt.Sprintf("Inspect the last attempt's output, fix the reported issue (%s), and write the file by hand.", last.ErrorKind)
	if session.IsInfiniteLoop() {
		action = "Each attempt repeated the same failure; the intent likely needs rewording before the file is written by hand."
	}
	return newManualTask(title, description, string(last.ErrorKind), priority, action)
}

// wait applies the inter-attempt backoff, honoring cancellation. The
// first attempt runs immediately.
func (e *Executor) wait(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if attempt == 0 {
		return nil
	}
	delay := backoffBase
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * e.cfg.BackoffMultiplier)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Validate runs only the validation layer over a code snapshot. Used by
// the standalone validate command.
func (e *Executor) Validate(content string) *validation.Report {
	return e.engine.Validate(content)
}
