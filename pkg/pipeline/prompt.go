package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odanree/llm-local-assistant-sub008/pkg/projectcontext"
)

// buildPrompt assembles the generation prompt for one attempt: the step
// intent, the project grounding, the accumulated virtual file content,
// and any avoidance guidance from earlier failed attempts.
func (e *Executor) buildPrompt(step StepDescriptor, path, avoidance string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Target file: %s\n\n", path)
	fmt.Fprintf(&b, "Task: %s\n", strings.TrimSpace(step.Intent))

	if section := projectSection(e.project); section != "" {
		b.WriteString("\n")
		b.WriteString(section)
	}

	if step.PriorContext != "" {
		b.WriteString("\nAdditional context:\n")
		b.WriteString(strings.TrimSpace(step.PriorContext))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(e.state.CreateStepContext(path, step.Number))

	b.WriteString("\n")
	b.WriteString(formatInstructions(e.project))

	if avoidance != "" {
		b.WriteString("\n")
		b.WriteString(avoidance)
	}

	return b.String()
}

// projectSection renders the grounding facts harvested from the project.
func projectSection(project *projectcontext.Context) string {
	if project == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Project context:\n")
	if len(project.Frameworks) > 0 {
		fmt.Fprintf(&b, "- Frameworks: %s\n", strings.Join(project.Frameworks, ", "))
	}
	if project.TestFramework != "" {
		fmt.Fprintf(&b, "- Test framework: %s\n", project.TestFramework)
	}
	if len(project.Dependencies) > 0 {
		names := make([]string, 0, len(project.Dependencies))
		for name := range project.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "- Dependencies: %s\n", strings.Join(names, ", "))
	}
	if len(project.TopImports) > 0 {
		fmt.Fprintf(&b, "- Common imports: %s\n", strings.Join(project.TopImports, ", "))
	}
	if project.Warning != "" {
		fmt.Fprintf(&b, "- Note: %s\n", project.Warning)
	}
	return b.String()
}

// formatInstructions tells the model what output shape to produce. In
// diff-mode targeted search/replace blocks are preferred; in
// scaffold-mode the model emits the full file.
func formatInstructions(project *projectcontext.Context) string {
	mode := projectcontext.ModeScaffold
	if project != nil {
		mode = project.GenerationMode
	}
	if mode == projectcontext.ModeDiff {
		return "Output format: emit one or more SEARCH/REPLACE blocks. Each block is a " +
			"'SEARCH:' line followed by the exact existing lines, then a 'REPLACE:' line " +
			"followed by the new lines. Copy the existing text exactly; do not paraphrase it. " +
			"Do not include commentary outside the blocks.\n"
	}
	return "Output format: emit the complete file content in a single fenced code block. " +
		"Do not elide sections with '...' placeholders; every line of the file must be present. " +
		"Do not include commentary outside the block.\n"
}
