package projectcontext

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// Quality grades how much grounding the project gives the generator.
const (
	QualityRich         = "rich"
	QualityMinimal      = "minimal"
	QualityInsufficient = "insufficient"
)

// Generation modes derived from context quality.
const (
	ModeDiff     = "diff-mode"     // prefer targeted edits
	ModeScaffold = "scaffold-mode" // prefer whole-file generation
)

// Context holds the grounding facts harvested once per session from the
// real project. It is advisory input to prompt construction and the
// validators, not a hard gate.
type Context struct {
	HasManifest     bool              `json:"has_manifest"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"dev_dependencies"`
	Frameworks      []string          `json:"frameworks"`
	TestFramework   string            `json:"test_framework"`
	TopImports      []string          `json:"top_imports"`
	Quality         string            `json:"quality"`
	GenerationMode  string            `json:"generation_mode"`
	Warning         string            `json:"warning,omitempty"`
}

// HasDependency reports whether the project declares the named dependency
// in either dependency set.
func (c *Context) HasDependency(name string) bool {
	if _, ok := c.Dependencies[name]; ok {
		return true
	}
	_, ok := c.DevDependencies[name]
	return ok
}

// knownFrameworks maps a framework label to the manifest dependency names
// that signal it.
var knownFrameworks = map[string][]string{
	"react":   {"react", "react-dom"},
	"next":    {"next"},
	"vue":     {"vue"},
	"svelte":  {"svelte"},
	"angular": {"@angular/core"},
	"express": {"express"},
}

// testFrameworks in detection priority order.
var testFrameworks = []string{"vitest", "jest", "mocha", "jasmine", "ava"}

var importSourceRegex = regexp.MustCompile(`(?m)^\s*import\b[^'"]*['"]([^'"]+)['"]`)

var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".mjs": true, ".cjs": true,
}

// Builder scans a real project once per session.
type Builder struct {
	maxSampledFiles int
	logger          *workspace.Logger
}

// NewBuilder creates a context builder. maxSampledFiles caps how many
// source files are read when harvesting imports; the scan is bounded for
// speed, not exhaustive.
func NewBuilder(maxSampledFiles int, logger *workspace.Logger) *Builder {
	if maxSampledFiles <= 0 {
		maxSampledFiles = 20
	}
	return &Builder{maxSampledFiles: maxSampledFiles, logger: logger}
}

// BuildContext reads the manifest, detects frameworks and test tooling,
// samples imports, and derives context quality and generation mode.
func (b *Builder) BuildContext(projectRoot string) *Context {
	ctx := &Context{
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
	}

	b.readManifest(projectRoot, ctx)
	b.detectFrameworks(ctx)
	b.sampleImports(projectRoot, ctx)
	b.detectTestFramework(projectRoot, ctx)
	b.assessQuality(ctx)

	if b.logger != nil {
		b.logger.Logf("project context: quality=%s mode=%s frameworks=%v", ctx.Quality, ctx.GenerationMode, ctx.Frameworks)
	}
	return ctx
}

func (b *Builder) readManifest(projectRoot string, ctx *Context) {
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return
	}
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		if b.logger != nil {
			b.logger.Logf("manifest parse failed, continuing without it: %v", err)
		}
		return
	}
	ctx.HasManifest = true
	if manifest.Dependencies != nil {
		ctx.Dependencies = manifest.Dependencies
	}
	if manifest.DevDependencies != nil {
		ctx.DevDependencies = manifest.DevDependencies
	}
}

func (b *Builder) detectFrameworks(ctx *Context) {
	for framework, signals := range knownFrameworks {
		for _, dep := range signals {
			if ctx.HasDependency(dep) {
				ctx.Frameworks = append(ctx.Frameworks, framework)
				break
			}
		}
	}
	sort.Strings(ctx.Frameworks)
}

// sampleImports reads a bounded number of source files and records the
// most common import sources, skipping gitignored files.
func (b *Builder) sampleImports(projectRoot string, ctx *Context) {
	ignoreRules := getIgnoreRules(projectRoot)
	counts := map[string]int{}
	sampled := 0

	_ = filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if sampled >= b.maxSampledFiles {
			return fs.SkipAll
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name == "node_modules" || name == ".git" || strings.HasPrefix(name, ".") && rel != "." {
				return fs.SkipDir
			}
			return nil
		}
		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		if ignoreRules != nil && ignoreRules.MatchesPath(rel) {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		for _, match := range importSourceRegex.FindAllStringSubmatch(string(data), -1) {
			counts[match[1]]++
		}
		sampled++
		return nil
	})

	type importCount struct {
		source string
		count  int
	}
	var sorted []importCount
	for source, count := range counts {
		sorted = append(sorted, importCount{source, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].source < sorted[j].source
	})
	limit := 10
	if len(sorted) < limit {
		limit = len(sorted)
	}
	for _, ic := range sorted[:limit] {
		ctx.TopImports = append(ctx.TopImports, ic.source)
	}
}

func (b *Builder) detectTestFramework(projectRoot string, ctx *Context) {
	for _, tf := range testFrameworks {
		if ctx.HasDependency(tf) {
			ctx.TestFramework = tf
			return
		}
	}
	// Fall back to test-file naming conventions.
	entries, err := os.ReadDir(filepath.Join(projectRoot, "src"))
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, ".test.") || strings.Contains(name, ".spec.") {
			ctx.TestFramework = "unknown-by-convention"
			return
		}
	}
}

// assessQuality derives contextQuality and generationMode. Rich context
// prefers targeted edits; insufficient context falls back to whole-file
// scaffolding with an explicit warning that suggestions may be generic.
func (b *Builder) assessQuality(ctx *Context) {
	depCount := len(ctx.Dependencies) + len(ctx.DevDependencies)
	switch {
	case ctx.HasManifest && len(ctx.Frameworks) >= 1 && depCount > 5:
		ctx.Quality = QualityRich
		ctx.GenerationMode = ModeDiff
	case !ctx.HasManifest && len(ctx.Frameworks) == 0:
		ctx.Quality = QualityInsufficient
		ctx.GenerationMode = ModeScaffold
		ctx.Warning = "no manifest or frameworks detected; suggestions may be generic"
	default:
		ctx.Quality = QualityMinimal
		ctx.GenerationMode = ModeScaffold
	}
}

// getIgnoreRules reads .gitignore at the project root and compiles it.
func getIgnoreRules(rootDir string) *ignore.GitIgnore {
	file, err := os.Open(filepath.Join(rootDir, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}
