package projectcontext

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const richManifest = `{
  "dependencies": {
    "react": "^18.2.0",
    "react-dom": "^18.2.0",
    "clsx": "^2.0.0",
    "zod": "^3.22.0",
    "react-hook-form": "^7.45.0"
  },
  "devDependencies": {
    "vitest": "^1.0.0",
    "typescript": "^5.2.0"
  }
}`

func TestBuildContextRichProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", richManifest)
	writeFile(t, root, "src/App.tsx", "import { useState } from 'react';\nimport clsx from 'clsx';\n")

	ctx := NewBuilder(20, nil).BuildContext(root)

	if !ctx.HasManifest {
		t.Fatal("manifest not detected")
	}
	if ctx.Quality != QualityRich {
		t.Errorf("quality = %s, want %s", ctx.Quality, QualityRich)
	}
	if ctx.GenerationMode != ModeDiff {
		t.Errorf("mode = %s, want %s", ctx.GenerationMode, ModeDiff)
	}
	if len(ctx.Frameworks) == 0 || ctx.Frameworks[0] != "react" {
		t.Errorf("frameworks = %v, want react detected", ctx.Frameworks)
	}
	if ctx.TestFramework != "vitest" {
		t.Errorf("test framework = %s, want vitest", ctx.TestFramework)
	}
	if !ctx.HasDependency("zod") {
		t.Error("zod dependency not recorded")
	}
}

func TestBuildContextMinimalProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"dependencies": {"lodash": "^4.17.0"}}`)

	ctx := NewBuilder(20, nil).BuildContext(root)

	if ctx.Quality != QualityMinimal {
		t.Errorf("quality = %s, want %s", ctx.Quality, QualityMinimal)
	}
	if ctx.GenerationMode != ModeScaffold {
		t.Errorf("mode = %s, want %s", ctx.GenerationMode, ModeScaffold)
	}
	if ctx.Warning != "" {
		t.Errorf("minimal context should not carry a warning, got %q", ctx.Warning)
	}
}

func TestBuildContextInsufficientProject(t *testing.T) {
	root := t.TempDir()

	ctx := NewBuilder(20, nil).BuildContext(root)

	if ctx.Quality != QualityInsufficient {
		t.Errorf("quality = %s, want %s", ctx.Quality, QualityInsufficient)
	}
	if ctx.GenerationMode != ModeScaffold {
		t.Errorf("mode = %s, want %s", ctx.GenerationMode, ModeScaffold)
	}
	if ctx.Warning == "" {
		t.Error("insufficient context must carry a warning")
	}
}

func TestBuildContextMalformedManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", "{not json")

	// A broken manifest degrades to insufficient context, never an error.
	ctx := NewBuilder(20, nil).BuildContext(root)
	if ctx.HasManifest {
		t.Error("malformed manifest reported as present")
	}
	if ctx.Quality != QualityInsufficient {
		t.Errorf("quality = %s, want %s", ctx.Quality, QualityInsufficient)
	}
}

func TestSampleImportsHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "dist/\n")
	writeFile(t, root, "src/a.ts", "import { api } from './api';\nimport axios from 'axios';\n")
	writeFile(t, root, "dist/bundle.js", "import ignored from 'should-not-appear';\n")

	ctx := NewBuilder(20, nil).BuildContext(root)

	for _, imp := range ctx.TopImports {
		if imp == "should-not-appear" {
			t.Error("gitignored file was sampled")
		}
	}
	found := false
	for _, imp := range ctx.TopImports {
		if imp == "axios" {
			found = true
		}
	}
	if !found {
		t.Errorf("axios import not sampled; top imports = %v", ctx.TopImports)
	}
}

func TestDetectTestFrameworkByConvention(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"dependencies": {"react": "1", "react-dom": "1"}}`)
	writeFile(t, root, "src/App.test.tsx", "")

	ctx := NewBuilder(20, nil).BuildContext(root)
	if ctx.TestFramework != "unknown-by-convention" {
		t.Errorf("test framework = %q, want convention fallback", ctx.TestFramework)
	}
}
