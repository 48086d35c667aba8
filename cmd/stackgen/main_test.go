package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.eggybyte.com/stackgen/internal/testingx"
	"go.eggybyte.com/stackgen/internal/ui"
)

const entitiesFixture = `{"entities":[{"name":"Product","columns":[{"name":"id","type":"number"},{"name":"name","type":"string"},{"name":"price","type":"number"}]}]}`

const projectFixture = `project:
  name: shop
  frontend: web
  backend: api
  app: shop-ui
  mobile_app: shop_app
  backend_package: com.example.shop
`

// run executes the root command with args and returns the ui output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	ui.SetOutput(&buf, &buf)
	t.Cleanup(func() { ui.SetOutput(os.Stdout, os.Stderr) })

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&buf)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func fixtures(t *testing.T) (dir, entities, project string) {
	t.Helper()
	dir = t.TempDir()
	entities = testingx.WriteFile(t, dir, "entities.json", entitiesFixture)
	project = testingx.WriteFile(t, dir, "project.yaml", projectFixture)
	return dir, entities, project
}

func TestCheckCommand(t *testing.T) {
	_, entities, project := fixtures(t)

	out, err := run(t, "check", "--entities", entities, "--project", project)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Check passed: 1 entities") {
		t.Errorf("output = %s", out)
	}

	out, err = run(t, "check", "--entities", filepath.Join(t.TempDir(), "missing.json"), "--project", project)
	if err == nil {
		t.Fatalf("Expected a missing schema to fail, output:\n%s", out)
	}
	if !strings.Contains(out, "Errors found:") {
		t.Errorf("Expected grouped diagnostics, got %s", out)
	}
}

func TestGenerateDryRun(t *testing.T) {
	dir, entities, project := fixtures(t)
	out := filepath.Join(dir, "out")

	text, err := run(t, "generate", "--entities", entities, "--project", project,
		"--out", out, "--targets", "backend", "--dry-run", "--bootstrap=false")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, text)
	}
	if !strings.Contains(text, "ProductController.java") || !strings.Contains(text, "6 files would be written") {
		t.Errorf("output = %s", text)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("Expected dry run to leave %s absent, stat err = %v", out, err)
	}
}

func TestGenerateWrites(t *testing.T) {
	dir, entities, project := fixtures(t)
	out := filepath.Join(dir, "out")

	text, err := run(t, "generate", "--entities", entities, "--project", project,
		"--out", out, "--targets", "frontend,mobile", "--dry-run=false", "--bootstrap=false")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, text)
	}
	for _, p := range []string{
		"shop/web/shop-ui/src/app/app.routes.ts",
		"shop/mobile/shop_app/lib/main.dart",
	} {
		if _, err := os.Stat(filepath.Join(out, p)); err != nil {
			t.Errorf("Expected %s: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "shop/api")); !os.IsNotExist(err) {
		t.Error("Expected no backend output for frontend,mobile")
	}
}

func TestGenerateFailsBeforeWriting(t *testing.T) {
	tests := []struct {
		name     string
		entities string
	}{
		{"malformed json", `{"entities":[{"name":"Product"`},
		{"missing entities key", `{"entity":[{"name":"Product","columns":[{"name":"name","type":"string"}]}]}`},
		{"name without letters", `{"entities":[{"name":"__","columns":[{"name":"name","type":"string"}]}]}`},
		{"invalid column", `{"entities":[{"name":"Product","columns":[{"name":"unit price","type":"number"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, _, project := fixtures(t)
			entities := testingx.WriteFile(t, dir, "bad.json", tt.entities)
			out := filepath.Join(dir, "out")

			text, err := run(t, "generate", "--entities", entities, "--project", project,
				"--out", out, "--targets", "backend,frontend,mobile", "--dry-run=false", "--bootstrap=false")
			if err == nil {
				t.Fatalf("Expected generate to fail, output:\n%s", text)
			}
			if !strings.Contains(text, "Errors found:") {
				t.Errorf("Expected diagnostics in output, got %s", text)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("Expected %s to stay absent, stat err = %v", out, err)
			}
		})
	}

	dir, _, project := fixtures(t)
	out := filepath.Join(dir, "out")
	if _, err := run(t, "generate", "--entities", filepath.Join(dir, "absent.json"), "--project", project,
		"--out", out, "--dry-run=false", "--bootstrap=false"); err == nil {
		t.Error("Expected an unreadable schema to fail")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("Expected %s to stay absent, stat err = %v", out, err)
	}
}

func TestCheckRejectsDegenerateNames(t *testing.T) {
	dir, _, project := fixtures(t)
	entities := testingx.WriteFile(t, dir, "bad.json", `{"entities":[{"name":"Product","columns":[{"name":"_","type":"string"}]}]}`)

	out, err := run(t, "check", "--entities", entities, "--project", project)
	if err == nil {
		t.Fatalf("Expected check to fail, output:\n%s", out)
	}
	if !strings.Contains(out, "entities[0].columns[0].name") {
		t.Errorf("Expected the column path in output, got %s", out)
	}
}

func TestGenerateRejectsUnknownTarget(t *testing.T) {
	_, entities, project := fixtures(t)
	if _, err := run(t, "generate", "--entities", entities, "--project", project, "--targets", "desktop"); err == nil {
		t.Error("Expected an unknown target to fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || !strings.HasPrefix(out, "stackgen version ") {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" backend, ,mobile ,")
	if strings.Join(got, "|") != "backend|mobile" {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Error("Expected nil for an empty value")
	}
}
