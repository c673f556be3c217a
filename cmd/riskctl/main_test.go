package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, payload string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`transport:
  mode: static
  staticPayload: '%s'
storage:
  driver: file
  path: %s
`, payload, filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeThenHistory(t *testing.T) {
	cfg := writeConfig(t, `{"risk_level":"High","success_probability":30,"risk_explanation":"Thin margins.","risk_categories":{"market":70}}`)

	out, err := run(t, "", "-c", cfg, "analyze", "Ride sharing app for pets")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "High") || !strings.Contains(out, "Thin margins.") {
		t.Fatalf("analyze output = %q", out)
	}

	out, err = run(t, "", "-c", cfg, "history", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Ride sharing app for pets") {
		t.Fatalf("list output = %q", out)
	}
	id := regexp.MustCompile(`\n(\d+)\s`).FindStringSubmatch(out)
	if id == nil {
		t.Fatalf("no id in %q", out)
	}

	out, err = run(t, "", "-c", cfg, "history", "show", id[1])
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Thin margins.") || !strings.Contains(out, "Project: Ride sharing app for pets") {
		t.Fatalf("show output = %q", out)
	}

	if _, err := run(t, "", "-c", cfg, "history", "delete", id[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, _ = run(t, "", "-c", cfg, "history", "list")
	if !strings.Contains(out, "No analysis history yet.") {
		t.Fatalf("list after delete = %q", out)
	}
}

func TestAnalyzeReadsStdin(t *testing.T) {
	cfg := writeConfig(t, `{"response":"Plenty of competition in this space."}`)

	out, err := run(t, "Subscription box for indie board games\n", "-c", cfg, "analyze")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Plenty of competition in this space.") {
		t.Fatalf("output = %q", out)
	}
}

func TestAnalyzeRejectsShortInput(t *testing.T) {
	cfg := writeConfig(t, `{"risk_level":"Low"}`)

	_, err := run(t, "", "-c", cfg, "analyze", "too short")
	if err == nil || !strings.Contains(err.Error(), "at least 20 characters") {
		t.Fatalf("err = %v", err)
	}
	out, _ := run(t, "", "-c", cfg, "history", "list")
	if !strings.Contains(out, "No analysis history yet.") {
		t.Fatalf("rejected input was recorded: %q", out)
	}
}

func TestClearNeedsYes(t *testing.T) {
	cfg := writeConfig(t, `{"risk_level":"Low"}`)
	if _, err := run(t, "", "-c", cfg, "analyze", "Inventory tracker for a bakery chain"); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "", "-c", cfg, "history", "clear"); err == nil {
		t.Fatal("clear without --yes must fail")
	}
	out, err := run(t, "", "-c", cfg, "history", "clear", "--yes")
	if err != nil || !strings.Contains(out, "History cleared.") {
		t.Fatalf("clear = %q, %v", out, err)
	}
}
