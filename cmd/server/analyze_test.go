package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/internal/services"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	out, err := execute(t, "x = 1", "analyze", "--delay", "0")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	if !strings.Contains(out, "Code snippet too short for meaningful analysis") {
		t.Errorf("output = %q", out)
	}
}

func TestAnalyzeCommand_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.js")
	code := "for (let i = 0; i < n; i++) { total += i }"
	if err := os.WriteFile(path, []byte(code), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "analyze", "--delay", "0", "--json", "--seed", "7", path)
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Status != models.StatusSuccess {
		t.Errorf("result = %+v", result)
	}
}

func TestAnalyzeCommand_DefaultDelay(t *testing.T) {
	cmd := newAnalyzeCommand()
	got, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		t.Fatal(err)
	}
	if got != services.DefaultAnalyzeDelay {
		t.Errorf("default delay = %v, want %v", got, services.DefaultAnalyzeDelay)
	}
}

func TestAnalyzeCommand_EmptyInput(t *testing.T) {
	if _, err := execute(t, " \n\t", "analyze", "--delay", "0"); err == nil {
		t.Fatal("expected an error for blank input")
	}
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	if _, err := execute(t, "", "analyze", "--delay", "0", filepath.Join(t.TempDir(), "nope.go")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
