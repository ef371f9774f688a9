package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/templates"
)

func TestParseFS_RendersAnalyzerPage(t *testing.T) {
	tpl, err := ParseFS(templates.FS, logging.NewNop(), "pages/analyzer.gohtml")
	if err != nil {
		t.Fatalf("ParseFS() error = %v", err)
	}

	state := models.NewPageState()
	_ = state.Edit("x", 1)

	var buf bytes.Buffer
	err = tpl.Execute(&buf, &TemplateData{
		Toasts: []models.Toast{{Level: models.ToastWarning, Message: "heads up"}},
		Data:   NewAnalyzerView(state),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"<title>Runtime Calculator</title>",
		`<span id="char-count">1</span> character`,
		`data-level="warning"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestParseFS_MissingPage(t *testing.T) {
	if _, err := ParseFS(templates.FS, logging.NewNop(), "pages/nope.gohtml"); err == nil {
		t.Fatal("expected an error for a missing page")
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "characters"},
		{1, "character"},
		{2, "characters"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "character", "characters"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
