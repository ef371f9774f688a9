package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/models"
)

// Template wraps a parsed template with helper methods for rendering.
type Template struct {
	tmpl   *template.Template
	logger logging.Logger
}

// TemplateData is the standard data structure passed to all templates.
type TemplateData struct {
	// CSRF token for forms and fetch calls
	CSRFToken string

	// Notifications queued since the last render
	Toasts []models.Toast

	// Page-specific data
	Data interface{}

	Title       string
	Description string

	IsDevelopment bool
}

// DefaultFuncMap returns the default template functions available in all templates.
func DefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"plural": plural,

		"statusClass": statusClass,
		"toastClass":  toastClass,

		"default": defaultValue,
	}
}

// ParseFS parses templates from fsys. The base layout and every partial are
// always included; patterns name the page templates, which define their own
// "content" block.
//
//	tmpl, err := views.ParseFS(templates.FS, logger, "pages/analyzer.gohtml")
func ParseFS(fsys fs.FS, logger logging.Logger, patterns ...string) (*Template, error) {
	tmpl := template.New("").Funcs(DefaultFuncMap())

	baseContent, err := fs.ReadFile(fsys, "layouts/base.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to read base template: %w", err)
	}

	tmpl, err = tmpl.Parse(string(baseContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	partialMatches, err := fs.Glob(fsys, "partials/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}

	for _, match := range partialMatches {
		content, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to read partial %s: %w", match, err)
		}
		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse partial %s: %w", match, err)
		}
	}

	for _, pattern := range patterns {
		content, err := fs.ReadFile(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", pattern, err)
		}
		tmpl, err = tmpl.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pattern, err)
		}
	}

	return &Template{tmpl: tmpl, logger: logger}, nil
}

// MustParseFS is like ParseFS but panics on error.
func MustParseFS(fsys fs.FS, logger logging.Logger, patterns ...string) *Template {
	tmpl, err := ParseFS(fsys, logger, patterns...)
	if err != nil {
		panic(fmt.Sprintf("failed to parse templates: %v", err))
	}
	return tmpl
}

// Execute renders the template to the given writer with the provided data.
func (t *Template) Execute(w io.Writer, data *TemplateData) error {
	return t.tmpl.ExecuteTemplate(w, "base", data)
}

// ExecuteHTTPWithStatus renders the template with a custom HTTP status code.
// Output is buffered so a template error never leaves a half-written page.
func (t *Template) ExecuteHTTPWithStatus(w http.ResponseWriter, r *http.Request, status int, data *TemplateData) {
	buf := &bytes.Buffer{}
	err := t.Execute(buf, data)
	if err != nil {
		t.logger.Error("template execution error", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Template function implementations

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

// statusClass styles the complexity badge.
func statusClass(status models.AnalysisStatus) string {
	switch status {
	case models.StatusSuccess:
		return "bg-green-100 text-green-700 border-green-200"
	case models.StatusError:
		return "bg-red-600 text-white border-red-700"
	default:
		return "bg-gray-100 text-gray-800 border-gray-200"
	}
}

func toastClass(level models.ToastLevel) string {
	switch level {
	case models.ToastSuccess:
		return "bg-green-50 text-green-800 border-green-200"
	case models.ToastWarning:
		return "bg-orange-50 text-orange-800 border-orange-200"
	case models.ToastError:
		return "bg-red-50 text-red-800 border-red-200"
	default:
		return "bg-gray-50 text-gray-800 border-gray-200"
	}
}

func defaultValue(value, defaultVal interface{}) interface{} {
	if value == nil || value == "" || value == 0 {
		return defaultVal
	}
	return value
}
