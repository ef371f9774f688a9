package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf16"

	"github.com/gorilla/csrf"

	"github.com/rahul4469/runtime-calculator/internal/editor"
	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/middleware"
	"github.com/rahul4469/runtime-calculator/internal/models"
	"github.com/rahul4469/runtime-calculator/internal/services"
	"github.com/rahul4469/runtime-calculator/internal/views"
)

// maxSnippetBytes caps form and JSON bodies.
const maxSnippetBytes = 1 << 20

// AnalyzeController serves the analyzer page and its JSON helpers.
type AnalyzeController struct {
	submissions   *services.SubmissionService
	template      *views.Template
	logger        logging.Logger
	isDevelopment bool
}

func NewAnalyzeController(
	submissions *services.SubmissionService,
	template *views.Template,
	logger logging.Logger,
	isDevelopment bool,
) *AnalyzeController {
	return &AnalyzeController{
		submissions:   submissions,
		template:      template,
		logger:        logger,
		isDevelopment: isDevelopment,
	}
}

// GetAnalyze renders the analyzer page.
func (c *AnalyzeController) GetAnalyze(w http.ResponseWriter, r *http.Request) {
	c.renderPage(w, r, http.StatusOK)
}

// PostAnalyze handles the form submission. Rejected submissions re-render
// the page with the queued notification; accepted ones redirect back to the
// page, which shows the loading state.
func (c *AnalyzeController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnippetBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	key := middleware.SessionKey(r)
	_, err := c.submissions.Submit(r.Context(), key, r.FormValue("code"))
	switch {
	case errors.Is(err, models.ErrEmptyInput), errors.Is(err, models.ErrAnalysisInProgress):
		c.renderPage(w, r, http.StatusUnprocessableEntity)
		return
	case err != nil:
		c.logger.Error("failed to submit analysis", "error", err)
		http.Error(w, "Failed to submit analysis", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// PostClear drops the current result.
func (c *AnalyzeController) PostClear(w http.ResponseWriter, r *http.Request) {
	if _, err := c.submissions.Clear(r.Context(), middleware.SessionKey(r)); err != nil {
		c.logger.Error("failed to clear results", "error", err)
		http.Error(w, "Failed to clear results", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DraftResponse is the editor state after a draft sync. Cursor is in UTF-16
// code units; Chars counts code points.
type DraftResponse struct {
	Code   string `json:"code"`
	Cursor int    `json:"cursor"`
	Chars  int    `json:"chars"`
}

// PostDraft keeps the session's code input in step with the textarea. With
// key=Tab it also applies the tab key to the selection.
func (c *AnalyzeController) PostDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnippetBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, ErrorMessage{Message: "invalid form data", StatusCode: http.StatusBadRequest})
		return
	}

	// selections arrive in UTF-16 code units, the buffer works in code points
	code := r.FormValue("code")
	units := len(utf16.Encode([]rune(code)))
	start := formInt(r, "selection_start", units)
	end := formInt(r, "selection_end", start)
	start, end = editor.RuneOffset(code, start), editor.RuneOffset(code, end)

	key := middleware.SessionKey(r)
	var state *models.PageState
	var err error
	if r.FormValue("key") == "Tab" {
		state, err = c.submissions.InsertTab(r.Context(), key, code, start, end)
	} else {
		state, err = c.submissions.Edit(r.Context(), key, code, end)
	}

	switch {
	case errors.Is(err, models.ErrAnalysisInProgress):
		writeError(w, ErrorMessage{Message: err.Error(), StatusCode: http.StatusConflict})
		return
	case err != nil:
		c.logger.Error("failed to save draft", "error", err)
		writeError(w, ErrorMessage{Message: "failed to save draft", StatusCode: http.StatusInternalServerError})
		return
	}

	writeJSON(w, http.StatusOK, DraftResponse{
		Code:   state.Input.Text,
		Cursor: state.Input.UTF16Cursor(),
		Chars:  state.Input.CharCount(),
	})
}

// StateResponse is the polling view of the page state.
type StateResponse struct {
	Phase        models.Phase           `json:"phase"`
	Loading      bool                   `json:"loading"`
	HasSubmitted bool                   `json:"has_submitted"`
	Result       *models.AnalysisResult `json:"result,omitempty"`
	Chars        int                    `json:"chars"`
}

// GetState reports the page state without consuming notifications.
func (c *AnalyzeController) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := c.submissions.Peek(r.Context(), middleware.SessionKey(r))
	if err != nil {
		c.logger.Error("failed to load page state", "error", err)
		writeError(w, ErrorMessage{Message: "failed to load state", StatusCode: http.StatusInternalServerError})
		return
	}

	writeJSON(w, http.StatusOK, StateResponse{
		Phase:        state.Phase,
		Loading:      state.IsLoading(),
		HasSubmitted: state.HasSubmitted(),
		Result:       state.Result,
		Chars:        state.Input.CharCount(),
	})
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Code string `json:"code"`
}

// PostAPIAnalyze runs one analysis synchronously and returns the verdict.
// It does not touch any session.
func (c *AnalyzeController) PostAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnippetBytes)).Decode(&req); err != nil {
		writeError(w, ErrorMessage{Message: "invalid JSON body", StatusCode: http.StatusBadRequest})
		return
	}

	result, err := c.submissions.Analyze(r.Context(), req.Code)
	switch {
	case errors.Is(err, models.ErrEmptyInput):
		writeError(w, ErrorMessage{Message: models.MsgEmptyInput, StatusCode: http.StatusUnprocessableEntity})
		return
	case err != nil:
		c.logger.Error("analysis failed", "error", err)
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *AnalyzeController) renderPage(w http.ResponseWriter, r *http.Request, status int) {
	state, toasts, err := c.submissions.Page(r.Context(), middleware.SessionKey(r))
	if err != nil {
		c.logger.Error("failed to load page state", "error", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	data := &views.TemplateData{
		Title:         "Runtime Calculator",
		Description:   "Analyze your code's time complexity",
		CSRFToken:     csrf.Token(r),
		Toasts:        toasts,
		IsDevelopment: c.isDevelopment,
		Data:          views.NewAnalyzerView(state),
	}

	c.template.ExecuteHTTPWithStatus(w, r, status, data)
}

func formInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return fallback
	}
	return n
}
