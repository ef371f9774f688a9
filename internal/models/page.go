package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rahul4469/runtime-calculator/internal/editor"
)

// Phase is the submission state of the analyzer page.
type Phase string

const (
	PhaseUntouched Phase = "untouched"
	PhaseLoading   Phase = "loading"
	PhaseHasResult Phase = "has-result"
	PhaseCleared   Phase = "cleared-after-submit"
)

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// Toast is a one-shot notification shown on the next render.
type Toast struct {
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
}

const (
	MsgEmptyInput       = "Please enter some code to analyze"
	MsgAnalyzeSuccess   = "Code analyzed successfully!"
	MsgAnalyzeWarnings  = "Analysis completed with warnings"
	MsgAnalyzeFailed    = "Failed to analyze code. Please try again."
	MsgAnalysisInFlight = "Analysis already in progress"
)

// PageState is everything the analyzer page renders from, for one visitor.
//
// Result is nil in PhaseUntouched and PhaseCleared, set in PhaseHasResult,
// and holds the previous verdict (if any) while PhaseLoading.
type PageState struct {
	Input        editor.Buffer   `json:"input"`
	Phase        Phase           `json:"phase"`
	Result       *AnalysisResult `json:"result,omitempty"`
	SubmissionID uuid.UUID       `json:"submission_id"`
	Toasts       []Toast         `json:"toasts,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func NewPageState() *PageState {
	return &PageState{Phase: PhaseUntouched}
}

func (s *PageState) IsLoading() bool {
	return s.Phase == PhaseLoading
}

// HasSubmitted mirrors the sticky flag of the page: true from a submission
// until the next clear.
func (s *PageState) HasSubmitted() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseHasResult
}

// Edit updates the code input. Editing is locked while an analysis runs.
func (s *PageState) Edit(text string, cursor int) error {
	if s.IsLoading() {
		return ErrAnalysisInProgress
	}
	s.Input.Edit(text, cursor)
	return nil
}

// InsertTab applies the tab key to the code input.
func (s *PageState) InsertTab(start, end int) error {
	if s.IsLoading() {
		return ErrAnalysisInProgress
	}
	s.Input.InsertTab(start, end)
	return nil
}

// Submit moves the page into PhaseLoading for the given submission.
// Blank input is rejected without touching the phase or the result.
func (s *PageState) Submit(code string, id uuid.UUID) error {
	if strings.TrimSpace(code) == "" {
		s.Notify(ToastError, MsgEmptyInput)
		return ErrEmptyInput
	}
	if s.IsLoading() {
		s.Notify(ToastWarning, MsgAnalysisInFlight)
		return ErrAnalysisInProgress
	}

	s.Input.Edit(code, len([]rune(code)))
	s.Phase = PhaseLoading
	s.SubmissionID = id
	return nil
}

// Resolve stores the verdict of submission id. Resolutions for anything but
// the current in-flight submission are rejected with ErrStaleSubmission.
func (s *PageState) Resolve(id uuid.UUID, result AnalysisResult) error {
	if !s.IsLoading() || s.SubmissionID != id {
		return ErrStaleSubmission
	}

	s.Phase = PhaseHasResult
	s.Result = &result
	s.SubmissionID = uuid.Nil
	if result.IsSuccess() {
		s.Notify(ToastSuccess, MsgAnalyzeSuccess)
	} else {
		s.Notify(ToastWarning, MsgAnalyzeWarnings)
	}
	return nil
}

// Fail resolves submission id with the generic unavailable result.
func (s *PageState) Fail(id uuid.UUID) error {
	if !s.IsLoading() || s.SubmissionID != id {
		return ErrStaleSubmission
	}

	result := ResultUnavailable
	s.Phase = PhaseHasResult
	s.Result = &result
	s.SubmissionID = uuid.Nil
	s.Notify(ToastError, MsgAnalyzeFailed)
	return nil
}

// Clear drops the result and shows the empty results card, whatever the
// prior phase. Any in-flight submission is superseded.
func (s *PageState) Clear() {
	s.Phase = PhaseCleared
	s.Result = nil
	s.SubmissionID = uuid.Nil
}

func (s *PageState) Notify(level ToastLevel, msg string) {
	s.Toasts = append(s.Toasts, Toast{Level: level, Message: msg})
}

// DrainToasts returns the pending notifications and forgets them.
func (s *PageState) DrainToasts() []Toast {
	toasts := s.Toasts
	s.Toasts = nil
	return toasts
}

// Validate checks the phase/result pairing.
func (s *PageState) Validate() error {
	switch s.Phase {
	case PhaseUntouched, PhaseCleared:
		if s.Result != nil {
			return StateError{Phase: s.Phase, Issue: "result must be empty"}
		}
	case PhaseHasResult:
		if s.Result == nil {
			return StateError{Phase: s.Phase, Issue: "result is missing"}
		}
	case PhaseLoading:
		if s.SubmissionID == uuid.Nil {
			return StateError{Phase: s.Phase, Issue: "no submission in flight"}
		}
	default:
		return StateError{Phase: s.Phase, Issue: "unknown phase"}
	}
	return nil
}

// Clone returns a deep copy, so stores can hand out states without sharing.
func (s *PageState) Clone() *PageState {
	c := *s
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	if s.Toasts != nil {
		c.Toasts = append([]Toast(nil), s.Toasts...)
	}
	return &c
}
