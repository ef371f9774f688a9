package views

import (
	"strings"

	"github.com/rahul4469/runtime-calculator/internal/models"
)

// AnalyzerView is what the analyzer page template needs to know. It is
// computed from the page state and never changes it.
type AnalyzerView struct {
	Code      string
	Cursor    int // UTF-16 code units, ready for setSelectionRange
	CharCount int

	Loading        bool
	SubmitDisabled bool

	// The clear button exists only while there is a result to clear.
	ShowClear     bool
	ClearDisabled bool

	// Right-hand column. Exactly one of ShowIdlePrompt and ShowResultsCard
	// is set; inside the results card, ShowPlaceholder excludes the others.
	ShowIdlePrompt  bool
	ShowResultsCard bool
	ShowLoading     bool
	ShowResult      bool
	ShowPlaceholder bool

	Result *models.AnalysisResult
}

func NewAnalyzerView(state *models.PageState) AnalyzerView {
	v := AnalyzerView{
		Code:      state.Input.Text,
		Cursor:    state.Input.UTF16Cursor(),
		CharCount: state.Input.CharCount(),
		Loading:   state.IsLoading(),
		Result:    state.Result,
	}

	v.SubmitDisabled = v.Loading || strings.TrimSpace(v.Code) == ""
	v.ShowClear = state.Result != nil
	v.ClearDisabled = v.Loading

	switch state.Phase {
	case models.PhaseUntouched:
		v.ShowIdlePrompt = true
	case models.PhaseLoading:
		v.ShowResultsCard = true
		v.ShowLoading = true
		v.ShowResult = state.Result != nil
	case models.PhaseHasResult:
		v.ShowResultsCard = true
		v.ShowResult = true
	case models.PhaseCleared:
		v.ShowResultsCard = true
		v.ShowPlaceholder = true
	}

	return v
}
