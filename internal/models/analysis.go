package models

type AnalysisStatus string

const (
	StatusSuccess AnalysisStatus = "success"
	StatusError   AnalysisStatus = "error"
)

// AnalysisResult is the verdict shown in the results table. A new submission
// replaces it wholesale; it is never edited in place.
type AnalysisResult struct {
	Runtime   string         `json:"runtime"`
	Reasoning string         `json:"reasoning"`
	Status    AnalysisStatus `json:"status"`
}

func (r AnalysisResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

func (r AnalysisResult) IsError() bool {
	return r.Status == StatusError
}

// Canned results of the simulated analyzer.
var (
	ResultTooShort = AnalysisResult{
		Runtime:   "Error",
		Reasoning: "Code snippet too short for meaningful analysis",
		Status:    StatusError,
	}

	// ResultUnavailable replaces the verdict when the analyzer itself fails.
	ResultUnavailable = AnalysisResult{
		Runtime:   "Error",
		Reasoning: "Network error or service unavailable",
		Status:    StatusError,
	}

	ResultLinear = AnalysisResult{
		Runtime:   "O(n)",
		Reasoning: "Linear time complexity due to single loop iteration through input array",
		Status:    StatusSuccess,
	}
	ResultQuadratic = AnalysisResult{
		Runtime:   "O(n²)",
		Reasoning: "Quadratic time due to nested loops processing each element against every other element",
		Status:    StatusSuccess,
	}
	ResultLogarithmic = AnalysisResult{
		Runtime:   "O(log n)",
		Reasoning: "Logarithmic complexity from binary search or divide-and-conquer approach",
		Status:    StatusSuccess,
	}
	ResultConstant = AnalysisResult{
		Runtime:   "O(1)",
		Reasoning: "Constant time operation with direct access or simple arithmetic",
		Status:    StatusSuccess,
	}
)

// ComplexityResults lists the verdicts a long enough snippet can receive.
func ComplexityResults() []AnalysisResult {
	return []AnalysisResult{ResultLinear, ResultQuadratic, ResultLogarithmic, ResultConstant}
}
