package services

import (
	"context"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/rahul4469/runtime-calculator/internal/models"
)

// Analyzer produces a runtime complexity verdict for a code snippet. It is
// the seam where a real analysis engine would plug in.
type Analyzer interface {
	Analyze(ctx context.Context, code string) (models.AnalysisResult, error)
}

// Chooser picks an index in [0, n). *rand.Rand satisfies it, so tests can
// pass a seeded source.
type Chooser interface {
	IntN(n int) int
}

const (
	// DefaultAnalyzeDelay is the latency the simulated analyzer models.
	DefaultAnalyzeDelay = 2 * time.Second

	// MinSnippetLength is the shortest snippet, in characters, that gets a
	// complexity verdict.
	MinSnippetLength = 10
)

// SimulatedAnalyzer waits a fixed delay and returns a canned verdict. It
// never looks at what the code does.
type SimulatedAnalyzer struct {
	delay   time.Duration
	chooser Chooser
	results []models.AnalysisResult
}

// NewSimulatedAnalyzer creates the analyzer. A nil chooser uses the global
// random source.
func NewSimulatedAnalyzer(delay time.Duration, chooser Chooser) *SimulatedAnalyzer {
	if chooser == nil {
		chooser = globalChooser{}
	}
	return &SimulatedAnalyzer{
		delay:   delay,
		chooser: chooser,
		results: models.ComplexityResults(),
	}
}

// NewSeededChooser returns a deterministic Chooser for seed.
func NewSeededChooser(seed uint64) Chooser {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Analyze waits out the delay, then applies the length rule. The context
// only cuts the wait short when the process is stopping.
func (a *SimulatedAnalyzer) Analyze(ctx context.Context, code string) (models.AnalysisResult, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return models.AnalysisResult{}, ctx.Err()
		}
	}

	if utf8.RuneCountInString(code) < MinSnippetLength {
		return models.ResultTooShort, nil
	}

	return a.results[a.chooser.IntN(len(a.results))], nil
}

type globalChooser struct{}

func (globalChooser) IntN(n int) int {
	return rand.IntN(n)
}
