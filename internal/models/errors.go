package models

import (
	"errors"
	"fmt"
)

// Submission related errors
var (
	ErrEmptyInput         = errors.New("please enter some code to analyze")
	ErrAnalysisInProgress = errors.New("an analysis is already in progress")
	ErrStaleSubmission    = errors.New("submission was superseded")
)

// Store related errors
var (
	ErrStoreNotMigrated = errors.New("page state store is not migrated")
	ErrStoreConflict    = errors.New("page state changed concurrently")
)

// StateError reports a page state that breaks the phase/result pairing.
type StateError struct {
	Phase Phase
	Issue string
}

func (se StateError) Error() string {
	return fmt.Sprintf("invalid page state %q: %v", se.Phase, se.Issue)
}
