package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/rahul4469/runtime-calculator/internal/logging"
	"github.com/rahul4469/runtime-calculator/internal/models"
)

const (
	// resolveTimeout bounds the store writes that record a finished analysis.
	resolveTimeout = 10 * time.Second

	resolveRetries     = 3
	resolveBackoffBase = 50 * time.Millisecond
)

// SubmissionService drives the analyzer page of each session: it accepts
// submissions, runs the analyzer in the background and records the verdict.
type SubmissionService struct {
	store    models.PageStore
	analyzer Analyzer
	logger   logging.Logger
	newID    func() uuid.UUID

	// Background analyses run on baseCtx, not on the request context, so a
	// submission always completes even after the client goes away.
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewSubmissionService(store models.PageStore, analyzer Analyzer, logger logging.Logger) *SubmissionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SubmissionService{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
		newID:    uuid.New,
		baseCtx:  ctx,
		cancel:   cancel,
	}
}

// Page returns the state to render and the notifications queued for it.
// The notifications are consumed.
func (s *SubmissionService) Page(ctx context.Context, key string) (*models.PageState, []models.Toast, error) {
	var toasts []models.Toast
	state, err := s.store.Update(ctx, key, func(st *models.PageState) error {
		toasts = st.DrainToasts()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return state, toasts, nil
}

// Peek returns the state without consuming notifications.
func (s *SubmissionService) Peek(ctx context.Context, key string) (*models.PageState, error) {
	return s.store.Load(ctx, key)
}

// Submit starts an analysis of code for the session. Blank input and a
// second submission while one is running are rejected; the rejection is
// queued as a notification and returned as an error.
func (s *SubmissionService) Submit(ctx context.Context, key, code string) (*models.PageState, error) {
	id := s.newID()
	state, err := s.store.Update(ctx, key, func(st *models.PageState) error {
		return st.Submit(code, id)
	})
	if err != nil {
		return state, err
	}

	s.logger.Info("analysis submitted", "submission_id", id, "chars", state.Input.CharCount())

	s.wg.Add(1)
	go s.run(key, id, code)

	return state, nil
}

func (s *SubmissionService) run(key string, id uuid.UUID, code string) {
	defer s.wg.Done()

	start := time.Now()
	result, analyzeErr := s.analyze(s.baseCtx, code)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.baseCtx), resolveTimeout)
	defer cancel()

	err := s.record(ctx, key, func(st *models.PageState) error {
		if analyzeErr != nil {
			return st.Fail(id)
		}
		return st.Resolve(id, result)
	})

	// an unrecorded verdict leaves the page loading; settle it as a failure
	if err != nil && analyzeErr == nil && !errors.Is(err, models.ErrStaleSubmission) {
		s.logger.Error("failed to record verdict, recording failure", "submission_id", id, "error", err)
		analyzeErr = err
		err = s.record(ctx, key, func(st *models.PageState) error {
			return st.Fail(id)
		})
	}

	switch {
	case errors.Is(err, models.ErrStaleSubmission):
		s.logger.Info("dropping superseded analysis", "submission_id", id)
	case err != nil:
		s.logger.Error("failed to record analysis", "submission_id", id, "error", err)
	case analyzeErr != nil:
		s.logger.Error("analysis failed", "submission_id", id, "error", analyzeErr, "duration", time.Since(start))
	default:
		s.logger.Info("analysis completed",
			"submission_id", id,
			"runtime", result.Runtime,
			"status", result.Status,
			"duration", time.Since(start),
		)
	}
}

// record applies fn to the session state, retrying store failures with
// exponential backoff. A stale submission is final and not retried.
func (s *SubmissionService) record(ctx context.Context, key string, fn func(*models.PageState) error) error {
	backoff := retry.WithMaxRetries(resolveRetries, retry.NewExponential(resolveBackoffBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.store.Update(ctx, key, fn)
		if err == nil || errors.Is(err, models.ErrStaleSubmission) {
			return err
		}
		return retry.RetryableError(err)
	})
}

// analyze calls the analyzer and turns a panic into an error.
func (s *SubmissionService) analyze(ctx context.Context, code string) (result models.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()
	return s.analyzer.Analyze(ctx, code)
}

// Analyze runs the analyzer synchronously without touching any session.
// On analyzer failure it returns the generic unavailable result along with
// the error.
func (s *SubmissionService) Analyze(ctx context.Context, code string) (models.AnalysisResult, error) {
	if strings.TrimSpace(code) == "" {
		return models.AnalysisResult{}, models.ErrEmptyInput
	}
	result, err := s.analyze(ctx, code)
	if err != nil {
		return models.ResultUnavailable, err
	}
	return result, nil
}

// Clear removes the result from the session. Any running analysis of the
// session is superseded and its verdict will be dropped.
func (s *SubmissionService) Clear(ctx context.Context, key string) (*models.PageState, error) {
	return s.store.Update(ctx, key, func(st *models.PageState) error {
		st.Clear()
		return nil
	})
}

// Edit replaces the session's code input.
func (s *SubmissionService) Edit(ctx context.Context, key, text string, cursor int) (*models.PageState, error) {
	return s.store.Update(ctx, key, func(st *models.PageState) error {
		return st.Edit(text, cursor)
	})
}

// InsertTab syncs the text first, then applies the tab key to the selection.
func (s *SubmissionService) InsertTab(ctx context.Context, key, text string, start, end int) (*models.PageState, error) {
	return s.store.Update(ctx, key, func(st *models.PageState) error {
		if err := st.Edit(text, end); err != nil {
			return err
		}
		return st.InsertTab(start, end)
	})
}

// Wait blocks until every running analysis has been recorded.
func (s *SubmissionService) Wait() {
	s.wg.Wait()
}

// Shutdown waits for running analyses. If ctx expires first the analyses are
// cancelled and recorded as failures.
func (s *SubmissionService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
