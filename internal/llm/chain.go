package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/telemetry"
)

// DefaultCandidateTimeout bounds a single candidate call.
const DefaultCandidateTimeout = 60 * time.Second

// CandidateError records why one candidate failed.
type CandidateError struct {
	Candidate string
	Err       error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Candidate, e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }

// ExhaustedError is returned when no candidate produced a usable reply.
type ExhaustedError struct {
	Attempts []error
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all model candidates failed. Last error: %v", e.Last)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrAllModelsExhausted }

func (e *ExhaustedError) Unwrap() error { return e.Last }

// FirstSuccess calls try for each item in order and returns the first result
// without error. The returned error slice is nil only on success; it holds one
// entry per failed attempt otherwise. A cancelled ctx stops the walk.
func FirstSuccess[C, T any](ctx context.Context, items []C, try func(context.Context, C) (T, error)) (T, []error) {
	var zero T
	errs := make([]error, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return zero, append(errs, err)
		}
		out, err := try(ctx, item)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
	}
	return zero, errs
}

// Chain scores resumes by walking its candidates in order until one returns
// a reply that parses and validates. Candidates are never retried.
type Chain struct {
	candidates []Candidate
	timeout    time.Duration
}

// NewChain builds a Chain. A non-positive timeout uses DefaultCandidateTimeout.
func NewChain(timeout time.Duration, candidates ...Candidate) *Chain {
	if timeout <= 0 {
		timeout = DefaultCandidateTimeout
	}
	return &Chain{candidates: candidates, timeout: timeout}
}

// Candidates returns the candidate names in call order.
func (c *Chain) Candidates() []string {
	names := make([]string, 0, len(c.candidates))
	for _, cand := range c.candidates {
		names = append(names, cand.Name())
	}
	return names
}

// Score implements Scorer.
func (c *Chain) Score(ctx context.Context, text string) (Result, error) {
	if len(c.candidates) == 0 {
		return Result{}, &ExhaustedError{Last: errors.New("no model candidates configured")}
	}
	prompt := BuildScorePrompt(text)
	start := time.Now()

	res, errs := FirstSuccess(ctx, c.candidates, func(ctx context.Context, cand Candidate) (Result, error) {
		return c.try(ctx, cand, prompt)
	})
	metrics.ObserveScoringDurationMs(float64(time.Since(start).Milliseconds()))
	if errs == nil {
		return res, nil
	}

	metrics.IncChainExhausted()
	last := errs[len(errs)-1]
	telemetry.Error("llm.chain_exhausted", map[string]any{
		"attempts": len(errs),
		"error":    last,
	})
	return Result{}, &ExhaustedError{Attempts: errs, Last: last}
}

func (c *Chain) try(ctx context.Context, cand Candidate, prompt string) (Result, error) {
	name := cand.Name()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	reply, err := cand.Complete(callCtx, prompt)
	if err == nil {
		var res Result
		res, err = Parse(reply)
		if err == nil {
			res.Model = name
			telemetry.Info("llm.candidate_succeeded", map[string]any{
				"candidate":   name,
				"duration_ms": time.Since(start).Milliseconds(),
				"ats_score":   res.ATSScore,
			})
			return res, nil
		}
	}

	metrics.IncCandidateFailure()
	telemetry.Warn("llm.candidate_failed", map[string]any{
		"candidate":   name,
		"duration_ms": time.Since(start).Milliseconds(),
		"error":       err,
	})
	return Result{}, &CandidateError{Candidate: name, Err: err}
}
