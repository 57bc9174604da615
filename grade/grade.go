//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package grade scores a model's answer against a reference answer using a
// judge model.
//
// The judge call is the flakiest external dependency of the pipeline (rate
// limits, gateway errors, malformed JSON), so it is retried a bounded number
// of times with linear backoff. A reply that survives the retry loop but
// still cannot be parsed collapses to a (0,0) score with the raw text kept
// for audit; grading failures are data, never run aborts.
package grade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-llmeval-go/internal/retry"
	"trpc.group/trpc-go/trpc-llmeval-go/log"
	"trpc.group/trpc-go/trpc-llmeval-go/model"
)

// Input is everything the judge sees for one case.
type Input struct {
	// CaseID identifies the test case, for logs and audit rows.
	CaseID string
	// Question is the original test question.
	Question string
	// ReferenceAnswer is the labeled ground truth.
	ReferenceAnswer string
	// Content is optional grounding text that was shown to the model.
	Content string
	// ModelAnswer is the tested model's answer.
	ModelAnswer string
	// ModelReasoning is the tested model's reasoning.
	ModelReasoning string
}

// Result is the outcome of grading one case.
type Result struct {
	// Scores holds the validated pair, (0,0) when Failed.
	Scores Scores
	// Raw is the last judge reply, preserved for audit.
	Raw string
	// Failed is true when the scores collapsed to (0,0) because the call or
	// the parse failed.
	Failed bool
	// Note describes the failure when Failed is true.
	Note string
}

// Grader grades answers with a judge model.
type Grader struct {
	judge       model.Model
	policy      retry.Policy
	timeout     time.Duration
	temperature *float64
	maxTokens   *int
}

// NewGrader creates a Grader backed by the given judge model.
func NewGrader(judge model.Model, opts ...Option) (*Grader, error) {
	if judge == nil {
		return nil, errors.New("grade: judge model is required")
	}
	g := &Grader{
		judge:   judge,
		policy:  retry.DefaultPolicy,
		timeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// defaultCallTimeout bounds a single judge call.
const defaultCallTimeout = 120 * time.Second

// Grade scores one case. The returned error is non-nil only when ctx ended;
// every per-case failure is folded into the Result instead.
func (g *Grader) Grade(ctx context.Context, input Input) (*Result, error) {
	prompt, err := buildGradingPrompt(input)
	if err != nil {
		// Template execution cannot fail on plain string fields; treat it
		// as a grading failure rather than killing the round.
		return &Result{Failed: true, Note: "build grading prompt: " + err.Error()}, nil
	}
	requestID := uuid.NewString()
	var raw string
	callErr := retry.Do(ctx, g.policy, func(ctx context.Context) error {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		rsp, err := g.judge.Complete(callCtx, &model.Request{
			SystemPrompt: gradingSystemPrompt,
			Prompt:       prompt,
			Temperature:  g.temperature,
			MaxTokens:    g.maxTokens,
		})
		if err != nil {
			log.Debugf("grading request %s case %s: judge call failed: %v",
				requestID, input.CaseID, err)
			return err
		}
		raw = rsp.Text
		if marker, found := findFailureMarker(raw); found {
			log.Debugf("grading request %s case %s: reply carries failure marker %q",
				requestID, input.CaseID, marker)
			return &ParseError{Raw: raw, Reason: "failure marker " + marker, Marker: true}
		}
		return nil
	})
	if callErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warnf("grading request %s case %s failed after retries: %v",
			requestID, input.CaseID, callErr)
		return &Result{
			Raw:    raw,
			Failed: true,
			Note:   "grading call failed: " + callErr.Error(),
		}, nil
	}
	scores, parseErr := ParseScores(raw)
	if parseErr != nil {
		log.Warnf("grading request %s case %s: unparseable reply: %v",
			requestID, input.CaseID, parseErr)
		return &Result{
			Raw:    raw,
			Failed: true,
			Note:   "unparseable grading reply: " + parseErr.Error(),
		}, nil
	}
	return &Result{Scores: scores, Raw: raw}, nil
}
