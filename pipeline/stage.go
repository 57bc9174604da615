//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"trpc.group/trpc-go/trpc-llmeval-go/analysis"
	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
	"trpc.group/trpc-go/trpc-llmeval-go/grade"
	"trpc.group/trpc-go/trpc-llmeval-go/log"
	"trpc.group/trpc-go/trpc-llmeval-go/model"
)

// stageSpec pins the identity of one stage execution.
type stageSpec struct {
	file        string
	round       int
	totalRounds int
	// withContent is true for the retest stage, where the model sees the
	// grounding material.
	withContent bool
}

// stageRun executes one stage over a fixed case list. The done counter
// drives monotonic progress under parallel execution.
type stageRun struct {
	e     *Evaluator
	spec  stageSpec
	total int
	done  atomic.Int64
}

// runStage evaluates every case of one stage, serially or on the worker
// pool, and returns the results in input order. Per-case failures are data;
// the only error returned is a finished context.
func (e *Evaluator) runStage(ctx context.Context, spec stageSpec, cases []dataset.TestCase) ([]CaseResult, error) {
	st := &stageRun{e: e, spec: spec, total: len(cases)}
	results := make([]CaseResult, len(cases))
	if e.pool != nil {
		var wg sync.WaitGroup
		for idx, tc := range cases {
			wg.Add(1)
			param := caseParamPool.Get().(*caseParam)
			param.idx = idx
			param.ctx = ctx
			param.tc = tc
			param.st = st
			param.results = results
			param.wg = &wg
			if err := e.pool.Invoke(param); err != nil {
				wg.Done()
				results[idx] = CaseResult{
					Case:            tc,
					InferenceFailed: true,
					Grade: grade.Result{
						Failed: true,
						Note:   fmt.Sprintf("submit case %s: %v", tc.ID, err),
					},
				}
				param.reset()
				caseParamPool.Put(param)
			}
		}
		wg.Wait()
	} else {
		for idx, tc := range cases {
			results[idx] = st.evaluateCase(ctx, tc)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluateCase runs one case through inference and grading. An inference
// failure leaves the answer empty; the case is graded and counted anyway.
func (st *stageRun) evaluateCase(ctx context.Context, tc dataset.TestCase) CaseResult {
	st.tick(tc.ID, PhaseTesting, int(st.done.Load()))
	res := CaseResult{Case: tc}
	reply, err := st.e.infer(ctx, tc, st.spec.withContent)
	if err != nil {
		res.InferenceFailed = true
		log.Warnf("file %s round %d: inference for case %s failed: %v",
			st.spec.file, st.spec.round, tc.ID, err)
	} else {
		res.RawReply = reply
		inf := grade.ParseInference(reply)
		res.Answer = inf.Answer
		res.Reasoning = inf.Reasoning
	}

	st.tick(tc.ID, PhaseGrading, int(st.done.Load()))
	input := grade.Input{
		CaseID:          tc.ID,
		Question:        tc.Question,
		ReferenceAnswer: tc.ReferenceAnswer,
		ModelAnswer:     res.Answer,
		ModelReasoning:  res.Reasoning,
	}
	if st.spec.withContent {
		input.Content = tc.Content
	}
	gr, err := st.e.grader.Grade(ctx, input)
	if err != nil {
		// Only a finished context reaches here; runStage aborts on it.
		res.Grade = grade.Result{Failed: true, Note: err.Error()}
	} else {
		res.Grade = *gr
	}
	st.tick(tc.ID, PhaseGrading, int(st.done.Add(1)))
	return res
}

func (st *stageRun) tick(caseID string, phase Phase, current int) {
	st.e.emit(ProgressEvent{
		Current:     current,
		Total:       st.total,
		CaseID:      caseID,
		Phase:       phase,
		Round:       st.spec.round,
		TotalRounds: st.spec.totalRounds,
		File:        st.spec.file,
	})
}

// infer asks the model under test one question, bounded by the call
// timeout. Not retried: a failed inference is recorded, not repeated.
func (e *Evaluator) infer(ctx context.Context, tc dataset.TestCase, withContent bool) (string, error) {
	prompt, err := buildInferencePrompt(tc, withContent)
	if err != nil {
		return "", fmt.Errorf("build inference prompt: %w", err)
	}
	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	rsp, err := e.subject.Complete(callCtx, &model.Request{
		SystemPrompt: inferenceSystemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return "", err
	}
	return rsp.Text, nil
}

// stage1Outcome classifies first-pass results: pass both thresholds or
// join the retest set.
type stage1Outcome struct {
	results []CaseResult
	retest  []dataset.TestCase
	stats   analysis.Stage1Stats
}

func (e *Evaluator) classifyStage1(results []CaseResult) *stage1Outcome {
	out := &stage1Outcome{
		results: results,
		stats:   analysis.Stage1Stats{Total: len(results)},
	}
	for _, r := range results {
		if r.Grade.Scores.Answer >= e.answerThreshold && r.Grade.Scores.Reasoning >= e.reasoningThreshold {
			out.stats.Correct++
			continue
		}
		out.stats.NeedRetest++
		out.retest = append(out.retest, r.Case)
	}
	return out
}

// stage2Outcome classifies retest results three ways. Passing both
// thresholds with grounding in hand means the knowledge was missing, not
// the capability; passing only the answer threshold is a reasoning error;
// failing the answer threshold even with grounding is insufficient
// capability.
type stage2Outcome struct {
	results []CaseResult
	stats   analysis.Stage2Stats
}

func (e *Evaluator) classifyStage2(results []CaseResult) *stage2Outcome {
	out := &stage2Outcome{
		results: results,
		stats:   analysis.Stage2Stats{Total: len(results)},
	}
	for _, r := range results {
		answer, reasoning := r.Grade.Scores.Answer, r.Grade.Scores.Reasoning
		switch {
		case answer >= e.answerThreshold && reasoning >= e.reasoningThreshold:
			out.stats.KnowledgeDeficiency++
		case answer >= e.answerThreshold:
			out.stats.ReasoningErrors++
		default:
			out.stats.CapabilityInsufficient++
		}
	}
	return out
}

// observe folds stage results into the round's observation block.
func observe(obs *analysis.RoundObservations, results []CaseResult) {
	for _, r := range results {
		obs.Scores = append(obs.Scores, analysis.ScorePair{
			Answer:    r.Grade.Scores.Answer,
			Reasoning: r.Grade.Scores.Reasoning,
		})
		if r.Grade.Failed {
			obs.ParseFailures++
		}
		if r.InferenceFailed {
			obs.InferenceFailures++
		}
	}
}
