//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package pipeline drives the two-stage evaluation: every case is first
// tested on the bare question, failed cases are retested with the grounding
// material, and the two verdicts are folded into per-round, per-file and
// per-run reports persisted through the artifact store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trpc.group/trpc-go/trpc-llmeval-go/analysis"
	"trpc.group/trpc-go/trpc-llmeval-go/artifact"
	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
	"trpc.group/trpc-go/trpc-llmeval-go/grade"
	"trpc.group/trpc-go/trpc-llmeval-go/log"
	"trpc.group/trpc-go/trpc-llmeval-go/model"
	"trpc.group/trpc-go/trpc-llmeval-go/telemetry"
)

const (
	defaultAnswerThreshold    = 60
	defaultReasoningThreshold = 60
	defaultRounds             = 1
	defaultCallTimeout        = 120 * time.Second

	// timestampFormat is the human-readable stamp on every report.
	timestampFormat = "2006-01-02 15:04:05"
)

// Evaluator runs the two-stage pipeline for one model under test.
type Evaluator struct {
	subject model.Model
	grader  *grade.Grader
	store   *artifact.Store
	loader  *dataset.Loader

	modelName          string
	answerThreshold    float64
	reasoningThreshold float64
	rounds             int
	parallelism        int
	callTimeout        time.Duration
	now                func() time.Time
	sink               ProgressSink

	pool *ants.PoolWithFunc

	mu     sync.Mutex
	status RunStatus
}

// RunStatus is a point-in-time snapshot of the evaluator's current run.
type RunStatus struct {
	RunID    artifact.RunID `json:"run_id"`
	State    RunState       `json:"state"`
	File     string         `json:"file,omitempty"`
	Progress ProgressEvent  `json:"progress"`
	Error    string         `json:"error,omitempty"`
}

// Result is the outcome of a completed run: the run identity, the canonical
// per-file summaries keyed by file stem, and the cross-file aggregate when
// the run covered more than one file.
type Result struct {
	RunID     artifact.RunID                  `json:"run_id"`
	Files     map[string]analysis.FileSummary `json:"files"`
	MultiFile *analysis.MultiFileAnalysis     `json:"multi_file,omitempty"`
}

// New creates an evaluator for the given subject model, judge and artifact
// store. The model name defaults to the subject's own; thresholds default
// to 60/60 and execution to a single round, single worker.
func New(subject model.Model, grader *grade.Grader, store *artifact.Store, opts ...Option) (*Evaluator, error) {
	if subject == nil {
		return nil, errors.New("pipeline: subject model is nil")
	}
	if grader == nil {
		return nil, errors.New("pipeline: grader is nil")
	}
	if store == nil {
		return nil, errors.New("pipeline: artifact store is nil")
	}
	e := &Evaluator{
		subject:            subject,
		grader:             grader,
		store:              store,
		loader:             dataset.NewLoader(),
		answerThreshold:    defaultAnswerThreshold,
		reasoningThreshold: defaultReasoningThreshold,
		rounds:             defaultRounds,
		parallelism:        1,
		callTimeout:        defaultCallTimeout,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.modelName == "" {
		e.modelName = subject.Info().Name
	}
	if e.modelName == "" {
		return nil, errors.New("pipeline: model name is empty")
	}
	if e.parallelism > 1 {
		pool, err := newCasePool(e.parallelism)
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}
	return e, nil
}

// Close releases the worker pool. The evaluator must not run after Close.
func (e *Evaluator) Close() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Status returns a snapshot of the current run.
func (e *Evaluator) Status() RunStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// fileInput is one loaded dataset, keyed by its stem inside the run.
type fileInput struct {
	stem  string
	cases []dataset.TestCase
}

// Run evaluates the given dataset files as one run. Every file is loaded
// up front so that a broken input fails the run before any artifact
// exists; after that point failures mark the run failed and abort it.
func (e *Evaluator) Run(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, errors.New("pipeline: no dataset files given")
	}
	e.setStatus(func(st *RunStatus) { *st = RunStatus{State: StateCreated} })

	inputs := make([]fileInput, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		cases, err := e.loader.Load(path)
		if err != nil {
			return nil, e.fail(err)
		}
		stem := dataset.FileStem(path)
		if _, ok := seen[stem]; ok {
			return nil, e.fail(fmt.Errorf("pipeline: duplicate dataset stem %q", stem))
		}
		seen[stem] = struct{}{}
		inputs = append(inputs, fileInput{stem: stem, cases: cases})
	}

	id, err := e.store.OpenRun(e.modelName)
	if err != nil {
		return nil, e.fail(fmt.Errorf("open run: %w", err))
	}
	e.setStatus(func(st *RunStatus) { st.RunID = id })
	log.Infof("run %s: %d file(s), %d round(s), thresholds %.0f/%.0f",
		id.Dir(), len(inputs), e.rounds, e.answerThreshold, e.reasoningThreshold)

	ctx, span := telemetry.Tracer.Start(ctx, telemetry.SpanRun)
	span.SetAttributes(
		attribute.String(telemetry.AttrModel, e.modelName),
		attribute.Int(telemetry.AttrFiles, len(inputs)),
	)
	defer span.End()

	result := &Result{
		RunID: id,
		Files: make(map[string]analysis.FileSummary, len(inputs)),
	}
	for _, in := range inputs {
		summary, err := e.runFile(ctx, id, in)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, e.fail(err)
		}
		result.Files[in.stem] = *summary
	}

	if len(inputs) > 1 {
		multi, err := e.aggregate(ctx, id, result.Files)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, e.fail(err)
		}
		result.MultiFile = multi
	}
	e.setState(StateCompleted)
	log.Infof("run %s completed", id.Dir())
	return result, nil
}

// runFile evaluates every round of one file and writes its canonical
// summary artifact.
func (e *Evaluator) runFile(ctx context.Context, id artifact.RunID, in fileInput) (*analysis.FileSummary, error) {
	ctx, span := telemetry.Tracer.Start(ctx, telemetry.SpanFile)
	span.SetAttributes(
		attribute.String(telemetry.AttrFile, in.stem),
		attribute.Int(telemetry.AttrCases, len(in.cases)),
	)
	defer span.End()
	e.setStatus(func(st *RunStatus) { st.File = in.stem })
	log.Infof("file %s: %d cases", in.stem, len(in.cases))

	rounds := make([]*analysis.FileAnalysis, 0, e.rounds)
	for round := 1; round <= e.rounds; round++ {
		fa, err := e.runRound(ctx, id, in, round)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		rounds = append(rounds, fa)
	}

	var summary analysis.FileSummary
	if len(rounds) > 1 {
		multi := analysis.CombineRounds(rounds)
		multi.GeneratedAt = e.now().Format(timestampFormat)
		key := artifact.Key{Run: id, FileStem: in.stem, Name: multiRoundAnalysisName(in.stem)}
		if err := e.store.WriteJSON(key, multi); err != nil {
			return nil, fmt.Errorf("write multi-round analysis for %s: %w", in.stem, err)
		}
		summary = multi.Summary()
	} else {
		summary = rounds[0].Summary()
	}
	summary.GeneratedAt = e.now().Format(timestampFormat)
	key := artifact.Key{Run: id, FileStem: in.stem, Name: analysisName(in.stem)}
	if err := e.store.WriteJSON(key, summary); err != nil {
		return nil, fmt.Errorf("write analysis for %s: %w", in.stem, err)
	}
	return &summary, nil
}

// runRound executes both stages of one round and writes the round's
// artifacts: the stage result sheets, the handoff sheet and the round
// report. The handoff sheet is written even when no case needs a retest,
// so the stage boundary is always visible on disk.
func (e *Evaluator) runRound(ctx context.Context, id artifact.RunID, in fileInput, round int) (*analysis.FileAnalysis, error) {
	e.setState(StateStage1Running)
	stage1Ctx, s1 := telemetry.Tracer.Start(ctx, telemetry.SpanStage1)
	s1.SetAttributes(
		attribute.String(telemetry.AttrFile, in.stem),
		attribute.Int(telemetry.AttrRound, round),
	)
	spec := stageSpec{file: in.stem, round: round, totalRounds: e.rounds}
	results, err := e.runStage(stage1Ctx, spec, in.cases)
	if err != nil {
		s1.SetStatus(codes.Error, err.Error())
		s1.End()
		return nil, fmt.Errorf("first stage, file %s round %d: %w", in.stem, round, err)
	}
	s1.End()

	out1 := e.classifyStage1(results)
	key := artifact.Key{Run: id, FileStem: in.stem, Name: stage1ResultsName(round)}
	if err := e.store.WriteCSV(key, stage1CSVHeader, stage1Rows(out1.results)); err != nil {
		return nil, fmt.Errorf("write first-stage results: %w", err)
	}
	key = artifact.Key{Run: id, FileStem: in.stem, Name: handoffName(round)}
	if err := e.store.WriteCSV(key, handoffCSVHeader, handoffRows(out1.retest)); err != nil {
		return nil, fmt.Errorf("write stage handoff: %w", err)
	}
	log.Infof("file %s round %d: %d/%d passed, %d to retest",
		in.stem, round, out1.stats.Correct, out1.stats.Total, out1.stats.NeedRetest)

	var obs analysis.RoundObservations
	observe(&obs, out1.results)

	var stage2 *analysis.Stage2Stats
	if len(out1.retest) > 0 {
		e.setState(StateStage2Running)
		stage2Ctx, s2 := telemetry.Tracer.Start(ctx, telemetry.SpanStage2)
		s2.SetAttributes(
			attribute.String(telemetry.AttrFile, in.stem),
			attribute.Int(telemetry.AttrRound, round),
			attribute.Int(telemetry.AttrCases, len(out1.retest)),
		)
		spec = stageSpec{file: in.stem, round: round, totalRounds: e.rounds, withContent: true}
		retested, err := e.runStage(stage2Ctx, spec, out1.retest)
		if err != nil {
			s2.SetStatus(codes.Error, err.Error())
			s2.End()
			return nil, fmt.Errorf("second stage, file %s round %d: %w", in.stem, round, err)
		}
		s2.End()
		out2 := e.classifyStage2(retested)
		key = artifact.Key{Run: id, FileStem: in.stem, Name: stage2ResultsName(round)}
		if err := e.store.WriteCSV(key, stage2CSVHeader, stage2Rows(out2.results)); err != nil {
			return nil, fmt.Errorf("write second-stage results: %w", err)
		}
		observe(&obs, out2.results)
		stage2 = &out2.stats
	} else {
		e.setState(StateStage2Skipped)
		log.Infof("file %s round %d: retest set empty, second stage skipped", in.stem, round)
	}

	fa := analysis.BuildRound(round, out1.stats, stage2, obs, analysis.Thresholds{
		Answer:    e.answerThreshold,
		Reasoning: e.reasoningThreshold,
	})
	fa.ModelName = e.modelName
	fa.FileName = in.stem
	fa.GeneratedAt = e.now().Format(timestampFormat)
	key = artifact.Key{Run: id, FileStem: in.stem, Name: roundAnalysisName(in.stem, round)}
	if err := e.store.WriteJSON(key, fa); err != nil {
		return nil, fmt.Errorf("write round analysis: %w", err)
	}
	return fa, nil
}

// aggregate folds the per-file summaries into the run-level report.
func (e *Evaluator) aggregate(ctx context.Context, id artifact.RunID, files map[string]analysis.FileSummary) (*analysis.MultiFileAnalysis, error) {
	e.setState(StateAggregating)
	_, span := telemetry.Tracer.Start(ctx, telemetry.SpanAggregate)
	span.SetAttributes(attribute.Int(telemetry.AttrFiles, len(files)))
	defer span.End()

	multi := analysis.CombineFiles(files)
	multi.GeneratedAt = e.now().Format(timestampFormat)
	key := artifact.Key{Run: id, FileStem: multiFileDir, Name: multiFileAnalysisName}
	if err := e.store.WriteJSON(key, multi); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("write run aggregate: %w", err)
	}
	return multi, nil
}

func (e *Evaluator) setState(s RunState) {
	e.setStatus(func(st *RunStatus) { st.State = s })
}

func (e *Evaluator) setStatus(fn func(*RunStatus)) {
	e.mu.Lock()
	fn(&e.status)
	e.mu.Unlock()
}

// emit records the event in the status snapshot and forwards it to the
// sink, if any.
func (e *Evaluator) emit(ev ProgressEvent) {
	e.setStatus(func(st *RunStatus) { st.Progress = ev })
	if e.sink != nil {
		e.sink.OnProgress(ev)
	}
}

// fail marks the run failed and passes the error through.
func (e *Evaluator) fail(err error) error {
	e.setStatus(func(st *RunStatus) {
		st.State = StateFailed
		st.Error = err.Error()
	})
	log.Errorf("evaluation run failed: %v", err)
	return err
}
