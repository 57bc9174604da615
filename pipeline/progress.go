//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package pipeline

// Phase names the half of a case's flow a progress event reports.
type Phase string

const (
	// PhaseTesting is the inference call against the model under test.
	PhaseTesting Phase = "testing"
	// PhaseGrading is the judge call scoring the model's answer.
	PhaseGrading Phase = "grading"
)

// ProgressEvent is one tick of evaluation progress. Current counts
// completed cases of the current file and stage; it never decreases within
// one stage.
type ProgressEvent struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CaseID      string `json:"case_id"`
	Phase       Phase  `json:"phase"`
	Round       int    `json:"round"`
	TotalRounds int    `json:"total_rounds"`
	File        string `json:"file,omitempty"`
}

// ProgressSink receives progress events during a run. Events are emitted
// inline on the evaluation path, so implementations must return quickly.
type ProgressSink interface {
	OnProgress(event ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(event ProgressEvent)

// OnProgress implements ProgressSink.
func (f ProgressFunc) OnProgress(event ProgressEvent) { f(event) }

// MultiSink fans each event out to every non-nil sink, in order.
func MultiSink(sinks ...ProgressSink) ProgressSink {
	kept := make([]ProgressSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return ProgressFunc(func(event ProgressEvent) {
		for _, s := range kept {
			s.OnProgress(event)
		}
	})
}
