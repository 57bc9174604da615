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
	"time"

	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
)

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithModelName overrides the name runs and reports are filed under.
// Defaults to the subject model's own name.
func WithModelName(name string) Option {
	return func(e *Evaluator) {
		if name != "" {
			e.modelName = name
		}
	}
}

// WithLoader replaces the dataset loader, e.g. to change the CSV dialect.
func WithLoader(l *dataset.Loader) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.loader = l
		}
	}
}

// WithThresholds sets the answer and reasoning score cut-offs. A case
// passes a stage only when both scores reach their cut-off.
func WithThresholds(answer, reasoning float64) Option {
	return func(e *Evaluator) {
		e.answerThreshold = answer
		e.reasoningThreshold = reasoning
	}
}

// WithRounds repeats the whole two-stage evaluation n times per file.
// Values below 1 are ignored.
func WithRounds(n int) Option {
	return func(e *Evaluator) {
		if n >= 1 {
			e.rounds = n
		}
	}
}

// WithParallelism evaluates up to n cases of a stage concurrently. Values
// below 2 keep the serial path.
func WithParallelism(n int) Option {
	return func(e *Evaluator) {
		if n >= 1 {
			e.parallelism = n
		}
	}
}

// WithCallTimeout bounds a single inference call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.callTimeout = d
	}
}

// WithNow overrides the clock stamped onto reports. Tests pin it.
func WithNow(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithProgressSink streams per-case progress events to sink.
func WithProgressSink(sink ProgressSink) Option {
	return func(e *Evaluator) {
		e.sink = sink
	}
}
