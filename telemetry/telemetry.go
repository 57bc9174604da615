//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the tracer the evaluation pipeline starts spans
// on. Spans are no-ops unless the host installs a real tracer provider.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// instrumentName identifies this module to the tracer provider.
const instrumentName = "trpc.group/trpc-go/trpc-llmeval-go"

// Span names emitted by the pipeline.
const (
	// SpanRun covers one whole evaluation run.
	SpanRun = "evaluation.run"
	// SpanFile covers one dataset file within a run.
	SpanFile = "evaluation.file"
	// SpanStage1 covers the first-pass evaluation of one round.
	SpanStage1 = "evaluation.stage1"
	// SpanStage2 covers the grounded retest of one round.
	SpanStage2 = "evaluation.stage2"
	// SpanAggregate covers analysis building and artifact writes.
	SpanAggregate = "evaluation.aggregate"
)

// Attribute keys attached to pipeline spans.
const (
	AttrModel = "eval.model_name"
	AttrFile  = "eval.file"
	AttrRound = "eval.round"
	AttrCases = "eval.case_count"
	AttrFiles = "eval.file_count"
)

// Tracer is the tracer spans are started on. It is rebound when a provider
// is installed via SetTracerProvider.
var Tracer trace.Tracer = otel.Tracer(instrumentName)

// SetTracerProvider installs tp as the global provider and rebinds Tracer
// to it.
func SetTracerProvider(tp trace.TracerProvider) {
	if tp == nil {
		return
	}
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(instrumentName)
}
