//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package grade

import (
	"time"

	"trpc.group/trpc-go/trpc-llmeval-go/internal/retry"
	"trpc.group/trpc-go/trpc-llmeval-go/model"
)

// Option configures the Grader.
type Option func(*Grader)

// WithRetryPolicy overrides the judge-call retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(g *Grader) {
		if p.MaxAttempts > 0 {
			g.policy = p
		}
	}
}

// WithTimeout bounds a single judge call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Grader) {
		g.timeout = d
	}
}

// WithTemperature sets the judge sampling temperature. Graders usually run
// cold for reproducible scores.
func WithTemperature(t float64) Option {
	return func(g *Grader) {
		g.temperature = model.Float(t)
	}
}

// WithMaxTokens caps the judge reply length.
func WithMaxTokens(n int) Option {
	return func(g *Grader) {
		g.maxTokens = model.Int(n)
	}
}
