//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package model defines the text-completion interface the evaluation
// pipeline calls for both the model under test and the grading model.
//
// Adapters are deliberately thin: one prompt in, raw reply text out, no
// retry, no parsing, no pipeline logic. Those concerns belong to the
// callers.
package model

import "context"

// Request is a single completion request.
type Request struct {
	// SystemPrompt is prepended as the system message when non-empty.
	SystemPrompt string
	// Prompt is the user message.
	Prompt string
	// Temperature overrides the backend default when non-nil.
	Temperature *float64
	// MaxTokens caps the completion length when non-nil.
	MaxTokens *int
}

// Response carries the raw reply text.
type Response struct {
	// Text is the complete reply exactly as the backend returned it.
	Text string
}

// Info describes a model backend.
type Info struct {
	// Name is the backend model name, e.g. "deepseek-chat".
	Name string
}

// Model is the minimal completion surface used throughout the pipeline.
type Model interface {
	// Complete sends one prompt and returns the raw reply text.
	Complete(ctx context.Context, request *Request) (*Response, error)
	// Info returns descriptive information about the model.
	Info() Info
}

// Float returns a pointer to v, for Request option fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for Request option fields.
func Int(v int) *int { return &v }
