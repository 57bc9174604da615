//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"net/http"

	openaiopt "github.com/openai/openai-go/option"
)

// options holds configuration for creating the model.
type options struct {
	// APIKey authenticates against the endpoint. Falls back to the
	// variant's environment variable when empty.
	APIKey string
	// BaseURL overrides the endpoint URL.
	BaseURL string
	// Variant selects endpoint-specific defaults.
	Variant Variant
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	// OpenAIOptions are extra request options passed through to the SDK.
	OpenAIOptions []openaiopt.RequestOption
}

var defaultOptions = options{
	Variant: VariantOpenAI,
}

// Option configures the model.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.APIKey = key
	}
}

// WithBaseURL sets the endpoint base URL.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.BaseURL = url
	}
}

// WithVariant selects endpoint-specific defaults such as the API key
// environment variable and base URL.
func WithVariant(v Variant) Option {
	return func(o *options) {
		o.Variant = v
	}
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.HTTPClient = c
	}
}

// WithOpenAIOptions appends raw SDK request options.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.OpenAIOptions = append(o.OpenAIOptions, opts...)
	}
}
