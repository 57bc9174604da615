//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package gemini

import "google.golang.org/genai"

// options holds configuration for creating the model.
type options struct {
	clientConfig *genai.ClientConfig
}

var defaultOptions = options{}

// Option configures the model.
type Option func(*options)

// WithClientConfig sets the full genai client config.
func WithClientConfig(c *genai.ClientConfig) Option {
	return func(o *options) {
		if c != nil {
			o.clientConfig = c
		}
	}
}

// WithAPIKey sets the API key on the client config.
func WithAPIKey(key string) Option {
	return func(o *options) {
		if o.clientConfig == nil {
			o.clientConfig = &genai.ClientConfig{}
		}
		o.clientConfig.APIKey = key
		o.clientConfig.Backend = genai.BackendGeminiAPI
	}
}
