//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides a completion adapter for OpenAI-compatible
// chat-completion endpoints, including the DeepSeek and Qwen services the
// evaluation runs are usually pointed at.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-llmeval-go/model"
)

const (
	deepSeekAPIKeyName     = "DEEPSEEK_API_KEY"
	defaultDeepSeekBaseURL = "https://api.deepseek.com"

	qwenAPIKeyName     = "DASHSCOPE_API_KEY"
	defaultQwenBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// Variant selects endpoint-specific defaults.
type Variant string

const (
	// VariantOpenAI is the default OpenAI variant.
	VariantOpenAI Variant = "openai"
	// VariantDeepSeek is the DeepSeek variant with its base URL and API key env.
	VariantDeepSeek Variant = "deepseek"
	// VariantQwen is the Qwen variant served through DashScope.
	VariantQwen Variant = "qwen"
)

// variantConfig holds per-variant connection defaults.
type variantConfig struct {
	// Default base URL for this variant.
	defaultBaseURL string
	// Environment variable holding the API key for this variant.
	apiKeyName string
}

var variantConfigs = map[Variant]variantConfig{
	VariantOpenAI: {},
	VariantDeepSeek: {
		defaultBaseURL: defaultDeepSeekBaseURL,
		apiKeyName:     deepSeekAPIKeyName,
	},
	VariantQwen: {
		defaultBaseURL: defaultQwenBaseURL,
		apiKeyName:     qwenAPIKeyName,
	},
}

// Model is an OpenAI-compatible completion backend.
type Model struct {
	client  openai.Client
	name    string
	baseURL string
	apiKey  string
}

// New creates a new OpenAI-like completion model.
func New(name string, opts ...Option) *Model {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	// Set default API key and base URL if not specified.
	if cfg, ok := variantConfigs[o.Variant]; ok {
		if val, ok := os.LookupEnv(cfg.apiKeyName); ok && o.APIKey == "" {
			o.APIKey = val
		}
		if cfg.defaultBaseURL != "" && o.BaseURL == "" {
			o.BaseURL = cfg.defaultBaseURL
		}
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.HTTPClient))
	}
	clientOpts = append(clientOpts, o.OpenAIOptions...)

	return &Model{
		client:  openai.NewClient(clientOpts...),
		name:    name,
		baseURL: o.BaseURL,
		apiKey:  o.APIKey,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name}
}

// Complete implements the model.Model interface.
func (m *Model) Complete(ctx context.Context, request *model.Request) (*model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: buildMessages(request),
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	return &model.Response{Text: chatCompletion.Choices[0].Message.Content}, nil
}

// buildMessages converts a request to the chat message unions.
func buildMessages(request *model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if request.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(request.SystemPrompt),
				},
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(request.Prompt),
			},
		},
	})
	return messages
}
