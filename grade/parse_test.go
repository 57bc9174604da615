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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScoresVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Scores
	}{
		{
			name: "tagged fence",
			raw:  "```json\n{\"score_answer\": 85, \"score_reasoning\": 90}\n```",
			want: Scores{Answer: 85, Reasoning: 90},
		},
		{
			name: "plain fence",
			raw:  "```\n{\"score_answer\": 60, \"score_reasoning\": 55.5}\n```",
			want: Scores{Answer: 60, Reasoning: 55.5},
		},
		{
			name: "embedded in prose",
			raw:  "After review the verdict is {\"score_answer\": 100, \"score_reasoning\": 0} as stated.",
			want: Scores{Answer: 100, Reasoning: 0},
		},
		{
			name: "whole text",
			raw:  `{"score_answer": 42, "score_reasoning": 43}`,
			want: Scores{Answer: 42, Reasoning: 43},
		},
		{
			name: "numeric strings",
			raw:  `{"score_answer": "88", "score_reasoning": " 77 "}`,
			want: Scores{Answer: 88, Reasoning: 77},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScores(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScoresFailures(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantMarker bool
	}{
		{name: "empty", raw: ""},
		{name: "prose only", raw: "I cannot grade this."},
		{name: "missing reasoning", raw: `{"score_answer": 80}`},
		{name: "missing answer", raw: `{"score_reasoning": 80}`},
		{name: "answer above range", raw: `{"score_answer": 101, "score_reasoning": 50}`},
		{name: "reasoning below range", raw: `{"score_answer": 50, "score_reasoning": -1}`},
		{name: "non numeric", raw: `{"score_answer": "high", "score_reasoning": 50}`},
		{name: "array not object", raw: `[1, 2]`},
		{name: "chinese gateway failure", raw: "API调用失败: 502 bad gateway", wantMarker: true},
		{name: "request exception", raw: "请求异常: connection reset", wantMarker: true},
		{name: "english failure marker", raw: "model call failed: upstream timeout", wantMarker: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := ParseScores(tt.raw)
			require.Error(t, err)
			assert.Equal(t, Scores{}, scores)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.raw, parseErr.Raw, "raw text must be preserved")
			assert.Equal(t, tt.wantMarker, parseErr.Marker)
		})
	}
}

func TestParseInference(t *testing.T) {
	inf := ParseInference("```json\n{\"llm_answer\": \"42\", \"llm_reasoning\": \"because\"}\n```")
	assert.Equal(t, Inference{Answer: "42", Reasoning: "because"}, inf)

	inf = ParseInference(`{"answer": "yes", "reasoning": "it follows"}`)
	assert.Equal(t, Inference{Answer: "yes", Reasoning: "it follows"}, inf)

	// Free text falls back to the whole reply as the answer.
	inf = ParseInference("  The answer is 42.  ")
	assert.Equal(t, Inference{Answer: "The answer is 42."}, inf)

	// JSON without recognized keys still yields the raw reply.
	inf = ParseInference(`{"other": 1}`)
	assert.Equal(t, `{"other": 1}`, inf.Answer)
	assert.Empty(t, inf.Reasoning)
}
