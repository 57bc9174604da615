//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package jsonextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTaggedFence(t *testing.T) {
	raw := "Here is the grade:\n```json\n{\"answer_score\": 85}\n```\nDone."
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer_score": 85}`, string(got))
}

func TestExtractPlainFence(t *testing.T) {
	raw := "```\n{\"answer_score\": 60, \"reasoning_score\": 70}\n```"
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer_score": 60, "reasoning_score": 70}`, string(got))
}

func TestExtractBraceSpan(t *testing.T) {
	raw := `The model answered well. {"answer_score": 90, "reasoning_score": 80} is my verdict.`
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer_score": 90, "reasoning_score": 80}`, string(got))
}

func TestExtractNestedBraces(t *testing.T) {
	raw := `prefix {"outer": {"inner": 1}, "score": 2} suffix`
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"outer": {"inner": 1}, "score": 2}`, string(got))
}

func TestExtractWholeText(t *testing.T) {
	got, err := Extract("  {\"a\": 1}\n")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(got))
}

func TestExtractFenceFallsThroughToBraceSpan(t *testing.T) {
	// The fenced block is broken but a valid object follows it.
	raw := "```json\nnot json at all\n```\nactual: {\"answer_score\": 10}"
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer_score": 10}`, string(got))
}

func TestExtractNoJSON(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"no structured data here",
		"unbalanced { brace",
	} {
		_, err := Extract(raw)
		assert.ErrorIs(t, err, ErrNoJSON, "raw=%q", raw)
	}
}
