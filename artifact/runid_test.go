//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 30, 59, 0, time.Local)
	id := NewRunID("deepseek-v3", now)

	assert.Equal(t, "deepseek-v3", id.ModelName)
	assert.Equal(t, "202503011430", id.Timestamp)
	assert.Equal(t, "deepseek-v3202503011430", id.Dir())
	assert.True(t, id.Valid())

	parsed, err := id.Time()
	require.NoError(t, err)
	// Seconds are below the timestamp granularity.
	assert.Equal(t, now.Truncate(time.Minute), parsed)
}

func TestRunIDValid(t *testing.T) {
	assert.False(t, RunID{}.Valid())
	assert.False(t, RunID{ModelName: "m"}.Valid())
	assert.False(t, RunID{ModelName: "m", Timestamp: "2025"}.Valid())
	assert.False(t, RunID{Timestamp: "202503011430"}.Valid())
	assert.True(t, RunID{ModelName: "m", Timestamp: "202503011430"}.Valid())
}

func TestParseRunDir(t *testing.T) {
	id, ok := parseRunDir("qwen-max", "qwen-max202501311205")
	require.True(t, ok)
	assert.Equal(t, RunID{ModelName: "qwen-max", Timestamp: "202501311205"}, id)

	_, ok = parseRunDir("qwen-max", "other-model202501311205")
	assert.False(t, ok)
	_, ok = parseRunDir("qwen-max", "qwen-max2025013112")
	assert.False(t, ok)
	_, ok = parseRunDir("qwen-max", "qwen-maxnot-a-stamp")
	assert.False(t, ok)
	// A model name that is itself a prefix of another must not claim the
	// longer model's runs.
	_, ok = parseRunDir("qwen", "qwen-max202501311205")
	assert.False(t, ok)
}

func TestRunDirOrderingMatchesTime(t *testing.T) {
	early := NewRunID("m", time.Date(2025, 1, 2, 9, 5, 0, 0, time.Local))
	late := NewRunID("m", time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local))
	assert.Less(t, early.Dir(), late.Dir())
}
