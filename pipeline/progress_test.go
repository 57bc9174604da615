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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiSinkFansOut(t *testing.T) {
	var a, b []int
	sink := MultiSink(
		ProgressFunc(func(ev ProgressEvent) { a = append(a, ev.Current) }),
		nil,
		ProgressFunc(func(ev ProgressEvent) { b = append(b, ev.Current) }),
	)
	sink.OnProgress(ProgressEvent{Current: 1})
	sink.OnProgress(ProgressEvent{Current: 2})
	assert.Equal(t, []int{1, 2}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestMultiSinkAllNil(t *testing.T) {
	sink := MultiSink(nil, nil)
	assert.NotPanics(t, func() { sink.OnProgress(ProgressEvent{}) })
}
