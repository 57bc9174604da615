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
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
)

type caseParam struct {
	idx     int
	ctx     context.Context
	tc      dataset.TestCase
	st      *stageRun
	results []CaseResult
	wg      *sync.WaitGroup
}

func (p *caseParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.tc = dataset.TestCase{}
	p.st = nil
	p.results = nil
	p.wg = nil
}

var caseParamPool = &sync.Pool{
	New: func() any { return new(caseParam) },
}

func newCasePool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*caseParam)
		if !ok {
			panic("case pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			caseParamPool.Put(param)
		}()
		param.results[param.idx] = param.st.evaluateCase(param.ctx, param.tc)
	})
	if err != nil {
		return nil, fmt.Errorf("create case pool: %w", err)
	}
	return pool, nil
}
