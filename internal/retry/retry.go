//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package retry provides a bounded retry combinator with linear backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// BaseDelay is multiplied by the number of failed attempts so far to
	// obtain the wait before the next attempt.
	BaseDelay time.Duration
}

// DefaultPolicy matches the grading call contract: three attempts with waits
// of 2s and 4s between them.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 2 * time.Second}

// Do runs fn until it succeeds or the policy is exhausted.
// The wait between attempts grows linearly with the attempt number and is cut
// short when ctx is done. The last error is returned wrapped with the attempt
// count.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.BaseDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, lastErr)
}
