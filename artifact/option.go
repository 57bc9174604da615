//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import "time"

// Option configures the Store.
type Option func(*Store)

// WithBaseDir roots the store at dir instead of ./data.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.baseDir = dir
		}
	}
}

// WithNow overrides the clock used to stamp new runs. Tests pin it.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
