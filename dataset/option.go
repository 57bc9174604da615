//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package dataset

// Option configures the Loader.
type Option func(*Loader)

// WithComma sets the field delimiter. Comma is the default; exports from
// some tools use tabs or semicolons.
func WithComma(comma rune) Option {
	return func(l *Loader) {
		if comma != 0 {
			l.comma = comma
		}
	}
}

// WithLazyQuotes tolerates bare quotes inside fields, which hand-edited
// files sometimes contain.
func WithLazyQuotes(lazy bool) Option {
	return func(l *Loader) {
		l.lazyQuotes = lazy
	}
}
