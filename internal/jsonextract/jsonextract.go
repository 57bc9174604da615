//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package jsonextract locates a JSON document embedded in free-form model output.
//
// Model replies are untrusted text: the JSON payload may arrive inside a
// tagged markdown fence, inside a bare fence, buried in surrounding prose, or
// as the whole reply. Extraction tries an ordered list of strategies and the
// first candidate that is valid JSON wins.
package jsonextract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON indicates that no strategy produced a valid JSON document.
var ErrNoJSON = errors.New("jsonextract: no valid json found")

// strategy locates one candidate JSON document in raw text.
// The boolean reports whether the strategy matched at all; the candidate is
// validated by the caller.
type strategy func(raw string) (string, bool)

var strategies = []strategy{
	taggedFence,
	plainFence,
	braceSpan,
	wholeText,
}

var (
	taggedFenceRE = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	plainFenceRE  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Extract returns the first JSON document found in raw.
// It returns ErrNoJSON when every strategy fails.
func Extract(raw string) ([]byte, error) {
	for _, locate := range strategies {
		candidate, ok := locate(raw)
		if !ok {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}
	return nil, ErrNoJSON
}

// taggedFence matches a ```json fenced block.
func taggedFence(raw string) (string, bool) {
	m := taggedFenceRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// plainFence matches any fenced block whose body looks like a JSON object.
func plainFence(raw string) (string, bool) {
	m := plainFenceRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return "", false
	}
	return body, true
}

// braceSpan returns the first balanced brace-delimited span in raw.
func braceSpan(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// wholeText treats the entire trimmed reply as the candidate.
func wholeText(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}
