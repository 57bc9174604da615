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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-llmeval-go/internal/jsonextract"
)

// failureMarkers are phrases an upstream gateway embeds in a 200 reply when
// the real model call failed. A reply carrying one of them is a failed
// grading attempt, not a gradable verdict. The Chinese markers match the
// transcripts produced by the legacy gateway.
var failureMarkers = []string{
	"API调用失败",
	"请求异常",
	"未找到",
	"未启用",
	"未加载",
	"失败",
	"异常",
	"model call failed",
	"model service unavailable",
}

// ParseError reports an unusable grading reply. The raw text is preserved
// for audit; callers fold the error into a (0,0) score rather than retrying
// the parse.
type ParseError struct {
	// Raw is the offending reply text.
	Raw string
	// Reason describes what made the reply unusable.
	Reason string
	// Marker is true when the reply carried an upstream failure marker,
	// which makes the whole call attempt retryable.
	Marker bool
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse grading reply: %s", e.Reason)
}

// Scores is a validated pair of grading scores, both in [0,100].
type Scores struct {
	// Answer scores factual correctness of the model answer.
	Answer float64 `json:"score_answer"`
	// Reasoning scores the quality of the model's reasoning.
	Reasoning float64 `json:"score_reasoning"`
}

// ParseScores extracts validated scores from a raw grading reply.
//
// The reply is untrusted free text. Failure markers are checked before any
// parsing; then the embedded JSON document is located (fenced block, brace
// span or whole text) and must contain score_answer and score_reasoning,
// each within [0,100]. Every failure returns a *ParseError with the raw
// text attached.
func ParseScores(raw string) (Scores, error) {
	if marker, found := findFailureMarker(raw); found {
		return Scores{}, &ParseError{
			Raw:    raw,
			Reason: fmt.Sprintf("reply carries failure marker %q", marker),
			Marker: true,
		}
	}
	doc, err := jsonextract.Extract(raw)
	if err != nil {
		return Scores{}, &ParseError{Raw: raw, Reason: "no JSON document in reply"}
	}
	var payload map[string]any
	if err := json.Unmarshal(doc, &payload); err != nil {
		return Scores{}, &ParseError{Raw: raw, Reason: "reply JSON is not an object"}
	}
	answer, ok := scoreField(payload, "score_answer")
	if !ok {
		return Scores{}, &ParseError{Raw: raw, Reason: "missing numeric score_answer"}
	}
	reasoning, ok := scoreField(payload, "score_reasoning")
	if !ok {
		return Scores{}, &ParseError{Raw: raw, Reason: "missing numeric score_reasoning"}
	}
	if !validScore(answer) || !validScore(reasoning) {
		return Scores{}, &ParseError{
			Raw:    raw,
			Reason: fmt.Sprintf("scores (%v, %v) outside [0,100]", answer, reasoning),
		}
	}
	return Scores{Answer: answer, Reasoning: reasoning}, nil
}

// Inference is the answer/reasoning pair extracted from the tested model's
// reply.
type Inference struct {
	// Answer is the model's answer text.
	Answer string
	// Reasoning is the model's reasoning text, empty when the reply carried
	// no structured block.
	Reasoning string
}

// ParseInference extracts the answer and reasoning from an inference reply.
//
// Inference parsing is tolerant: when no structured block can be extracted
// the whole trimmed reply becomes the answer, with empty reasoning. The
// grading step then judges whatever the model actually said.
func ParseInference(raw string) Inference {
	doc, err := jsonextract.Extract(raw)
	if err != nil {
		return Inference{Answer: strings.TrimSpace(raw)}
	}
	var payload struct {
		LLMAnswer    string `json:"llm_answer"`
		LLMReasoning string `json:"llm_reasoning"`
		Answer       string `json:"answer"`
		Reasoning    string `json:"reasoning"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil {
		return Inference{Answer: strings.TrimSpace(raw)}
	}
	inf := Inference{
		Answer:    payload.LLMAnswer,
		Reasoning: payload.LLMReasoning,
	}
	if inf.Answer == "" {
		inf.Answer = payload.Answer
	}
	if inf.Reasoning == "" {
		inf.Reasoning = payload.Reasoning
	}
	if inf.Answer == "" {
		inf.Answer = strings.TrimSpace(raw)
	}
	return inf
}

// findFailureMarker reports the first failure marker present in raw.
func findFailureMarker(raw string) (string, bool) {
	for _, marker := range failureMarkers {
		if strings.Contains(raw, marker) {
			return marker, true
		}
	}
	return "", false
}

// scoreField coerces a score value that may arrive as a JSON number or a
// numeric string.
func scoreField(payload map[string]any, key string) (float64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func validScore(v float64) bool {
	return v >= 0 && v <= 100
}
