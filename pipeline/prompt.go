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
	"strings"
	"text/template"

	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
)

const (
	// inferenceSystemPrompt frames the model under test.
	inferenceSystemPrompt = `You are taking a knowledge test. Answer each question yourself; do not refuse. You reply with JSON only.`

	// inferencePrompt is the template posed to the model under test. The
	// grounding material block only renders for the retest stage.
	inferencePrompt = `Answer the question below.
{{- if .Content}}

Background material:
{{.Content}}
{{- end}}

Question:
{{.Question}}

Give your final answer and the reasoning that led to it. Reply with exactly
one JSON object and nothing else:
{"llm_answer": "<your answer>", "llm_reasoning": "<your reasoning>"}`
)

var inferencePromptTemplate = template.Must(template.New("inferencePrompt").Parse(inferencePrompt))

// inferencePromptData feeds values into the inference prompt template.
type inferencePromptData struct {
	Question string
	Content  string
}

// buildInferencePrompt renders the question prompt for one case. The
// grounding content is only shown during the retest stage.
func buildInferencePrompt(tc dataset.TestCase, withContent bool) (string, error) {
	data := inferencePromptData{Question: tc.Question}
	if withContent {
		data.Content = tc.Content
	}
	var sb strings.Builder
	if err := inferencePromptTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
