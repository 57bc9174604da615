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
	"bytes"
	"fmt"
	"text/template"
)

const (
	// gradingSystemPrompt frames the judge model.
	gradingSystemPrompt = `You are a strict, impartial grader for language model answers. You compare a model's answer against a reference answer and score it. You reply with JSON only.`

	// gradingPrompt is the template fed to the judge model.
	gradingPrompt = `Grade the model's answer to the question below.

Question:
{{.Question}}

Reference answer:
{{.ReferenceAnswer}}
{{- if .Content}}

Background material the model was given:
{{.Content}}
{{- end}}

Model answer:
{{.ModelAnswer}}

Model reasoning:
{{.ModelReasoning}}

Score two aspects independently on a 0-100 scale:
- score_answer: factual agreement of the model answer with the reference answer.
- score_reasoning: soundness and relevance of the model reasoning.

Reply with exactly one JSON object and nothing else:
{"score_answer": <number>, "score_reasoning": <number>}`
)

// gradingPromptTemplate renders the judge prompt with data.
var gradingPromptTemplate = template.Must(template.New("gradingPrompt").Parse(gradingPrompt))

// gradingPromptData feeds values into the judge prompt template.
type gradingPromptData struct {
	Question        string // Question is the original test question.
	ReferenceAnswer string // ReferenceAnswer is the labeled ground truth.
	Content         string // Content is optional grounding text shown to the model.
	ModelAnswer     string // ModelAnswer is the tested model's answer.
	ModelReasoning  string // ModelReasoning is the tested model's reasoning.
}

// buildGradingPrompt renders the grading prompt for one case.
func buildGradingPrompt(input Input) (string, error) {
	data := gradingPromptData{
		Question:        input.Question,
		ReferenceAnswer: input.ReferenceAnswer,
		Content:         input.Content,
		ModelAnswer:     input.ModelAnswer,
		ModelReasoning:  input.ModelReasoning,
	}
	var buf bytes.Buffer
	if err := gradingPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute grading prompt template: %w", err)
	}
	return buf.String(), nil
}
