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
	"fmt"
	"strconv"

	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
	"trpc.group/trpc-go/trpc-llmeval-go/grade"
)

// CaseResult is the audit record of one case in one stage: what the model
// said and how the judge scored it.
type CaseResult struct {
	// Case is the test case that was evaluated.
	Case dataset.TestCase
	// Answer is the model's answer, extracted from the reply. Empty when
	// the inference call failed.
	Answer string
	// Reasoning is the model's reasoning, when the reply carried one.
	Reasoning string
	// RawReply is the unparsed model reply.
	RawReply string
	// InferenceFailed marks a failed model call. The case still flows
	// through grading with an empty answer and stays in the totals.
	InferenceFailed bool
	// Grade is the judge outcome, (0,0) scores when grading failed.
	Grade grade.Result
}

// Artifact names inside a run's per-file namespace.
const (
	multiFileDir          = "multi_file"
	multiFileAnalysisName = "multi_analysis.json"
)

func stage1ResultsName(round int) string {
	return fmt.Sprintf("test_results_round_%d.csv", round)
}

func stage2ResultsName(round int) string {
	return fmt.Sprintf("stage2_test_results_round_%d.csv", round)
}

// handoffName is the Stage1 to Stage2 data file. The first round keeps the
// historical unsuffixed name.
func handoffName(round int) string {
	if round == 1 {
		return "stage1_to_stage2_data.csv"
	}
	return fmt.Sprintf("stage1_to_stage2_data_round%d.csv", round)
}

func roundAnalysisName(stem string, round int) string {
	return fmt.Sprintf("%s_analysis_round_%d.json", stem, round)
}

func analysisName(stem string) string {
	return stem + "_analysis.json"
}

func multiRoundAnalysisName(stem string) string {
	return stem + "_multi_round_analysis.json"
}

// CSV headers of the persisted result files. Column names follow the
// stored-transcript format downstream tooling already reads.
var (
	stage1CSVHeader  = []string{"id", "question", "answer", "llm_answer", "llm_reasoning", "score_answer", "score_reasoning"}
	stage2CSVHeader  = []string{"id", "question", "answer", "content", "llm_answer", "llm_reasoning", "score_answer", "score_reasoning"}
	handoffCSVHeader = []string{"id", "question", "answer", "content"}
)

func stage1Rows(results []CaseResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Case.ID,
			r.Case.Question,
			r.Case.ReferenceAnswer,
			r.Answer,
			r.Reasoning,
			formatScore(r.Grade.Scores.Answer),
			formatScore(r.Grade.Scores.Reasoning),
		})
	}
	return rows
}

func stage2Rows(results []CaseResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Case.ID,
			r.Case.Question,
			r.Case.ReferenceAnswer,
			r.Case.Content,
			r.Answer,
			r.Reasoning,
			formatScore(r.Grade.Scores.Answer),
			formatScore(r.Grade.Scores.Reasoning),
		})
	}
	return rows
}

func handoffRows(cases []dataset.TestCase) [][]string {
	rows := make([][]string, 0, len(cases))
	for _, tc := range cases {
		rows = append(rows, []string{tc.ID, tc.Question, tc.ReferenceAnswer, tc.Content})
	}
	return rows
}

// formatScore renders a score without trailing zeros, "85" not "85.000000".
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
