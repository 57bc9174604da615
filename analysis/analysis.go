//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package analysis turns per-stage evaluation counts into the report
// structures persisted as artifacts.
//
// Every function here is pure: counts in, derived statistics out. The
// pipeline owns clocks, file names and persistence; analysis owns the
// arithmetic. Rates are percentages derived from counts and a total; they
// are never averaged across files with different totals.
package analysis

import "math"

// Thresholds are the score cut-offs a round was classified with.
type Thresholds struct {
	// Answer is the minimum passing answer score.
	Answer float64 `json:"answer_threshold"`
	// Reasoning is the minimum passing reasoning score.
	Reasoning float64 `json:"reasoning_threshold"`
}

// Stage1Stats counts the first-stage outcomes of one round. Classification
// is two-way: a case either passes both thresholds or joins the retest set.
type Stage1Stats struct {
	// Total is the number of cases in the round.
	Total int `json:"total_questions"`
	// Correct passed both thresholds without grounding.
	Correct int `json:"correct_answers"`
	// ReasoningErrors is kept for the partition arithmetic; the two-way
	// first stage always leaves it zero.
	ReasoningErrors int `json:"reasoning_errors"`
	// NeedRetest is the size of the retest set handed to stage two.
	NeedRetest int `json:"need_retest"`
}

// Stage2Stats counts the grounded-retest outcomes of one round.
type Stage2Stats struct {
	// Total is the retest set size.
	Total int `json:"total_questions"`
	// KnowledgeDeficiency passed both thresholds once grounding was
	// supplied: the model lacked the knowledge, not the capability.
	KnowledgeDeficiency int `json:"knowledge_deficiency"`
	// ReasoningErrors passed the answer threshold but not the reasoning
	// threshold.
	ReasoningErrors int `json:"reasoning_errors"`
	// CapabilityInsufficient failed the answer threshold even with
	// grounding.
	CapabilityInsufficient int `json:"capability_insufficient"`
}

// RoundStatistics is the final four-way verdict of one round. The four
// counts partition Total.
type RoundStatistics struct {
	Total                      int     `json:"total_questions"`
	Correct                    int     `json:"final_correct_answers"`
	ReasoningErrors            int     `json:"final_reasoning_errors"`
	KnowledgeDeficiency        int     `json:"final_knowledge_deficiency"`
	CapabilityInsufficient     int     `json:"final_capability_insufficient"`
	AccuracyRate               float64 `json:"final_accuracy_rate"`
	ReasoningErrorRate         float64 `json:"final_reasoning_error_rate"`
	KnowledgeDeficiencyRate    float64 `json:"final_knowledge_deficiency_rate"`
	CapabilityInsufficientRate float64 `json:"final_capability_insufficient_rate"`
}

// Partitioned reports whether the four verdict counts sum to Total.
func (s RoundStatistics) Partitioned() bool {
	return s.Correct+s.ReasoningErrors+s.KnowledgeDeficiency+s.CapabilityInsufficient == s.Total
}

// ScorePair is one graded case's scores, used for the distribution and
// quality blocks.
type ScorePair struct {
	Answer    float64 `json:"score_answer"`
	Reasoning float64 `json:"score_reasoning"`
}

// ScoreDistribution summarizes the raw scores behind a round.
type ScoreDistribution struct {
	AvgAnswerScore    float64 `json:"avg_answer_score"`
	AvgReasoningScore float64 `json:"avg_reasoning_score"`
	MinAnswerScore    float64 `json:"min_answer_score"`
	MaxAnswerScore    float64 `json:"max_answer_score"`
	MinReasoningScore float64 `json:"min_reasoning_score"`
	MaxReasoningScore float64 `json:"max_reasoning_score"`
}

// DataQuality flags how much of a round's data came out of degraded calls.
// Zero score pairs include every parse failure, which collapses to (0,0).
type DataQuality struct {
	ValidScores       int `json:"valid_scores"`
	InvalidScores     int `json:"invalid_scores"`
	ZeroScores        int `json:"zero_scores"`
	ParseFailures     int `json:"parse_failures"`
	InferenceFailures int `json:"inference_failures"`
}

// RoundObservations carries the per-case raw material a round produced
// beyond the classification counts.
type RoundObservations struct {
	// Scores are all graded score pairs of the round, both stages.
	Scores []ScorePair
	// ParseFailures counts judge replies that did not yield scores.
	ParseFailures int
	// InferenceFailures counts model calls that returned no answer.
	InferenceFailures int
}

// FileAnalysis is the full report of one round over one dataset file.
type FileAnalysis struct {
	ModelName string `json:"model_name"`
	FileName  string `json:"file_name"`
	Round     int    `json:"round"`
	// GeneratedAt is stamped by the pipeline when the report is written.
	GeneratedAt string `json:"evaluation_timestamp,omitempty"`

	Thresholds Thresholds `json:"thresholds"`
	// Stage2Executed is false when the retest set was empty and the
	// second stage was skipped.
	Stage2Executed bool         `json:"stage2_executed"`
	Stage1         Stage1Stats  `json:"stage1"`
	Stage2         *Stage2Stats `json:"stage2,omitempty"`

	Statistics        RoundStatistics   `json:"statistics"`
	ScoreDistribution ScoreDistribution `json:"score_distribution"`
	DataQuality       DataQuality       `json:"data_quality"`
}

// BuildRound derives the four-way verdict of one round. Final correct
// answers come from stage one alone; reasoning errors accumulate across
// both stages; knowledge deficiency and capability insufficiency only
// exist in stage two. A nil stage2 with a non-empty retest set classifies
// the whole set as capability insufficient, so the partition stays
// exhaustive; an empty retest set means every case was correct.
func BuildRound(round int, stage1 Stage1Stats, stage2 *Stage2Stats, obs RoundObservations, th Thresholds) *FileAnalysis {
	stats := RoundStatistics{
		Total:           stage1.Total,
		Correct:         stage1.Correct,
		ReasoningErrors: stage1.ReasoningErrors,
	}
	executed := stage2 != nil
	if executed {
		stats.ReasoningErrors += stage2.ReasoningErrors
		stats.KnowledgeDeficiency = stage2.KnowledgeDeficiency
		stats.CapabilityInsufficient = stage2.CapabilityInsufficient
	} else {
		stats.CapabilityInsufficient = stage1.NeedRetest
	}
	stats.AccuracyRate = rate(stats.Correct, stats.Total)
	stats.ReasoningErrorRate = rate(stats.ReasoningErrors, stats.Total)
	stats.KnowledgeDeficiencyRate = rate(stats.KnowledgeDeficiency, stats.Total)
	stats.CapabilityInsufficientRate = rate(stats.CapabilityInsufficient, stats.Total)

	return &FileAnalysis{
		Round:             round,
		Thresholds:        th,
		Stage2Executed:    executed,
		Stage1:            stage1,
		Stage2:            stage2,
		Statistics:        stats,
		ScoreDistribution: buildDistribution(obs.Scores),
		DataQuality:       buildQuality(obs),
	}
}

func buildDistribution(scores []ScorePair) ScoreDistribution {
	if len(scores) == 0 {
		return ScoreDistribution{}
	}
	d := ScoreDistribution{
		MinAnswerScore:    math.Inf(1),
		MaxAnswerScore:    math.Inf(-1),
		MinReasoningScore: math.Inf(1),
		MaxReasoningScore: math.Inf(-1),
	}
	var sumAnswer, sumReasoning float64
	for _, s := range scores {
		sumAnswer += s.Answer
		sumReasoning += s.Reasoning
		d.MinAnswerScore = math.Min(d.MinAnswerScore, s.Answer)
		d.MaxAnswerScore = math.Max(d.MaxAnswerScore, s.Answer)
		d.MinReasoningScore = math.Min(d.MinReasoningScore, s.Reasoning)
		d.MaxReasoningScore = math.Max(d.MaxReasoningScore, s.Reasoning)
	}
	n := float64(len(scores))
	d.AvgAnswerScore = sumAnswer / n
	d.AvgReasoningScore = sumReasoning / n
	return d
}

func buildQuality(obs RoundObservations) DataQuality {
	q := DataQuality{
		ParseFailures:     obs.ParseFailures,
		InferenceFailures: obs.InferenceFailures,
	}
	for _, s := range obs.Scores {
		if s.Answer >= 0 && s.Answer <= 100 && s.Reasoning >= 0 && s.Reasoning <= 100 {
			q.ValidScores++
		} else {
			q.InvalidScores++
		}
		if s.Answer == 0 && s.Reasoning == 0 {
			q.ZeroScores++
		}
	}
	return q
}

// rate converts a count into a percentage of total, zero when total is.
func rate(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
