//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package analysis

import "sort"

// FileSummary is the flat final verdict of one dataset file, the shape
// stored in the canonical per-file analysis artifact. Counts are fractional
// for multi-round files, where they are per-round means.
type FileSummary struct {
	ModelName   string `json:"model_name"`
	FileName    string `json:"file_name"`
	Rounds      int    `json:"evaluation_rounds"`
	GeneratedAt string `json:"evaluation_timestamp,omitempty"`

	Thresholds Thresholds `json:"thresholds"`

	Total                      int     `json:"total_questions"`
	Correct                    float64 `json:"final_correct_answers"`
	ReasoningErrors            float64 `json:"final_reasoning_errors"`
	KnowledgeDeficiency        float64 `json:"final_knowledge_deficiency"`
	CapabilityInsufficient     float64 `json:"final_capability_insufficient"`
	AccuracyRate               float64 `json:"final_accuracy_rate"`
	ReasoningErrorRate         float64 `json:"final_reasoning_error_rate"`
	KnowledgeDeficiencyRate    float64 `json:"final_knowledge_deficiency_rate"`
	CapabilityInsufficientRate float64 `json:"final_capability_insufficient_rate"`
}

// Summary flattens a single round report.
func (a *FileAnalysis) Summary() FileSummary {
	return FileSummary{
		ModelName:                  a.ModelName,
		FileName:                   a.FileName,
		Rounds:                     1,
		Thresholds:                 a.Thresholds,
		Total:                      a.Statistics.Total,
		Correct:                    float64(a.Statistics.Correct),
		ReasoningErrors:            float64(a.Statistics.ReasoningErrors),
		KnowledgeDeficiency:        float64(a.Statistics.KnowledgeDeficiency),
		CapabilityInsufficient:     float64(a.Statistics.CapabilityInsufficient),
		AccuracyRate:               a.Statistics.AccuracyRate,
		ReasoningErrorRate:         a.Statistics.ReasoningErrorRate,
		KnowledgeDeficiencyRate:    a.Statistics.KnowledgeDeficiencyRate,
		CapabilityInsufficientRate: a.Statistics.CapabilityInsufficientRate,
	}
}

// Summary flattens a multi-round report; counts are the per-round means.
func (m *MultiRoundAnalysis) Summary() FileSummary {
	return FileSummary{
		ModelName:                  m.ModelName,
		FileName:                   m.FileName,
		Rounds:                     m.Rounds,
		Thresholds:                 m.Thresholds,
		Total:                      m.Aggregated.Total,
		Correct:                    m.Aggregated.AvgCorrect,
		ReasoningErrors:            m.Aggregated.AvgReasoningErrors,
		KnowledgeDeficiency:        m.Aggregated.AvgKnowledgeDeficiency,
		CapabilityInsufficient:     m.Aggregated.AvgCapabilityInsufficient,
		AccuracyRate:               m.Aggregated.AvgAccuracyRate,
		ReasoningErrorRate:         m.Aggregated.AvgReasoningErrorRate,
		KnowledgeDeficiencyRate:    m.Aggregated.AvgKnowledgeDeficiencyRate,
		CapabilityInsufficientRate: m.Aggregated.AvgCapabilityInsufficientRate,
	}
}

// MultiFileAnalysis totals the final verdicts of every file in a run.
// Counts are summed and rates re-derived from the summed total, so files
// of different sizes weigh in proportion.
type MultiFileAnalysis struct {
	ModelName      string   `json:"model_name"`
	AnalysisType   string   `json:"analysis_type"`
	ProcessedFiles []string `json:"processed_files"`
	FileCount      int      `json:"file_count"`
	GeneratedAt    string   `json:"aggregation_timestamp,omitempty"`

	Thresholds Thresholds `json:"thresholds"`

	TotalQuestions             float64 `json:"total_questions"`
	Correct                    float64 `json:"final_correct_answers"`
	ReasoningErrors            float64 `json:"final_reasoning_errors"`
	KnowledgeDeficiency        float64 `json:"final_knowledge_deficiency"`
	CapabilityInsufficient     float64 `json:"final_capability_insufficient"`
	AccuracyRate               float64 `json:"final_accuracy_rate"`
	ReasoningErrorRate         float64 `json:"final_reasoning_error_rate"`
	KnowledgeDeficiencyRate    float64 `json:"final_knowledge_deficiency_rate"`
	CapabilityInsufficientRate float64 `json:"final_capability_insufficient_rate"`
}

// CombineFiles totals per-file summaries keyed by file stem. The grand
// total is the sum of the four verdict counts, which equals the sum of
// per-file totals whenever every file partitioned cleanly. Thresholds and
// the model name are copied from the first file in stem order. Nil for an
// empty input.
func CombineFiles(files map[string]FileSummary) *MultiFileAnalysis {
	if len(files) == 0 {
		return nil
	}
	stems := make([]string, 0, len(files))
	for stem := range files {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	out := &MultiFileAnalysis{
		ModelName:      files[stems[0]].ModelName,
		AnalysisType:   "multi_file_aggregation",
		ProcessedFiles: stems,
		FileCount:      len(stems),
		Thresholds:     files[stems[0]].Thresholds,
	}
	for _, stem := range stems {
		f := files[stem]
		out.Correct += f.Correct
		out.ReasoningErrors += f.ReasoningErrors
		out.KnowledgeDeficiency += f.KnowledgeDeficiency
		out.CapabilityInsufficient += f.CapabilityInsufficient
	}
	out.TotalQuestions = out.Correct + out.ReasoningErrors + out.KnowledgeDeficiency + out.CapabilityInsufficient
	if out.TotalQuestions > 0 {
		out.AccuracyRate = out.Correct / out.TotalQuestions * 100
		out.ReasoningErrorRate = out.ReasoningErrors / out.TotalQuestions * 100
		out.KnowledgeDeficiencyRate = out.KnowledgeDeficiency / out.TotalQuestions * 100
		out.CapabilityInsufficientRate = out.CapabilityInsufficient / out.TotalQuestions * 100
	}
	return out
}
