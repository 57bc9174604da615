//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package analysis

import "math"

// Metric names reported as the most stable metric of a multi-round run.
const (
	MetricKnowledgeDeficiencyRate    = "knowledge_deficiency_rate"
	MetricReasoningErrorRate         = "reasoning_error_rate"
	MetricCapabilityInsufficientRate = "capability_insufficient_rate"
)

// AggregatedStatistics are per-round arithmetic means. Counts become
// fractional; rates are re-derived from the mean counts.
type AggregatedStatistics struct {
	Total                         int     `json:"total_questions"`
	AvgCorrect                    float64 `json:"avg_correct_answers"`
	AvgReasoningErrors            float64 `json:"avg_reasoning_errors"`
	AvgKnowledgeDeficiency        float64 `json:"avg_knowledge_deficiency"`
	AvgCapabilityInsufficient     float64 `json:"avg_capability_insufficient"`
	AvgAccuracyRate               float64 `json:"avg_accuracy_rate"`
	AvgReasoningErrorRate         float64 `json:"avg_reasoning_error_rate"`
	AvgKnowledgeDeficiencyRate    float64 `json:"avg_knowledge_deficiency_rate"`
	AvgCapabilityInsufficientRate float64 `json:"avg_capability_insufficient_rate"`
}

// VarianceStatistics are population standard deviations of the per-round
// failure rates.
type VarianceStatistics struct {
	KnowledgeDeficiencyRateStd    float64 `json:"knowledge_deficiency_rate_std"`
	ReasoningErrorRateStd         float64 `json:"reasoning_error_rate_std"`
	CapabilityInsufficientRateStd float64 `json:"capability_insufficient_rate_std"`
}

// RoundRates are the per-round rate series, in round order, kept for
// charting.
type RoundRates struct {
	Accuracy               []float64 `json:"accuracy_rate"`
	KnowledgeDeficiency    []float64 `json:"knowledge_deficiency_rate"`
	ReasoningError         []float64 `json:"reasoning_error_rate"`
	CapabilityInsufficient []float64 `json:"capability_insufficient_rate"`
}

// RoundRef points at one round by number together with the rate it was
// selected on.
type RoundRef struct {
	Round                   int     `json:"round"`
	KnowledgeDeficiencyRate float64 `json:"knowledge_deficiency_rate"`
}

// RunSummary names the extreme rounds and the most stable failure metric.
// Rounds are ranked by knowledge-deficiency rate; ties go to the earliest
// round.
type RunSummary struct {
	BestRound        RoundRef `json:"best_round"`
	WorstRound       RoundRef `json:"worst_round"`
	MostStableMetric string   `json:"most_stable_metric"`
	// KnowledgeDeficiencyRateRange is the [min, max] spread across rounds.
	KnowledgeDeficiencyRateRange [2]float64 `json:"knowledge_deficiency_rate_range"`
}

// MultiRoundAnalysis is the cross-round report of one dataset file.
type MultiRoundAnalysis struct {
	ModelName   string `json:"model_name"`
	FileName    string `json:"file_name"`
	Rounds      int    `json:"evaluation_rounds"`
	GeneratedAt string `json:"aggregation_timestamp,omitempty"`

	Thresholds Thresholds           `json:"thresholds"`
	Aggregated AggregatedStatistics `json:"aggregated_statistics"`
	Variance   VarianceStatistics   `json:"variance_statistics"`
	RoundRates RoundRates           `json:"round_rates"`
	RunSummary RunSummary           `json:"evaluation_summary"`
}

// CombineRounds folds the per-round reports of one file into a multi-round
// report. Rounds must be in round order and share one total; metadata is
// copied from the first round. Pure and idempotent: combining the same
// rounds again yields the same report. Nil for an empty input.
func CombineRounds(rounds []*FileAnalysis) *MultiRoundAnalysis {
	if len(rounds) == 0 {
		return nil
	}
	first := rounds[0]
	n := float64(len(rounds))

	agg := AggregatedStatistics{Total: first.Statistics.Total}
	rates := RoundRates{
		Accuracy:               make([]float64, 0, len(rounds)),
		KnowledgeDeficiency:    make([]float64, 0, len(rounds)),
		ReasoningError:         make([]float64, 0, len(rounds)),
		CapabilityInsufficient: make([]float64, 0, len(rounds)),
	}
	for _, r := range rounds {
		agg.AvgCorrect += float64(r.Statistics.Correct)
		agg.AvgReasoningErrors += float64(r.Statistics.ReasoningErrors)
		agg.AvgKnowledgeDeficiency += float64(r.Statistics.KnowledgeDeficiency)
		agg.AvgCapabilityInsufficient += float64(r.Statistics.CapabilityInsufficient)
		rates.Accuracy = append(rates.Accuracy, r.Statistics.AccuracyRate)
		rates.KnowledgeDeficiency = append(rates.KnowledgeDeficiency, r.Statistics.KnowledgeDeficiencyRate)
		rates.ReasoningError = append(rates.ReasoningError, r.Statistics.ReasoningErrorRate)
		rates.CapabilityInsufficient = append(rates.CapabilityInsufficient, r.Statistics.CapabilityInsufficientRate)
	}
	agg.AvgCorrect /= n
	agg.AvgReasoningErrors /= n
	agg.AvgKnowledgeDeficiency /= n
	agg.AvgCapabilityInsufficient /= n
	agg.AvgAccuracyRate = meanRate(agg.AvgCorrect, agg.Total)
	agg.AvgReasoningErrorRate = meanRate(agg.AvgReasoningErrors, agg.Total)
	agg.AvgKnowledgeDeficiencyRate = meanRate(agg.AvgKnowledgeDeficiency, agg.Total)
	agg.AvgCapabilityInsufficientRate = meanRate(agg.AvgCapabilityInsufficient, agg.Total)

	return &MultiRoundAnalysis{
		ModelName:  first.ModelName,
		FileName:   first.FileName,
		Rounds:     len(rounds),
		Thresholds: first.Thresholds,
		Aggregated: agg,
		Variance: VarianceStatistics{
			KnowledgeDeficiencyRateStd:    populationStd(rates.KnowledgeDeficiency),
			ReasoningErrorRateStd:         populationStd(rates.ReasoningError),
			CapabilityInsufficientRateStd: populationStd(rates.CapabilityInsufficient),
		},
		RoundRates: rates,
		RunSummary: summarizeRounds(rounds, rates),
	}
}

func summarizeRounds(rounds []*FileAnalysis, rates RoundRates) RunSummary {
	best, worst := rounds[0], rounds[0]
	for _, r := range rounds[1:] {
		if r.Statistics.KnowledgeDeficiencyRate < best.Statistics.KnowledgeDeficiencyRate {
			best = r
		}
		if r.Statistics.KnowledgeDeficiencyRate > worst.Statistics.KnowledgeDeficiencyRate {
			worst = r
		}
	}
	stable := []struct {
		name string
		std  float64
	}{
		{MetricKnowledgeDeficiencyRate, populationStd(rates.KnowledgeDeficiency)},
		{MetricReasoningErrorRate, populationStd(rates.ReasoningError)},
		{MetricCapabilityInsufficientRate, populationStd(rates.CapabilityInsufficient)},
	}
	mostStable := stable[0]
	for _, m := range stable[1:] {
		if m.std < mostStable.std {
			mostStable = m
		}
	}
	lo, hi := rates.KnowledgeDeficiency[0], rates.KnowledgeDeficiency[0]
	for _, v := range rates.KnowledgeDeficiency[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return RunSummary{
		BestRound: RoundRef{
			Round:                   best.Round,
			KnowledgeDeficiencyRate: best.Statistics.KnowledgeDeficiencyRate,
		},
		WorstRound: RoundRef{
			Round:                   worst.Round,
			KnowledgeDeficiencyRate: worst.Statistics.KnowledgeDeficiencyRate,
		},
		MostStableMetric:             mostStable.name,
		KnowledgeDeficiencyRateRange: [2]float64{lo, hi},
	}
}

// meanRate is rate over fractional counts.
func meanRate(count float64, total int) float64 {
	if total <= 0 {
		return 0
	}
	return count / float64(total) * 100
}

// populationStd is the uncorrected standard deviation (divisor n).
func populationStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
