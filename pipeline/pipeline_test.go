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
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-llmeval-go/analysis"
	"trpc.group/trpc-go/trpc-llmeval-go/artifact"
	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
	"trpc.group/trpc-go/trpc-llmeval-go/grade"
	"trpc.group/trpc-go/trpc-llmeval-go/internal/retry"
	"trpc.group/trpc-go/trpc-llmeval-go/model"
)

var testClock = time.Date(2025, 3, 1, 14, 30, 59, 0, time.Local)

// scriptedModel implements model.Model with a reply function, so tests pin
// every verdict deterministically.
type scriptedModel struct {
	name  string
	reply func(r *model.Request) (string, error)

	mu    sync.Mutex
	calls []string
}

func (m *scriptedModel) Complete(_ context.Context, r *model.Request) (*model.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, r.Prompt)
	m.mu.Unlock()
	text, err := m.reply(r)
	if err != nil {
		return nil, err
	}
	return &model.Response{Text: text}, nil
}

func (m *scriptedModel) Info() model.Info { return model.Info{Name: m.name} }

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// caseIDPattern pulls the case marker out of a prompt. Both the inference
// and the grading prompt embed the question text, so one extractor serves
// both fakes.
var caseIDPattern = regexp.MustCompile(`describe item (\w+)`)

func promptStageKey(prompt string) string {
	id := ""
	if m := caseIDPattern.FindStringSubmatch(prompt); m != nil {
		id = m[1]
	}
	stage := "s1"
	if strings.Contains(prompt, "Background material") {
		stage = "s2"
	}
	return id + ":" + stage
}

// newSubject scripts the model under test. Keys in fail ("q2:s1") make the
// matching inference call error out.
func newSubject(fail map[string]bool) *scriptedModel {
	return &scriptedModel{
		name: "unit-model",
		reply: func(r *model.Request) (string, error) {
			key := promptStageKey(r.Prompt)
			if fail[key] {
				return "", errors.New("backend unavailable")
			}
			id, stage, _ := strings.Cut(key, ":")
			return fmt.Sprintf(`{"llm_answer": "answer %s %s", "llm_reasoning": "thoughts %s"}`,
				id, stage, id), nil
		},
	}
}

// newJudge scores by case and stage; unscripted pairs pass with full marks.
// An entry in raw is returned verbatim instead of a score object.
func newJudge(scores map[string]grade.Scores, raw map[string]string) *scriptedModel {
	return &scriptedModel{
		name: "unit-judge",
		reply: func(r *model.Request) (string, error) {
			key := promptStageKey(r.Prompt)
			if text, ok := raw[key]; ok {
				return text, nil
			}
			sc, ok := scores[key]
			if !ok {
				sc = grade.Scores{Answer: 100, Reasoning: 100}
			}
			return fmt.Sprintf(`{"score_answer": %v, "score_reasoning": %v}`,
				sc.Answer, sc.Reasoning), nil
		},
	}
}

// mixedScores drives the five-case scenario: one clean pass and every
// failure class the retest can assign.
func mixedScores() map[string]grade.Scores {
	return map[string]grade.Scores{
		"q1:s1": {Answer: 80, Reasoning: 80},
		"q2:s1": {Answer: 80, Reasoning: 40},
		"q3:s1": {Answer: 40, Reasoning: 80},
		"q4:s1": {Answer: 10, Reasoning: 10},
		"q5:s1": {Answer: 59.9, Reasoning: 100},
		"q2:s2": {Answer: 80, Reasoning: 80},   // knowledge deficiency
		"q3:s2": {Answer: 80, Reasoning: 40},   // reasoning error
		"q4:s2": {Answer: 30, Reasoning: 90},   // capability insufficient
		"q5:s2": {Answer: 100, Reasoning: 100}, // knowledge deficiency
	}
}

func writeDataset(t *testing.T, dir, name string, ids ...string) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("id,question,answer,content\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "%s,describe item %s,reference %s,background for %s\n", id, id, id, id)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func newTestEvaluator(t *testing.T, subject, judge model.Model, opts ...Option) (*Evaluator, *artifact.Store) {
	t.Helper()
	store := artifact.NewStore(
		artifact.WithBaseDir(t.TempDir()),
		artifact.WithNow(func() time.Time { return testClock }),
	)
	grader, err := grade.NewGrader(judge, grade.WithRetryPolicy(retry.Policy{MaxAttempts: 1}))
	require.NoError(t, err)
	all := append([]Option{WithNow(func() time.Time { return testClock })}, opts...)
	e, err := New(subject, grader, store, all...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, store
}

// readSheet decodes a stored result sheet, checking and stripping the BOM.
func readSheet(t *testing.T, store *artifact.Store, key artifact.Key) [][]string {
	t.Helper()
	data, err := store.Read(key)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("\uFEFF")), "result sheet must carry a BOM")
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\uFEFF")))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewValidation(t *testing.T) {
	judge := newJudge(nil, nil)
	grader, err := grade.NewGrader(judge)
	require.NoError(t, err)
	store := artifact.NewStore(artifact.WithBaseDir(t.TempDir()))

	_, err = New(nil, grader, store)
	require.Error(t, err)
	_, err = New(newSubject(nil), nil, store)
	require.Error(t, err)
	_, err = New(newSubject(nil), grader, nil)
	require.Error(t, err)

	e, err := New(newSubject(nil), grader, store)
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, "unit-model", e.modelName)
	assert.Equal(t, StateCreated, e.Status().State)
}

func TestRunMixedVerdicts(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "knowledge.csv", "q1", "q2", "q3", "q4", "q5")
	subject := newSubject(nil)
	judge := newJudge(mixedScores(), nil)
	e, _ := newTestEvaluator(t, subject, judge)

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "unit-model202503011430", res.RunID.Dir())
	assert.Nil(t, res.MultiFile)

	sum, ok := res.Files["knowledge"]
	require.True(t, ok)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 1.0, sum.Correct)
	assert.Equal(t, 1.0, sum.ReasoningErrors)
	assert.Equal(t, 2.0, sum.KnowledgeDeficiency)
	assert.Equal(t, 1.0, sum.CapabilityInsufficient)
	assert.InDelta(t, 20, sum.AccuracyRate, 1e-9)
	assert.InDelta(t, 20, sum.ReasoningErrorRate, 1e-9)
	assert.InDelta(t, 40, sum.KnowledgeDeficiencyRate, 1e-9)
	assert.InDelta(t, 20, sum.CapabilityInsufficientRate, 1e-9)
	assert.Equal(t, "2025-03-01 14:30:59", sum.GeneratedAt)

	// Five first-pass calls plus four retests on each model.
	assert.Equal(t, 9, subject.callCount())
	assert.Equal(t, 9, judge.callCount())

	st := e.Status()
	assert.Equal(t, StateCompleted, st.State)
	assert.True(t, st.State.Terminal())
	assert.Empty(t, st.Error)
}

func TestRunWritesRoundArtifacts(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "knowledge.csv", "q1", "q2", "q3", "q4", "q5")
	e, store := newTestEvaluator(t, newSubject(nil), newJudge(mixedScores(), nil))

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	id := res.RunID

	stage1 := readSheet(t, store, artifact.Key{Run: id, FileStem: "knowledge", Name: "test_results_round_1.csv"})
	require.Len(t, stage1, 6)
	assert.Equal(t, stage1CSVHeader, stage1[0])
	assert.Equal(t, []string{"q2", "describe item q2", "reference q2", "answer q2 s1", "thoughts q2", "80", "40"}, stage1[2])

	handoff := readSheet(t, store, artifact.Key{Run: id, FileStem: "knowledge", Name: "stage1_to_stage2_data.csv"})
	require.Len(t, handoff, 5)
	assert.Equal(t, handoffCSVHeader, handoff[0])
	assert.Equal(t, []string{"q2", "describe item q2", "reference q2", "background for q2"}, handoff[1])

	stage2 := readSheet(t, store, artifact.Key{Run: id, FileStem: "knowledge", Name: "stage2_test_results_round_1.csv"})
	require.Len(t, stage2, 5)
	assert.Equal(t, stage2CSVHeader, stage2[0])
	assert.Equal(t, []string{"q5", "describe item q5", "reference q5", "background for q5",
		"answer q5 s2", "thoughts q5", "100", "100"}, stage2[4])

	var fa analysis.FileAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: id, FileStem: "knowledge", Name: "knowledge_analysis_round_1.json"}, &fa))
	assert.Equal(t, "unit-model", fa.ModelName)
	assert.Equal(t, "knowledge", fa.FileName)
	assert.Equal(t, 1, fa.Round)
	assert.Equal(t, "2025-03-01 14:30:59", fa.GeneratedAt)
	assert.Equal(t, analysis.Thresholds{Answer: 60, Reasoning: 60}, fa.Thresholds)
	assert.True(t, fa.Stage2Executed)
	assert.Equal(t, analysis.Stage1Stats{Total: 5, Correct: 1, NeedRetest: 4}, fa.Stage1)
	require.NotNil(t, fa.Stage2)
	assert.Equal(t, analysis.Stage2Stats{
		Total:                  4,
		KnowledgeDeficiency:    2,
		ReasoningErrors:        1,
		CapabilityInsufficient: 1,
	}, *fa.Stage2)
	assert.True(t, fa.Statistics.Partitioned())
	assert.Equal(t, analysis.DataQuality{ValidScores: 9}, fa.DataQuality)
	assert.InDelta(t, 62.211, fa.ScoreDistribution.AvgAnswerScore, 1e-2)
	assert.Equal(t, 10.0, fa.ScoreDistribution.MinAnswerScore)
	assert.Equal(t, 100.0, fa.ScoreDistribution.MaxAnswerScore)

	var stored analysis.FileSummary
	require.NoError(t, store.ReadJSON(artifact.Key{Run: id, FileStem: "knowledge", Name: "knowledge_analysis.json"}, &stored))
	assert.Equal(t, res.Files["knowledge"], stored)

	// Single round, single file: no aggregate artifacts.
	_, err = store.Read(artifact.Key{Run: id, FileStem: "knowledge", Name: "knowledge_multi_round_analysis.json"})
	assert.ErrorIs(t, err, artifact.ErrNotFound)
	_, err = store.Read(artifact.Key{Run: id, FileStem: "multi_file", Name: "multi_analysis.json"})
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestRunAllPassSkipsRetest(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "easy.csv", "q1", "q2", "q3")
	e, store := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil))

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	sum := res.Files["easy"]
	assert.Equal(t, 3.0, sum.Correct)
	assert.InDelta(t, 100, sum.AccuracyRate, 1e-9)
	assert.Equal(t, 0.0, sum.KnowledgeDeficiency)

	var fa analysis.FileAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: res.RunID, FileStem: "easy", Name: "easy_analysis_round_1.json"}, &fa))
	assert.False(t, fa.Stage2Executed)
	assert.Nil(t, fa.Stage2)
	assert.True(t, fa.Statistics.Partitioned())

	// The handoff sheet exists with only its header; the retest sheet does
	// not exist at all.
	handoff := readSheet(t, store, artifact.Key{Run: res.RunID, FileStem: "easy", Name: "stage1_to_stage2_data.csv"})
	require.Len(t, handoff, 1)
	_, err = store.Read(artifact.Key{Run: res.RunID, FileStem: "easy", Name: "stage2_test_results_round_1.csv"})
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestRunInferenceFailureStillGraded(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "flaky.csv", "q1", "q2")
	subject := newSubject(map[string]bool{"q2:s1": true})
	judge := newJudge(map[string]grade.Scores{
		"q2:s1": {},                          // judge scores the empty answer (0,0)
		"q2:s2": {Answer: 70, Reasoning: 80}, // grounded retest passes
	}, nil)
	e, store := newTestEvaluator(t, subject, judge)

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	sum := res.Files["flaky"]
	assert.Equal(t, 1.0, sum.Correct)
	assert.Equal(t, 1.0, sum.KnowledgeDeficiency)

	var fa analysis.FileAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: res.RunID, FileStem: "flaky", Name: "flaky_analysis_round_1.json"}, &fa))
	assert.Equal(t, 1, fa.DataQuality.InferenceFailures)
	assert.Equal(t, 1, fa.DataQuality.ZeroScores)
	assert.Equal(t, 0, fa.DataQuality.ParseFailures)

	// The failed case keeps its row: empty answer columns, zero scores.
	stage1 := readSheet(t, store, artifact.Key{Run: res.RunID, FileStem: "flaky", Name: "test_results_round_1.csv"})
	require.Len(t, stage1, 3)
	assert.Equal(t, []string{"q2", "describe item q2", "reference q2", "", "", "0", "0"}, stage1[2])
}

func TestRunJudgeParseFailureScoresZero(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "noisy.csv", "q1", "q2")
	judge := newJudge(map[string]grade.Scores{
		"q2:s2": {Answer: 10, Reasoning: 10}, // still wrong with grounding
	}, map[string]string{
		"q2:s1": "no scores in this reply",
	})
	e, store := newTestEvaluator(t, newSubject(nil), judge)

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	sum := res.Files["noisy"]
	assert.Equal(t, 1.0, sum.Correct)
	assert.Equal(t, 1.0, sum.CapabilityInsufficient)

	var fa analysis.FileAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: res.RunID, FileStem: "noisy", Name: "noisy_analysis_round_1.json"}, &fa))
	assert.Equal(t, 1, fa.DataQuality.ParseFailures)
	assert.Equal(t, 1, fa.DataQuality.ZeroScores)
	assert.Equal(t, 0, fa.DataQuality.InferenceFailures)
}

func TestRunMultiRound(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "knowledge.csv", "q1", "q2", "q3", "q4", "q5")
	e, store := newTestEvaluator(t, newSubject(nil), newJudge(mixedScores(), nil), WithRounds(3))

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	id := res.RunID

	// Identical scores every round: means equal the single-round counts
	// and every spread collapses to zero.
	var multi analysis.MultiRoundAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: id, FileStem: "knowledge", Name: "knowledge_multi_round_analysis.json"}, &multi))
	assert.Equal(t, 3, multi.Rounds)
	assert.Equal(t, 5, multi.Aggregated.Total)
	assert.InDelta(t, 2, multi.Aggregated.AvgKnowledgeDeficiency, 1e-9)
	assert.InDelta(t, 40, multi.Aggregated.AvgKnowledgeDeficiencyRate, 1e-9)
	assert.InDelta(t, 0, multi.Variance.KnowledgeDeficiencyRateStd, 1e-9)
	assert.Equal(t, 1, multi.RunSummary.BestRound.Round)
	assert.Equal(t, 1, multi.RunSummary.WorstRound.Round)
	assert.Len(t, multi.RoundRates.KnowledgeDeficiency, 3)

	sum := res.Files["knowledge"]
	assert.Equal(t, 3, sum.Rounds)
	assert.InDelta(t, 1, sum.Correct, 1e-9)

	for round := 1; round <= 3; round++ {
		_, err := store.Read(artifact.Key{Run: id, FileStem: "knowledge",
			Name: fmt.Sprintf("test_results_round_%d.csv", round)})
		assert.NoError(t, err)
		_, err = store.Read(artifact.Key{Run: id, FileStem: "knowledge",
			Name: fmt.Sprintf("knowledge_analysis_round_%d.json", round)})
		assert.NoError(t, err)
	}
	// Round one keeps the unsuffixed handoff name; later rounds carry one.
	_, err = store.Read(artifact.Key{Run: id, FileStem: "knowledge", Name: "stage1_to_stage2_data.csv"})
	assert.NoError(t, err)
	_, err = store.Read(artifact.Key{Run: id, FileStem: "knowledge", Name: "stage1_to_stage2_data_round2.csv"})
	assert.NoError(t, err)
	_, err = store.Read(artifact.Key{Run: id, FileStem: "knowledge", Name: "stage1_to_stage2_data_round3.csv"})
	assert.NoError(t, err)
}

func TestRunMultiFileAggregate(t *testing.T) {
	dir := t.TempDir()
	alpha := writeDataset(t, dir, "alpha.csv", "q1", "q2", "q3", "q4", "q5")
	beta := writeDataset(t, dir, "beta.csv", "r1", "r2", "r3")
	e, store := newTestEvaluator(t, newSubject(nil), newJudge(mixedScores(), nil))

	res, err := e.Run(context.Background(), []string{alpha, beta})
	require.NoError(t, err)
	require.NotNil(t, res.MultiFile)
	require.Len(t, res.Files, 2)

	multi := res.MultiFile
	assert.Equal(t, []string{"alpha", "beta"}, multi.ProcessedFiles)
	assert.Equal(t, 2, multi.FileCount)
	assert.Equal(t, "multi_file_aggregation", multi.AnalysisType)
	assert.InDelta(t, 8, multi.TotalQuestions, 1e-9)
	assert.InDelta(t, 4, multi.Correct, 1e-9)
	assert.InDelta(t, 50, multi.AccuracyRate, 1e-9)
	assert.InDelta(t, 25, multi.KnowledgeDeficiencyRate, 1e-9)

	var stored analysis.MultiFileAnalysis
	require.NoError(t, store.ReadJSON(artifact.Key{Run: res.RunID, FileStem: "multi_file", Name: "multi_analysis.json"}, &stored))
	assert.Equal(t, *multi, stored)
}

func TestRunProgressTicks(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "easy.csv", "q1", "q2")
	var events []ProgressEvent
	sink := ProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil), WithProgressSink(sink))

	_, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)

	// Three ticks per case: start of testing, start of grading, completion.
	want := []ProgressEvent{
		{Current: 0, Total: 2, CaseID: "q1", Phase: PhaseTesting, Round: 1, TotalRounds: 1, File: "easy"},
		{Current: 0, Total: 2, CaseID: "q1", Phase: PhaseGrading, Round: 1, TotalRounds: 1, File: "easy"},
		{Current: 1, Total: 2, CaseID: "q1", Phase: PhaseGrading, Round: 1, TotalRounds: 1, File: "easy"},
		{Current: 1, Total: 2, CaseID: "q2", Phase: PhaseTesting, Round: 1, TotalRounds: 1, File: "easy"},
		{Current: 1, Total: 2, CaseID: "q2", Phase: PhaseGrading, Round: 1, TotalRounds: 1, File: "easy"},
		{Current: 2, Total: 2, CaseID: "q2", Phase: PhaseGrading, Round: 1, TotalRounds: 1, File: "easy"},
	}
	assert.Equal(t, want, events)
}

func TestRunParallel(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	path := writeDataset(t, t.TempDir(), "wide.csv", ids...)
	var mu sync.Mutex
	var events []ProgressEvent
	sink := ProgressFunc(func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil),
		WithParallelism(4), WithProgressSink(sink))

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Files["wide"].Correct)
	assert.Equal(t, StateCompleted, e.Status().State)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, events, 24)
	perCase := map[string]int{}
	maxCurrent := 0
	for _, ev := range events {
		perCase[ev.CaseID]++
		assert.Equal(t, 8, ev.Total)
		if ev.Current > maxCurrent {
			maxCurrent = ev.Current
		}
	}
	for _, id := range ids {
		assert.Equal(t, 3, perCase[id], "case %s", id)
	}
	assert.Equal(t, 8, maxCurrent)
}

func TestRunLoadFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	good := writeDataset(t, dir, "good.csv", "q1")
	missing := filepath.Join(dir, "missing.csv")
	e, store := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil))

	_, err := e.Run(context.Background(), []string{good, missing})
	require.Error(t, err)
	var loadErr *dataset.LoadError
	assert.ErrorAs(t, err, &loadErr)

	st := e.Status()
	assert.Equal(t, StateFailed, st.State)
	assert.NotEmpty(t, st.Error)

	// Inputs are validated before the run directory is created.
	runs, err := store.ListRuns("unit-model")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunDuplicateStemFails(t *testing.T) {
	a := writeDataset(t, t.TempDir(), "same.csv", "q1")
	b := writeDataset(t, t.TempDir(), "same.csv", "q2")
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil))

	_, err := e.Run(context.Background(), []string{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate dataset stem")
	assert.Equal(t, StateFailed, e.Status().State)
}

func TestRunEmptyPathList(t *testing.T) {
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil))
	_, err := e.Run(context.Background(), nil)
	require.Error(t, err)
}

func TestRunCanceledContext(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "easy.csv", "q1")
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []string{path})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, e.Status().State)
}

func TestRunModelNameOverride(t *testing.T) {
	path := writeDataset(t, t.TempDir(), "easy.csv", "q1")
	e, _ := newTestEvaluator(t, newSubject(nil), newJudge(nil, nil), WithModelName("prod-alias"))

	res, err := e.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, "prod-alias202503011430", res.RunID.Dir())
	assert.Equal(t, "prod-alias", res.Files["easy"].ModelName)
}
