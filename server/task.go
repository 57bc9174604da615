//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-llmeval-go/log"
	"trpc.group/trpc-go/trpc-llmeval-go/pipeline"
)

// task is one background evaluation run. The live state stays inside the
// evaluator; the task record adds identity, inputs and the final result.
type task struct {
	id        string
	modelName string
	paths     []string
	createdAt time.Time

	eval   *pipeline.Evaluator
	cancel context.CancelFunc

	// Written once by runTask when the run ends.
	result *pipeline.Result
	done   bool
}

// TaskStatus is the externally visible snapshot of a task.
type TaskStatus struct {
	TaskID    string                 `json:"task_id"`
	ModelName string                 `json:"model_name"`
	State     pipeline.RunState      `json:"state"`
	RunDir    string                 `json:"run_dir,omitempty"`
	Progress  pipeline.ProgressEvent `json:"progress"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Datasets  []string               `json:"datasets"`
}

func (t *task) snapshot() TaskStatus {
	st := t.eval.Status()
	out := TaskStatus{
		TaskID:    t.id,
		ModelName: t.modelName,
		State:     st.State,
		Progress:  st.Progress,
		Error:     st.Error,
		CreatedAt: t.createdAt,
		Datasets:  t.paths,
	}
	if st.RunID.Valid() {
		out.RunDir = st.RunID.Dir()
		if out.ModelName == "" {
			out.ModelName = st.RunID.ModelName
		}
	}
	return out
}

// newTask registers a task and starts its run goroutine.
func (s *Server) newTask(eval *pipeline.Evaluator, modelName string, paths []string) *task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		id:        uuid.NewString(),
		modelName: modelName,
		paths:     paths,
		createdAt: s.now(),
		eval:      eval,
		cancel:    cancel,
	}
	s.mu.Lock()
	s.tasks[t.id] = t
	s.mu.Unlock()

	go s.runTask(ctx, t)
	return t
}

// runTask drives one evaluation to its end and records the outcome.
func (s *Server) runTask(ctx context.Context, t *task) {
	defer t.eval.Close()
	res, err := t.eval.Run(ctx, t.paths)
	s.mu.Lock()
	t.result = res
	t.done = true
	s.mu.Unlock()
	if err != nil {
		log.Errorf("task %s: evaluation failed: %v", t.id, err)
		return
	}
	log.Infof("task %s: run %s completed", t.id, res.RunID.Dir())
}

func (s *Server) getTask(id string) (*task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// listTasks snapshots every task, newest first.
func (s *Server) listTasks() []TaskStatus {
	s.mu.RLock()
	tasks := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].createdAt.Equal(tasks[j].createdAt) {
			return tasks[i].id < tasks[j].id
		}
		return tasks[i].createdAt.After(tasks[j].createdAt)
	})
	out := make([]TaskStatus, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.snapshot())
	}
	return out
}

// taskResult returns the finished result of a task, or false while the run
// is still in flight or has failed.
func (s *Server) taskResult(id string) (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok || !t.done || t.result == nil {
		return nil, false
	}
	return t.result, true
}

// Close cancels every running task. Run goroutines observe the canceled
// context and mark their tasks failed.
func (s *Server) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		t.cancel()
	}
}
