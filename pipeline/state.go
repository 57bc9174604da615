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
	"encoding/json"
	"fmt"
)

// RunState represents where a run currently is. Multi-file and multi-round
// runs revisit the stage states once per round; Aggregating, Completed and
// Failed occur once.
type RunState int

const (
	// StateCreated is a run that has not started yet.
	StateCreated RunState = iota
	// StateStage1Running is the first-pass evaluation.
	StateStage1Running
	// StateStage2Running is the grounded retest of failed cases.
	StateStage2Running
	// StateStage2Skipped means the retest set was empty.
	StateStage2Skipped
	// StateAggregating builds and persists the analysis artifacts.
	StateAggregating
	// StateCompleted is the terminal success state.
	StateCompleted
	// StateFailed is the terminal failure state, reachable from any
	// non-terminal state.
	StateFailed
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStage1Running:
		return "stage1_running"
	case StateStage2Running:
		return "stage2_running"
	case StateStage2Skipped:
		return "stage2_skipped"
	case StateAggregating:
		return "aggregating"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state accepts no further transitions.
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// MarshalJSON serializes the state as its string form.
func (s RunState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

var stateNames = map[string]RunState{
	"created":        StateCreated,
	"stage1_running": StateStage1Running,
	"stage2_running": StateStage2Running,
	"stage2_skipped": StateStage2Skipped,
	"aggregating":    StateAggregating,
	"completed":      StateCompleted,
	"failed":         StateFailed,
}

// UnmarshalJSON restores a state from its string form.
func (s *RunState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	state, ok := stateNames[name]
	if !ok {
		return fmt.Errorf("unknown run state %q", name)
	}
	*s = state
	return nil
}
