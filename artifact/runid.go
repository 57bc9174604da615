//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

package artifact

import (
	"fmt"
	"regexp"
	"time"
)

// timestampLayout is the minute-granularity run timestamp, YYYYMMDDHHMM.
const timestampLayout = "200601021504"

// timestampPattern matches the serialized timestamp suffix of a run
// directory name.
var timestampPattern = regexp.MustCompile(`^(\d{12})$`)

// RunID identifies one evaluation run. It is created once at run start and
// threaded explicitly through every call that touches the run's artifacts;
// there is no ambient "current run" state.
type RunID struct {
	// ModelName is the name of the model under test.
	ModelName string `json:"model_name"`
	// Timestamp is the minute-granularity run start, YYYYMMDDHHMM.
	Timestamp string `json:"timestamp"`
}

// NewRunID creates the identity for a run starting at now.
func NewRunID(modelName string, now time.Time) RunID {
	return RunID{
		ModelName: modelName,
		Timestamp: now.Format(timestampLayout),
	}
}

// Dir returns the run directory name, the only place the timestamp is
// serialized. Lexicographic order of Dir values of one model equals
// chronological order.
func (r RunID) Dir() string {
	return r.ModelName + r.Timestamp
}

// Time parses the run timestamp back into a time value.
func (r RunID) Time() (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run timestamp %q: %w", r.Timestamp, err)
	}
	return t, nil
}

// Valid reports whether the identity has a model name and a well-formed
// timestamp.
func (r RunID) Valid() bool {
	return r.ModelName != "" && timestampPattern.MatchString(r.Timestamp)
}

// parseRunDir splits a directory name into a RunID for the given model.
func parseRunDir(modelName, dir string) (RunID, bool) {
	if len(dir) != len(modelName)+12 || dir[:len(modelName)] != modelName {
		return RunID{}, false
	}
	suffix := dir[len(modelName):]
	if !timestampPattern.MatchString(suffix) {
		return RunID{}, false
	}
	return RunID{ModelName: modelName, Timestamp: suffix}, true
}
