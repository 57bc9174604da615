//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the evaluation pipeline as an HTTP task API:
// evaluations start as background tasks and are polled for progress,
// results and run artifacts.
package server

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-llmeval-go/artifact"
	"trpc.group/trpc-go/trpc-llmeval-go/dataset"
	"trpc.group/trpc-go/trpc-llmeval-go/log"
	"trpc.group/trpc-go/trpc-llmeval-go/pipeline"
)

// Factory builds the evaluator for one task request. The server appends its
// own pipeline options (model name, thresholds, rounds, parallelism taken
// from the request); implementations must pass opts through to
// pipeline.New so they take effect.
type Factory func(req *CreateEvaluationRequest, opts ...pipeline.Option) (*pipeline.Evaluator, error)

// CreateEvaluationRequest is the body of POST /api/v1/evaluations. Dataset
// files are given either as explicit paths or as a directory plus glob
// patterns. Zero-valued fields keep the factory's defaults; when only one
// threshold is given the other falls back to 60.
type CreateEvaluationRequest struct {
	DatasetPaths    []string `json:"dataset_paths,omitempty"`
	DatasetDir      string   `json:"dataset_dir,omitempty"`
	DatasetPatterns []string `json:"dataset_patterns,omitempty"`

	ModelName          string   `json:"model_name,omitempty"`
	GradingModelName   string   `json:"grading_model,omitempty"`
	AnswerThreshold    *float64 `json:"answer_threshold,omitempty"`
	ReasoningThreshold *float64 `json:"reasoning_threshold,omitempty"`
	Rounds             int      `json:"rounds,omitempty"`
	Parallelism        int      `json:"parallelism,omitempty"`
}

// CreateEvaluationResponse carries the identity of a started task.
type CreateEvaluationResponse struct {
	TaskID string `json:"task_id"`
}

// RunInfo describes one stored run directory.
type RunInfo struct {
	ModelName string `json:"model_name"`
	Timestamp string `json:"timestamp"`
	Dir       string `json:"dir"`
}

// ResultResponse is the body of GET /api/v1/evaluations/{taskID}/result:
// the pipeline result plus the resolved run directory name.
type ResultResponse struct {
	RunDir string `json:"run_dir"`
	*pipeline.Result
}

// Server serves the evaluation task API.
type Server struct {
	router  *mux.Router
	store   *artifact.Store
	factory Factory
	now     func() time.Time

	mu    sync.RWMutex
	tasks map[string]*task
}

// Option configures the Server.
type Option func(*Server)

// WithNow overrides the clock stamped onto task records. Tests pin it.
func WithNow(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the task API server. The store serves the run-history and
// download endpoints; the factory builds one evaluator per started task.
func New(store *artifact.Store, factory Factory, opts ...Option) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		store:   store,
		factory: factory,
		now:     time.Now,
		tasks:   make(map[string]*task),
	}
	for _, opt := range opts {
		opt(s)
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Content-Disposition"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/evaluations", s.handleCreateEvaluation).Methods(http.MethodPost)
	api.HandleFunc("/evaluations", s.handleListEvaluations).Methods(http.MethodGet)
	api.HandleFunc("/evaluations/{taskID}", s.handleGetEvaluation).Methods(http.MethodGet)
	api.HandleFunc("/evaluations/{taskID}/result", s.handleGetResult).Methods(http.MethodGet)

	api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/latest", s.handleLatestRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{runDir}/package", s.handleDownloadRun).Methods(http.MethodGet)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.factory == nil {
		http.Error(w, "evaluation factory not configured", http.StatusInternalServerError)
		return
	}
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	paths, err := resolveDatasets(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := requestOptions(&req)
	eval, err := s.factory(&req, opts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := s.newTask(eval, req.ModelName, paths)
	log.Infof("task %s: evaluating %d dataset file(s)", t.id, len(paths))
	s.writeJSON(w, CreateEvaluationResponse{TaskID: t.id})
}

// resolveDatasets turns the request's path or glob form into a concrete,
// non-empty file list.
func resolveDatasets(req *CreateEvaluationRequest) ([]string, error) {
	if len(req.DatasetPaths) > 0 {
		return req.DatasetPaths, nil
	}
	if req.DatasetDir == "" {
		return nil, errors.New("either dataset_paths or dataset_dir is required")
	}
	patterns := req.DatasetPatterns
	if len(patterns) == 0 {
		patterns = []string{"*.csv"}
	}
	paths, err := dataset.Discover(req.DatasetDir, patterns...)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files match %v under %s", patterns, req.DatasetDir)
	}
	return paths, nil
}

// requestOptions maps set request fields onto pipeline options.
func requestOptions(req *CreateEvaluationRequest) []pipeline.Option {
	var opts []pipeline.Option
	if req.ModelName != "" {
		opts = append(opts, pipeline.WithModelName(req.ModelName))
	}
	if req.AnswerThreshold != nil || req.ReasoningThreshold != nil {
		answer, reasoning := 60.0, 60.0
		if req.AnswerThreshold != nil {
			answer = *req.AnswerThreshold
		}
		if req.ReasoningThreshold != nil {
			reasoning = *req.ReasoningThreshold
		}
		opts = append(opts, pipeline.WithThresholds(answer, reasoning))
	}
	if req.Rounds > 0 {
		opts = append(opts, pipeline.WithRounds(req.Rounds))
	}
	if req.Parallelism > 0 {
		opts = append(opts, pipeline.WithParallelism(req.Parallelism))
	}
	return opts
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.listTasks())
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	t, ok := s.getTask(mux.Vars(r)["taskID"])
	if !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, t.snapshot())
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["taskID"]
	t, ok := s.getTask(id)
	if !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	res, ok := s.taskResult(id)
	if !ok {
		st := t.snapshot()
		http.Error(w, fmt.Sprintf("task is %s, no result yet", st.State), http.StatusConflict)
		return
	}
	s.writeJSON(w, ResultResponse{RunDir: res.RunID.Dir(), Result: res})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	if model == "" {
		http.Error(w, "model query parameter is required", http.StatusBadRequest)
		return
	}
	runs, err := s.store.ListRuns(model)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]RunInfo, 0, len(runs))
	for _, id := range runs {
		out = append(out, RunInfo{ModelName: id.ModelName, Timestamp: id.Timestamp, Dir: id.Dir()})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	if model == "" {
		http.Error(w, "model query parameter is required", http.StatusBadRequest)
		return
	}
	id, err := s.store.ResumeLatestRun(model)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			http.Error(w, fmt.Sprintf("no runs for model %q", model), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, RunInfo{ModelName: id.ModelName, Timestamp: id.Timestamp, Dir: id.Dir()})
}

// handleDownloadRun streams a run directory as a zip archive.
func (s *Server) handleDownloadRun(w http.ResponseWriter, r *http.Request) {
	runDir := mux.Vars(r)["runDir"]
	if runDir == "" || strings.HasPrefix(runDir, ".") || strings.ContainsAny(runDir, `/\`) {
		http.Error(w, "invalid run directory", http.StatusBadRequest)
		return
	}
	root := filepath.Join(s.store.BaseDir(), runDir)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", runDir+".zip"))
	zw := zip.NewWriter(w)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		entry, err := zw.Create(path.Join(runDir, filepath.ToSlash(rel)))
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		// Headers are out; all we can do is cut the stream and log.
		log.Errorf("packaging run %s: %v", runDir, err)
	}
	if err := zw.Close(); err != nil {
		log.Errorf("packaging run %s: close archive: %v", runDir, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
