//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package artifact stores evaluation outputs on the local filesystem.
//
// Every run owns a directory named {model}{YYYYMMDDHHMM} under the store
// base directory; per-file artifacts live in one subdirectory per dataset
// file. Writes take a non-blocking exclusive lock, land in a temp file and
// are renamed into place, so readers only ever observe complete artifacts
// and two writers never interleave on the same path.
package artifact

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Sentinel errors returned by the store.
var (
	// ErrNotFound reports a missing artifact or run.
	ErrNotFound = errors.New("artifact not found")
	// ErrBusy reports that another writer holds the lock for the target
	// path. Writes fail fast instead of queueing.
	ErrBusy = errors.New("artifact is locked by another writer")
)

// lockDirName holds the per-path lock files under the store base directory.
const lockDirName = ".locks"

// Key addresses one artifact inside a run namespace. FileStem is the
// dataset-file subdirectory ("multi_file" for cross-file artifacts); an
// empty FileStem addresses the run directory itself.
type Key struct {
	Run      RunID
	FileStem string
	Name     string
}

// String returns the run-relative path of the artifact.
func (k Key) String() string {
	return filepath.ToSlash(filepath.Join(k.Run.Dir(), k.FileStem, k.Name))
}

func (k Key) validate() error {
	if !k.Run.Valid() {
		return fmt.Errorf("invalid run id %q", k.Run.Dir())
	}
	if k.Name == "" {
		return errors.New("artifact name is empty")
	}
	for _, part := range []string{k.FileStem, k.Name} {
		if strings.ContainsAny(part, `/\`) || part == ".." {
			return fmt.Errorf("artifact path element %q must not traverse directories", part)
		}
	}
	return nil
}

// Store reads and writes run artifacts under a base directory. The zero
// value is not usable; create stores with NewStore.
type Store struct {
	baseDir string
	now     func() time.Time
}

// NewStore creates a store rooted at the default ./data directory.
// Use functional options (see option.go) to override.
func NewStore(opt ...Option) *Store {
	s := &Store{
		baseDir: "data",
		now:     time.Now,
	}
	for _, o := range opt {
		o(s)
	}
	return s
}

// BaseDir returns the directory the store is rooted at.
func (s *Store) BaseDir() string { return s.baseDir }

// RunDir returns the absolute directory of a run.
func (s *Store) RunDir(id RunID) string {
	return filepath.Join(s.baseDir, id.Dir())
}

// OpenRun creates the namespace for a new run of the given model and
// returns its identity. Creating an already existing namespace is not an
// error; two runs started within the same minute share a directory and rely
// on per-path locking for safety.
func (s *Store) OpenRun(modelName string) (RunID, error) {
	if modelName == "" {
		return RunID{}, errors.New("model name is empty")
	}
	if strings.ContainsAny(modelName, `/\`) {
		return RunID{}, fmt.Errorf("model name %q must not contain path separators", modelName)
	}
	id := NewRunID(modelName, s.now())
	if err := os.MkdirAll(s.RunDir(id), 0o755); err != nil {
		return RunID{}, fmt.Errorf("create run dir: %w", err)
	}
	return id, nil
}

// ResumeLatestRun returns the identity of the most recent run of the given
// model, by lexicographic maximum of the timestamp suffix. ErrNotFound when
// the model has no runs.
func (s *Store) ResumeLatestRun(modelName string) (RunID, error) {
	runs, err := s.ListRuns(modelName)
	if err != nil {
		return RunID{}, err
	}
	if len(runs) == 0 {
		return RunID{}, fmt.Errorf("no runs for model %q: %w", modelName, ErrNotFound)
	}
	return runs[0], nil
}

// ListRuns returns all runs of the given model, newest first.
func (s *Store) ListRuns(modelName string) ([]RunID, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan store dir: %w", err)
	}
	var runs []RunID
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, ok := parseRunDir(modelName, entry.Name())
		if !ok {
			continue
		}
		runs = append(runs, id)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp > runs[j].Timestamp
	})
	return runs, nil
}

// Write stores data at the key's path. The write is exclusive and atomic:
// a non-blocking lock guards the path, the bytes land in a sibling temp
// file, are synced, and are renamed over the target. A lock held by another
// writer fails the call immediately with ErrBusy.
func (s *Store) Write(key Key, data []byte) error {
	if err := key.validate(); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	unlock, err := s.lockPath(key)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer unlock()
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// WriteJSON stores v as two-space indented JSON.
func (s *Store) WriteJSON(key Key, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Write(key, buf.Bytes())
}

// WriteCSV stores a header row plus data rows as CSV. The output carries a
// UTF-8 BOM so spreadsheet tools in Chinese locales open it correctly.
func (s *Store) WriteCSV(key Key, header []string, rows [][]string) error {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Write(key, buf.Bytes())
}

// Read returns the bytes of an artifact. Reads never wait on writer locks;
// rename makes every visible file complete. ErrNotFound for missing
// artifacts.
func (s *Store) Read(key Key) ([]byte, error) {
	if err := key.validate(); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// ReadJSON reads an artifact and unmarshals it into v.
func (s *Store) ReadJSON(key Key, v any) error {
	data, err := s.Read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// List enumerates the artifacts of a run, sorted by file stem then name.
// A non-empty filter is a glob pattern applied to artifact names. In-flight
// temp files are never listed. ErrNotFound when the run directory does not
// exist.
func (s *Store) List(id RunID, filter string) ([]Key, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("list artifacts: invalid run id %q", id.Dir())
	}
	runDir := s.RunDir(id)
	entries, err := os.ReadDir(runDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("list run %s: %w", id.Dir(), ErrNotFound)
		}
		return nil, fmt.Errorf("list run %s: %w", id.Dir(), err)
	}
	var keys []Key
	appendFile := func(stem, name string) error {
		if strings.HasSuffix(name, ".tmp") {
			return nil
		}
		if filter != "" {
			ok, err := doublestar.Match(filter, name)
			if err != nil {
				return fmt.Errorf("list run %s: bad filter %q: %w", id.Dir(), filter, err)
			}
			if !ok {
				return nil
			}
		}
		keys = append(keys, Key{Run: id, FileStem: stem, Name: name})
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			if err := appendFile("", entry.Name()); err != nil {
				return nil, err
			}
			continue
		}
		sub, err := os.ReadDir(filepath.Join(runDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("list run %s: %w", id.Dir(), err)
		}
		for _, file := range sub {
			if file.IsDir() {
				continue
			}
			if err := appendFile(entry.Name(), file.Name()); err != nil {
				return nil, err
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].FileStem != keys[j].FileStem {
			return keys[i].FileStem < keys[j].FileStem
		}
		return keys[i].Name < keys[j].Name
	})
	return keys, nil
}

// path returns the absolute target path of a key.
func (s *Store) path(key Key) string {
	return filepath.Join(s.baseDir, key.Run.Dir(), key.FileStem, key.Name)
}

// lockPath acquires the non-blocking exclusive lock guarding the key's
// target path and returns the release function. Lock files live under
// {base}/.locks and persist after release; unlinking them would race with
// other lockers opening the same path.
func (s *Store) lockPath(key Key) (func(), error) {
	lockDir := filepath.Join(s.baseDir, lockDirName)
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, err
	}
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(key.String()) + ".lock"
	f, err := os.OpenFile(filepath.Join(lockDir, name), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		_ = flockRelease(f)
		_ = f.Close()
	}, nil
}
