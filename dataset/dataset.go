//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package dataset loads labeled test cases from tabular files.
//
// A dataset file is a CSV with one test case per row. The required columns
// are id, question and answer; the optional content column carries the
// grounding text used by the second evaluation stage. Column names are
// matched case-insensitively and the Chinese headers produced by the
// questionnaire export tools are accepted as aliases. Files may be UTF-8 or
// GB18030 encoded.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// TestCase is one labeled question. Immutable once loaded.
type TestCase struct {
	// ID uniquely identifies the case within its file.
	ID string `json:"id"`
	// Question is the raw question posed to the model.
	Question string `json:"question"`
	// ReferenceAnswer is the labeled ground-truth answer.
	ReferenceAnswer string `json:"reference_answer"`
	// Content is optional grounding text supplied to the second stage.
	Content string `json:"content,omitempty"`
}

// Sentinel errors reported by the loader. All of them arrive wrapped in a
// *LoadError carrying the file path.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyDataset  = errors.New("no test cases in file")
	ErrBadEncoding   = errors.New("file is neither valid UTF-8 nor GB18030")
)

// LoadError is the fatal dataset failure: the run must not start when the
// input cannot be read.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// headerAliases maps accepted column headers to canonical field names.
var headerAliases = map[string]string{
	"id":               "id",
	"问题编号":             "id",
	"question":         "question",
	"问题":               "question",
	"answer":           "answer",
	"reference_answer": "answer",
	"答案":               "answer",
	"content":          "content",
	"内容":               "content",
}

// Loader reads dataset files into TestCase slices.
type Loader struct {
	comma      rune
	lazyQuotes bool
}

// NewLoader creates a Loader with the provided options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{comma: ','}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads one dataset file. Any failure is returned as a *LoadError;
// a run must abort before writing artifacts when Load fails.
func (l *Loader) Load(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = l.comma
	r.LazyQuotes = l.lazyQuotes
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	cases, err := recordsToCases(records)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return cases, nil
}

// recordsToCases maps raw CSV rows to TestCase values using the header row.
func recordsToCases(records [][]string) ([]TestCase, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	cols := map[string]int{}
	for i, name := range records[0] {
		canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := cols[canonical]; !dup {
			cols[canonical] = i
		}
	}
	for _, required := range []string{"id", "question", "answer"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	cases := make([]TestCase, 0, len(records)-1)
	for rowNum, row := range records[1:] {
		tc := TestCase{
			ID:              field(row, cols["id"]),
			Question:        field(row, cols["question"]),
			ReferenceAnswer: field(row, cols["answer"]),
		}
		if idx, ok := cols["content"]; ok {
			tc.Content = field(row, idx)
		}
		if tc.ID == "" && tc.Question == "" && tc.ReferenceAnswer == "" {
			// Trailing blank rows are common in exported files.
			continue
		}
		if tc.ID == "" || tc.Question == "" || tc.ReferenceAnswer == "" {
			return nil, fmt.Errorf("row %d: id, question and answer must be non-empty", rowNum+2)
		}
		cases = append(cases, tc)
	}
	if len(cases) == 0 {
		return nil, ErrEmptyDataset
	}
	return cases, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// decodeText returns data as UTF-8 text, transcoding from GB18030 when the
// bytes are not valid UTF-8. Exported Chinese-locale spreadsheets commonly
// arrive GB18030 encoded.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}
	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
	if err != nil {
		return "", ErrBadEncoding
	}
	return string(decoded), nil
}

// Discover expands glob patterns (doublestar syntax, ** supported) relative
// to dir into a sorted, de-duplicated list of dataset file paths.
func Discover(dir string, patterns ...string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(dir), pattern)
		if err != nil {
			return nil, fmt.Errorf("discover datasets %q: %w", pattern, err)
		}
		for _, m := range matches {
			full := filepath.Join(dir, filepath.FromSlash(m))
			info, err := os.Stat(full)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("discover datasets %q: %w", pattern, err)
			}
			if info.IsDir() {
				continue
			}
			if _, ok := seen[full]; ok {
				continue
			}
			seen[full] = struct{}{}
			paths = append(paths, full)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// FileStem returns the artifact namespace for a dataset file: the base name
// without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
