//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the YAML run configuration consumed by the example
// programs and the task server. Every value maps onto a functional option
// of the package it configures; code that wires its own options does not
// need this package.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Model configures one completion backend.
type Model struct {
	// Name is the backend model name, e.g. "deepseek-chat".
	Name string `yaml:"name"`
	// Provider selects the adapter, "openai" or "gemini".
	Provider string `yaml:"provider"`
	// BaseURL overrides the endpoint for OpenAI-compatible gateways.
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Evaluation configures the pipeline.
type Evaluation struct {
	AnswerThreshold    float64 `yaml:"answer_threshold"`
	ReasoningThreshold float64 `yaml:"reasoning_threshold"`
	Rounds             int     `yaml:"rounds"`
	Parallelism        int     `yaml:"parallelism"`
	CallTimeoutSeconds int     `yaml:"call_timeout_seconds"`
}

// CallTimeout converts the configured seconds into a duration.
func (e Evaluation) CallTimeout() time.Duration {
	if e.CallTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(e.CallTimeoutSeconds) * time.Second
}

// Data locates dataset files and the artifact store.
type Data struct {
	// Dir is the directory dataset globs are resolved against.
	Dir string `yaml:"dir"`
	// Patterns are doublestar globs relative to Dir.
	Patterns []string `yaml:"patterns"`
	// OutputDir roots the artifact store.
	OutputDir string `yaml:"output_dir"`
}

// Server configures the HTTP task API.
type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the full run configuration.
type Config struct {
	Model        Model      `yaml:"model"`
	GradingModel Model      `yaml:"grading_model"`
	Evaluation   Evaluation `yaml:"evaluation"`
	Data         Data       `yaml:"data"`
	Server       Server     `yaml:"server"`
}

// Default returns the configuration used when a field is left unset.
func Default() *Config {
	return &Config{
		Model:        Model{Provider: "openai"},
		GradingModel: Model{Provider: "openai"},
		Evaluation: Evaluation{
			AnswerThreshold:    60,
			ReasoningThreshold: 60,
			Rounds:             1,
			Parallelism:        1,
			CallTimeoutSeconds: 120,
		},
		Data: Data{
			Dir:       ".",
			Patterns:  []string{"*.csv"},
			OutputDir: "data",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Model.Provider == "" {
		c.Model.Provider = def.Model.Provider
	}
	if c.GradingModel.Provider == "" {
		c.GradingModel.Provider = def.GradingModel.Provider
	}
	if c.Evaluation.AnswerThreshold == 0 {
		c.Evaluation.AnswerThreshold = def.Evaluation.AnswerThreshold
	}
	if c.Evaluation.ReasoningThreshold == 0 {
		c.Evaluation.ReasoningThreshold = def.Evaluation.ReasoningThreshold
	}
	if c.Evaluation.Rounds == 0 {
		c.Evaluation.Rounds = def.Evaluation.Rounds
	}
	if c.Evaluation.Parallelism == 0 {
		c.Evaluation.Parallelism = def.Evaluation.Parallelism
	}
	if c.Evaluation.CallTimeoutSeconds == 0 {
		c.Evaluation.CallTimeoutSeconds = def.Evaluation.CallTimeoutSeconds
	}
	if c.Data.Dir == "" {
		c.Data.Dir = def.Data.Dir
	}
	if len(c.Data.Patterns) == 0 {
		c.Data.Patterns = def.Data.Patterns
	}
	if c.Data.OutputDir == "" {
		c.Data.OutputDir = def.Data.OutputDir
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.GradingModel.Name == "" {
		return fmt.Errorf("grading_model.name is required")
	}
	for _, m := range []Model{c.Model, c.GradingModel} {
		if m.Provider != "openai" && m.Provider != "gemini" {
			return fmt.Errorf("unknown provider %q, want openai or gemini", m.Provider)
		}
	}
	if c.Evaluation.AnswerThreshold < 0 || c.Evaluation.AnswerThreshold > 100 {
		return fmt.Errorf("answer_threshold %v outside [0,100]", c.Evaluation.AnswerThreshold)
	}
	if c.Evaluation.ReasoningThreshold < 0 || c.Evaluation.ReasoningThreshold > 100 {
		return fmt.Errorf("reasoning_threshold %v outside [0,100]", c.Evaluation.ReasoningThreshold)
	}
	if c.Evaluation.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Evaluation.Rounds)
	}
	if c.Evaluation.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Evaluation.Parallelism)
	}
	if c.Evaluation.CallTimeoutSeconds < 0 {
		return fmt.Errorf("call_timeout_seconds must not be negative, got %d", c.Evaluation.CallTimeoutSeconds)
	}
	return nil
}
