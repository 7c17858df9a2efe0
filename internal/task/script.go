package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StepKind names a script step.
type StepKind string

const (
	StepLog   StepKind = "log"
	StepSleep StepKind = "sleep"
	StepFail  StepKind = "fail"
)

// Step is one instruction of a Script.
type Step struct {
	Kind StepKind `yaml:"kind"`
	// Message is the line written for log steps, or the error text for fail steps.
	Message string `yaml:"message,omitempty"`
	// Duration is how long a sleep step waits (Go duration syntax, e.g. "1.5s").
	Duration string `yaml:"duration,omitempty"`
}

// Script is a Task that executes a fixed list of steps. It checks for
// cancellation between steps and while sleeping.
type Script struct {
	Name string `yaml:"name"`
	// Result is the success message returned when every step completes.
	Result string `yaml:"result,omitempty"`
	Steps  []Step `yaml:"steps"`
}

// LoadScript reads and validates a Script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a Script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step for a known kind and well-formed arguments.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("task script has no steps")
	}
	for i, step := range s.Steps {
		switch step.Kind {
		case StepLog, StepFail:
			if step.Message == "" {
				return fmt.Errorf("step %d (%s): message is required", i+1, step.Kind)
			}
		case StepSleep:
			if _, err := time.ParseDuration(step.Duration); err != nil {
				return fmt.Errorf("step %d (sleep): invalid duration %q: %w", i+1, step.Duration, err)
			}
		default:
			return fmt.Errorf("step %d: unknown kind %q", i+1, step.Kind)
		}
	}
	return nil
}

// Run executes the steps in order.
func (s *Script) Run(ctx context.Context, log Log) (string, error) {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch step.Kind {
		case StepLog:
			log.Printf("%s", step.Message)
		case StepSleep:
			d, _ := time.ParseDuration(step.Duration)
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		case StepFail:
			return "", fmt.Errorf("step %d: %s", i+1, step.Message)
		}
	}
	return s.Result, nil
}

// DefaultScript is the built-in demo task used when no task file is set.
func DefaultScript() *Script {
	return &Script{
		Name: "demo",
		Steps: []Step{
			{Kind: StepLog, Message: "Starting demo task."},
			{Kind: StepSleep, Duration: "2s"},
			{Kind: StepLog, Message: "Scanning screen..."},
			{Kind: StepSleep, Duration: "3s"},
			{Kind: StepLog, Message: "Demo task finished its work."},
		},
	}
}
