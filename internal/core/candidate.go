// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
	"strings"
)

// TestKind classifies what a generated candidate claims to test.
type TestKind string

const (
	TestKindUnit        TestKind = "unit"
	TestKindIntegration TestKind = "integration"
	TestKindE2E         TestKind = "e2e"
)

// Candidate is a single LLM-generated test file awaiting validation.
// The content travels with the path because candidates usually do not
// exist on disk until the gate materializes them for sandbox execution.
type Candidate struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Kind    TestKind `json:"kind"`
}

// Availability holds the three disjoint module-name sets supplied by the
// context-harvesting collaborator. It is consulted only for import-resolution
// decisions; an empty Availability resolves nothing.
type Availability struct {
	Stdlib   []string `json:"stdlib"`
	Local    []string `json:"local"`
	External []string `json:"external"`
}

// Has reports whether name appears in any of the three sets.
func (a Availability) Has(name string) bool {
	return contains(a.Stdlib, name) || contains(a.Local, name) || contains(a.External, name)
}

// ResolveLocal searches the local set for a module whose dotted path ends in
// simple name, e.g. "config" resolves to "src.config". It returns the full
// path of the first match in declaration order.
func (a Availability) ResolveLocal(name string) (string, bool) {
	for _, mod := range a.Local {
		if mod == name || strings.HasSuffix(mod, "."+name) {
			return mod, true
		}
	}
	return "", false
}

func contains(set []string, name string) bool {
	for _, s := range set {
		if s == name {
			return true
		}
	}
	return false
}

// EvaluationRequest is the unit of work queued for asynchronous batch
// evaluation. BatchID ties the resulting report and any review artifact
// together.
type EvaluationRequest struct {
	BatchID      string       `json:"batch_id"`
	Stack        string       `json:"stack"`
	Candidates   []Candidate  `json:"candidates"`
	Availability Availability `json:"availability"`
}

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// request source (e.g., an HTTP handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts an evaluation request and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, req *EvaluationRequest) error
}

// Job represents a single, executable unit of work that can be processed by
// the application's job dispatcher.
type Job interface {
	Run(ctx context.Context, req *EvaluationRequest) error
}
