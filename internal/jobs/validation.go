package jobs

import (
	"fmt"
	"strings"

	"github.com/sevigo/testward/internal/core"
	"github.com/sevigo/testward/internal/stack"
)

// ValidateRequest checks that an evaluation request identifies a batch, a
// supported stack, and at least one candidate with a usable path. Candidate
// content may legitimately be empty; the gate scores that on its own.
func ValidateRequest(req *core.EvaluationRequest) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(req.BatchID) == "" {
		return fmt.Errorf("batch id is required")
	}
	if _, err := stack.Parse(req.Stack); err != nil {
		return err
	}
	if len(req.Candidates) == 0 {
		return fmt.Errorf("batch %s has no candidates", req.BatchID)
	}
	for i, cand := range req.Candidates {
		if strings.TrimSpace(cand.Path) == "" {
			return fmt.Errorf("candidate %d has no path", i)
		}
	}
	return nil
}
