package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sevigo/testward/internal/core"
)

func TestValidateRequest(t *testing.T) {
	valid := func() *core.EvaluationRequest {
		return &core.EvaluationRequest{
			BatchID: "batch-1",
			Stack:   "python",
			Candidates: []core.Candidate{
				{Path: "tests/test_a.py", Content: "def test_a():\n    assert True\n"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*core.EvaluationRequest)
		wantErr bool
	}{
		{
			name:   "valid request",
			mutate: func(*core.EvaluationRequest) {},
		},
		{
			name:    "missing batch id",
			mutate:  func(r *core.EvaluationRequest) { r.BatchID = "  " },
			wantErr: true,
		},
		{
			name:    "unsupported stack",
			mutate:  func(r *core.EvaluationRequest) { r.Stack = "ruby" },
			wantErr: true,
		},
		{
			name:    "no candidates",
			mutate:  func(r *core.EvaluationRequest) { r.Candidates = nil },
			wantErr: true,
		},
		{
			name: "candidate without path",
			mutate: func(r *core.EvaluationRequest) {
				r.Candidates = append(r.Candidates, core.Candidate{Content: "x"})
			},
			wantErr: true,
		},
		{
			name: "empty content is allowed",
			mutate: func(r *core.EvaluationRequest) {
				r.Candidates[0].Content = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := ValidateRequest(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateRequest(nil); err == nil {
		t.Error("ValidateRequest(nil) expected error")
	}
}

type recordingJob struct {
	mu      sync.Mutex
	batches []string
}

func (j *recordingJob) Run(_ context.Context, req *core.EvaluationRequest) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.batches = append(j.batches, req.BatchID)
	return nil
}

func TestDispatcherProcessesQueuedRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := &recordingJob{}
	d := NewDispatcher(job, 2, logger)

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := d.Dispatch(context.Background(), &core.EvaluationRequest{BatchID: id}); err != nil {
			t.Fatalf("Dispatch(%s) failed: %v", id, err)
		}
	}

	// Stop drains the queue and waits for workers.
	d.Stop()

	job.mu.Lock()
	defer job.mu.Unlock()
	if len(job.batches) != 3 {
		t.Errorf("processed %d batches, want 3", len(job.batches))
	}
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := &recordingJob{}
	d := NewDispatcher(job, 1, logger)

	d.Stop()

	// A late dispatch must fail cleanly instead of hitting the closed queue.
	if err := d.Dispatch(context.Background(), &core.EvaluationRequest{BatchID: "late"}); err == nil {
		t.Error("expected dispatch after Stop to be rejected")
	}

	// A second Stop is a no-op.
	d.Stop()
}

type slowJob struct{}

func (slowJob) Run(_ context.Context, _ *core.EvaluationRequest) error {
	time.Sleep(10 * time.Millisecond)
	return nil
}

func TestDispatcherBackpressure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewDispatcher(slowJob{}, 1, logger)
	defer d.Stop()

	// The queue holds 100 requests; overflow must be rejected, not blocked on.
	var rejected bool
	for i := 0; i < 200; i++ {
		if err := d.Dispatch(context.Background(), &core.EvaluationRequest{BatchID: "b"}); err != nil {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Error("expected at least one dispatch rejection under backpressure")
	}
}
