package scheduler

import (
	"context"
	"errors"
	"testing"
)

type MockRunner struct {
	ProcessDueFunc func(ctx context.Context) (*RunReport, error)
}

func (m *MockRunner) ProcessDue(ctx context.Context) (*RunReport, error) {
	return m.ProcessDueFunc(ctx)
}

func TestPubSubTriggerRunsSchedulerPerMessage(t *testing.T) {
	calls := 0
	runner := &MockRunner{ProcessDueFunc: func(ctx context.Context) (*RunReport, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("db down")
		}
		return &RunReport{Processed: 1}, nil
	}}
	trigger := &PubSubTrigger{subName: "scheduler-ticks", runner: runner}

	trigger.handle(context.Background(), "m1")
	trigger.handle(context.Background(), "m2")
	trigger.handle(context.Background(), "m3")

	if calls != 3 {
		t.Errorf("runs = %d, want 3", calls)
	}
}
