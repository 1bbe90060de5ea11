package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	err      error
	runs     atomic.Int32
	block    chan struct{}
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(context.Background(), time.UTC, logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 30 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "b", schedule: "not a cron"}))

	assert.Equal(t, []string{"a"}, s.Jobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(context.Background(), time.UTC, logger.Nop())
	ok := &countingJob{name: "ok", schedule: "@hourly"}
	bad := &countingJob{name: "bad", schedule: "@hourly", err: errors.New("boom")}
	require.NoError(t, s.AddJob(ok))
	require.NoError(t, s.AddJob(bad))

	res, err := s.RunJob("ok")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.RunJob("bad")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.Error)

	_, err = s.RunJob("missing")
	assert.Error(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats["ok"].SuccessCount)
	assert.Equal(t, 1, stats["bad"].FailureCount)
	assert.Equal(t, 0.0, stats["bad"].SuccessRate)
	assert.NotNil(t, stats["ok"].LastRun)
}

func TestRunJob_SkipsOverlap(t *testing.T) {
	s := New(context.Background(), time.UTC, logger.Nop())
	job := &countingJob{name: "slow", schedule: "@hourly", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan struct{})
	go func() {
		_, _ = s.RunJob("slow")
		close(done)
	}()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	res, err := s.RunJob("slow")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	<-done
}

func TestJobHistory(t *testing.T) {
	var h JobHistory
	for i := 0; i < historySize+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historySize)
	assert.Len(t, h.Latest(3), 3)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}
