package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	mu       sync.Mutex
	runs     int
	release  chan struct{}
	deadline bool
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	_, j.deadline = ctx.Deadline()
	j.mu.Unlock()
	if j.release != nil {
		<-j.release
	}
	return nil
}

func TestWrapSkipsOverlappingRun(t *testing.T) {
	scheduler := NewCronScheduler(0)
	job := &blockingJob{release: make(chan struct{})}
	wrapped := scheduler.wrap(job)

	done := make(chan struct{})
	go func() {
		wrapped()
		close(done)
	}()
	require.Eventually(t, func() bool {
		job.mu.Lock()
		defer job.mu.Unlock()
		return job.runs == 1
	}, time.Second, time.Millisecond)

	// second tick while the first run is still in flight
	wrapped()
	job.mu.Lock()
	require.Equal(t, 1, job.runs)
	job.mu.Unlock()

	close(job.release)
	<-done

	// the guard resets once the run finishes
	job.release = nil
	wrapped()
	job.mu.Lock()
	require.Equal(t, 2, job.runs)
	job.mu.Unlock()
}

func TestRunTimeoutBoundsJobContext(t *testing.T) {
	scheduler := NewCronScheduler(time.Minute)
	job := &blockingJob{}
	scheduler.wrap(job)()
	require.True(t, job.deadline)

	unbounded := NewCronScheduler(0)
	job = &blockingJob{}
	unbounded.wrap(job)()
	require.False(t, job.deadline)
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	scheduler := NewCronScheduler(0)
	require.Error(t, scheduler.AddJob(&blockingJob{}, "not a spec"))
	require.NoError(t, scheduler.AddJob(&blockingJob{}, "*/5 * * * *"))
}
