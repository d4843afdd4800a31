package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	s := NewScheduler(func(context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.fire()
	}()
	<-started

	// A tick landing while the first run is still active is dropped.
	s.fire()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	wg.Wait()
}

func TestSchedulerRunsAgainAfterCompletion(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewScheduler(func(context.Context) error {
		runs.Add(1)
		return nil
	}, zerolog.Nop())

	s.fire()
	s.fire()
	assert.Equal(t, int32(2), runs.Load())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewScheduler(func(context.Context) error { return nil }, zerolog.Nop())
	assert.Error(t, s.Start("not a cron spec"))
}
