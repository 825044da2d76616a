package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	err := svc.RegisterJob("writeback", "0 * * * *", "hourly metrics write-back", func() error { return nil })
	require.NoError(t, err)

	// Duplicate registration is rejected
	err = svc.RegisterJob("writeback", "0 * * * *", "", func() error { return nil })
	require.Error(t, err)

	// Invalid cron expressions are rejected up front
	err = svc.RegisterJob("bad", "not a schedule", "", func() error { return nil })
	require.Error(t, err)

	jobs := svc.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "writeback", jobs[0].Name)
	assert.Equal(t, "0 * * * *", jobs[0].Schedule)
	assert.True(t, jobs[0].Enabled)
	assert.False(t, jobs[0].Running)
	assert.Nil(t, jobs[0].LastRun)
}

func TestTriggerJob(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	done := make(chan struct{})
	err := svc.RegisterJob("refresh", "*/5 * * * *", "", func() error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.TriggerJob("refresh"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job handler did not run")
	}

	// lastRun is recorded after completion
	deadline := time.Now().Add(2 * time.Second)
	for {
		jobs := svc.Jobs()
		if jobs[0].LastRun != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("lastRun never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.Error(t, svc.TriggerJob("missing"))
}

func TestTriggerJobRecordsError(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	done := make(chan struct{})
	err := svc.RegisterJob("failing", "0 * * * *", "", func() error {
		defer close(done)
		return errors.New("source store down")
	})
	require.NoError(t, err)

	require.NoError(t, svc.TriggerJob("failing"))
	<-done

	deadline := time.Now().Add(2 * time.Second)
	for {
		jobs := svc.Jobs()
		if jobs[0].LastError != "" {
			assert.Equal(t, "source store down", jobs[0].LastError)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("lastError never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartStop(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	require.NoError(t, svc.Start())
	require.Error(t, svc.Start(), "double start is rejected")
	svc.Stop()
	svc.Stop() // idempotent
}
