package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_ProcessNext(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()
	d := NewDispatcher(q, 3, time.Millisecond, zap.NewNop())

	var got []string
	d.Handle("project.activated", func(ctx context.Context, ev Event) error {
		var p samplePayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		got = append(got, p.ProjectID)
		return nil
	})

	require.NoError(t, q.Enqueue(ctx, "project.activated", samplePayload{ProjectID: "p1"}))

	processed, err := d.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, []string{"p1"}, got)

	processed, err = d.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	assert.Equal(t, Snapshot{Processed: 1}, d.Metrics())
	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, Depth{}, depth)
}

func TestDispatcher_RetriesThenDeadLetters(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()

	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(q, 2, time.Millisecond, zap.New(core))
	d.Handle("message.created", func(ctx context.Context, ev Event) error {
		return errors.New("publish failed")
	})

	require.NoError(t, q.Enqueue(ctx, "message.created", samplePayload{}))

	for i := 0; i < 2; i++ {
		processed, err := d.ProcessNext(ctx)
		require.NoError(t, err)
		assert.True(t, processed)
	}

	snap := d.Metrics()
	assert.Equal(t, int64(1), snap.Retried)
	assert.Equal(t, int64(1), snap.DeadLettered)
	assert.Equal(t, float64(100), snap.FailureRate())

	assert.Equal(t, 1, logs.FilterMessage("event handler failed, will retry").Len())
	assert.Equal(t, 1, logs.FilterMessage("event dead-lettered").Len())

	dead, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "publish failed", dead[0].LastError)
}

func TestDispatcher_UnknownTypeIsDeadLettered(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()
	d := NewDispatcher(q, 5, time.Millisecond, nil)

	require.NoError(t, q.Enqueue(ctx, "unknown.type", samplePayload{}))
	processed, err := d.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth.Dead)
}

func TestDispatcher_PanicIsTreatedAsFailure(t *testing.T) {
	q, _ := setupQueue(t)
	ctx := context.Background()
	d := NewDispatcher(q, 1, time.Millisecond, nil)
	d.Handle("task.updated", func(ctx context.Context, ev Event) error {
		panic("nil map")
	})

	require.NoError(t, q.Enqueue(ctx, "task.updated", samplePayload{}))
	_, err := d.ProcessNext(ctx)
	require.NoError(t, err)

	dead, err := q.DeadLetters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, "handler panic")
}

func TestDispatcher_RunDrainsAndRecovers(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, "file.uploaded", samplePayload{ProjectID: "abandoned"}))
	_, _, err := q.claim(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, "file.uploaded", samplePayload{ProjectID: "fresh"}))

	var handled int32
	d := NewDispatcher(q, 3, 5*time.Millisecond, nil)
	d.Handle("file.uploaded", func(ctx context.Context, ev Event) error {
		atomic.AddInt32(&handled, 1)
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&handled) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	depth, err := q.Depth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Depth{}, depth)
}
