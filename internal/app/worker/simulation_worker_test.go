package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hackr_api/internal/app/service"
	"hackr_api/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testQueue   = "simulation_jobs_queue"
	testLockKey = "simulation_job_lock"
)

type harness struct {
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	sims   *service.SimulationService
	worker *SimulationWorker
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sims := service.NewSimulationService(rdb, service.SimulationOptions{
		QueueName:            testQueue,
		MaxWorkers:           50,
		MaxRequestsPerWorker: 1000,
	})
	w := NewSimulationWorker(rdb, sims, Options{
		QueueName:        testQueue,
		LockKey:          testLockKey,
		LockTTL:          time.Minute,
		RequestTimeout:   time.Second,
		RequeueDelay:     10 * time.Millisecond,
		ProgressInterval: 10 * time.Millisecond,
	})
	return &harness{mr: mr, rdb: rdb, sims: sims, worker: w}
}

func (h *harness) start(t *testing.T, target string, workers, perWorker int) *model.Simulation {
	t.Helper()
	sim, err := h.sims.Start(context.Background(), service.StartSimulationRequest{
		Domain:            target,
		NumWorkers:        workers,
		RequestsPerWorker: perWorker,
	}, "user-1")
	require.NoError(t, err)
	return sim
}

func TestRun_Completes(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := newHarness(t)
	sim := h.start(t, srv.URL, 3, 4)

	require.NoError(t, h.worker.Run(context.Background(), sim.ID))

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusCompleted, got.Status)
	assert.Equal(t, int64(12), got.Sent, "any HTTP response counts as sent")
	assert.Zero(t, got.Failed)
	assert.Equal(t, int64(12), hits.Load())
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.FinishedAt)
}

func TestRun_HonoursWorkerBound(t *testing.T) {
	var inFlight, peak atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}))
	defer srv.Close()

	h := newHarness(t)
	sim := h.start(t, srv.URL, 2, 5)

	require.NoError(t, h.worker.Run(context.Background(), sim.ID))
	assert.LessOrEqual(t, peak.Load(), int64(2))
	assert.GreaterOrEqual(t, peak.Load(), int64(1))
}

func TestRun_CountsFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	h := newHarness(t)
	sim := h.start(t, target, 2, 3)

	require.NoError(t, h.worker.Run(context.Background(), sim.ID))

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusFailed, got.Status)
	assert.Zero(t, got.Sent)
	assert.Equal(t, int64(6), got.Failed)
	require.NotNil(t, got.Error)
	assert.Equal(t, "all 6 requests failed", *got.Error)
}

func TestRun_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	h := newHarness(t)
	sim := h.start(t, srv.URL, 2, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.worker.Run(ctx, sim.ID) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusCanceled, got.Status)
	assert.Less(t, got.Sent+got.Failed, int64(2000))
}

func TestRun_SkipsFinished(t *testing.T) {
	h := newHarness(t)
	sim := h.start(t, "http://example.invalid", 1, 1)
	sim.Status = model.SimulationStatusCompleted
	require.NoError(t, h.sims.Save(context.Background(), sim))

	require.NoError(t, h.worker.Run(context.Background(), sim.ID))

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartedAt)
}

func TestProcessWithLock_RequeuesWhenBusy(t *testing.T) {
	h := newHarness(t)
	sim := h.start(t, "http://example.invalid", 1, 1)
	_, err := h.rdb.LPop(context.Background(), testQueue).Result()
	require.NoError(t, err)

	require.NoError(t, h.mr.Set(testLockKey, "someone-else"))

	h.worker.processWithLock(context.Background(), sim.ID)

	queued, err := h.mr.List(testQueue)
	require.NoError(t, err)
	assert.Equal(t, []string{sim.ID}, queued)

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusQueued, got.Status)

	lock, err := h.mr.Get(testLockKey)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", lock, "a foreign lock must not be released")
}

func TestProcessWithLock_ReleasesLock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := newHarness(t)
	sim := h.start(t, srv.URL, 1, 1)

	h.worker.processWithLock(context.Background(), sim.ID)

	assert.False(t, h.mr.Exists(testLockKey))
	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusCompleted, got.Status)
}

func TestStart_ConsumesQueueAndStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := newHarness(t)
	sim := h.start(t, srv.URL, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.worker.Start(ctx)
		close(stopped)
	}()

	assert.Eventually(t, func() bool {
		got, err := h.sims.Get(context.Background(), sim.ID)
		return err == nil && got.Status == model.SimulationStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

// blockingTarget holds every request until unblock is called or the client
// gives up.
func blockingTarget(t *testing.T) (url string, unblock func()) {
	t.Helper()
	release := make(chan struct{})
	var once sync.Once
	unblock = func() { once.Do(func() { close(release) }) }
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(unblock)
	return srv.URL, unblock
}

func TestProcessWithLock_ExtendsLockDuringLongRun(t *testing.T) {
	target, unblock := blockingTarget(t)

	h := newHarness(t)
	h.worker.opts.LockTTL = 300 * time.Millisecond
	h.worker.opts.RequestTimeout = 10 * time.Second
	sim := h.start(t, target, 1, 1)

	done := make(chan struct{})
	go func() {
		h.worker.processWithLock(context.Background(), sim.ID)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.mr.Exists(testLockKey) }, 2*time.Second, 5*time.Millisecond)
	lockValue, err := h.mr.Get(testLockKey)
	require.NoError(t, err)

	// Three jumps of 200ms put the run well past the original 300ms TTL.
	for i := 0; i < 3; i++ {
		h.mr.FastForward(200 * time.Millisecond)
		require.True(t, h.mr.Exists(testLockKey), "lock expired during the run")
		require.Eventually(t, func() bool {
			return h.mr.TTL(testLockKey) > 200*time.Millisecond
		}, 2*time.Second, 5*time.Millisecond)
	}
	held, err := h.mr.Get(testLockKey)
	require.NoError(t, err)
	assert.Equal(t, lockValue, held)

	unblock()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	assert.False(t, h.mr.Exists(testLockKey))
	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusCompleted, got.Status)
}

func TestProcessWithLock_StopsWhenLockLost(t *testing.T) {
	target, _ := blockingTarget(t)

	h := newHarness(t)
	h.worker.opts.LockTTL = 300 * time.Millisecond
	h.worker.opts.RequestTimeout = 10 * time.Second
	sim := h.start(t, target, 2, 1000)

	done := make(chan struct{})
	go func() {
		h.worker.processWithLock(context.Background(), sim.ID)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.mr.Exists(testLockKey) }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, h.mr.Set(testLockKey, "other-replica"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run kept going without the lock")
	}

	got, err := h.sims.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SimulationStatusCanceled, got.Status)

	lock, err := h.mr.Get(testLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-replica", lock)
}
